package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTaskStatus reports the state of an async job. Always returns a
// well-formed status; unknown ids read as PENDING.
func GetTaskStatus(c *gin.Context) {
	if JobBroker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "job runner unavailable"})
		return
	}

	status := JobBroker.GetStatus(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, status)
}
