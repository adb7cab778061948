package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"report-approval-api/config"
	"report-approval-api/tasks"
)

// JobBroker is the process-wide job runner, set once at startup.
var JobBroker tasks.Broker

func getDB() *gorm.DB { return config.DB }

func currentEmail(c *gin.Context) (string, bool) {
	if v, ok := c.Get("email"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func currentRole(c *gin.Context) string {
	if v, ok := c.Get("role"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
