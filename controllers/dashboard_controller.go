package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"report-approval-api/services"
	"report-approval-api/utils"
)

// GetDashboardStats returns the rollup shaped for the caller's role.
func GetDashboardStats(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	roleRaw := currentRole(c)
	dashboard := services.NewDashboardService(getDB(), reportService())

	switch role := utils.ClassifyRole(roleRaw); {
	case role == utils.RoleAdmin:
		c.JSON(http.StatusOK, gin.H{"stats": dashboard.GetAdminStats()})
	case role.IsManager():
		c.JSON(http.StatusOK, gin.H{"stats": dashboard.GetManagerStats(roleRaw)})
	default:
		c.JSON(http.StatusOK, gin.H{"stats": dashboard.GetEngineerStats(email)})
	}
}

// GetUsersByRole lists active users grouped by role category.
func GetUsersByRole(c *gin.Context) {
	grouped, err := services.NewUserService(getDB()).GetUsersByRole()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": grouped})
}

type updateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateUserStatus activates or deactivates an account (admin only).
func UpdateUserStatus(c *gin.Context) {
	var req updateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := services.NewUserService(getDB()).UpdateUserStatus(uint(id), req.Status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
