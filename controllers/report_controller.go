package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"report-approval-api/models"
	"report-approval-api/services"
	"report-approval-api/tasks"
)

func reportService() *services.ReportService {
	return services.NewReportService(getDB(), services.NewNotificationService(getDB(), JobBroker))
}

// CreateReport creates a DRAFT report owned by the caller.
func CreateReport(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input services.CreateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	report, err := reportService().CreateReport(&input, email)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// GetReports lists the reports visible to the caller's role.
func GetReports(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	reports, err := reportService().GetUserReports(currentRole(c), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// GetReport returns one report plus its approval state and SAT data.
func GetReport(c *gin.Context) {
	report, err := reportService().GetReport(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}

	resp := gin.H{"report": report}
	if state, ok := report.ApprovalState(); ok {
		resp["approval_state"] = state
	}

	var sat models.SATReport
	if err := getDB().First(&sat, "report_id = ?", report.ID).Error; err == nil {
		resp["sat_report"] = sat
	}

	c.JSON(http.StatusOK, resp)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateReportStatus applies a workflow transition.
func UpdateReportStatus(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	err := reportService().UpdateStatus(c.Param("id"), req.Status, email, currentRole(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, services.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
	}
}

// ApproveReport records the caller's stage approval.
func ApproveReport(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := reportService().AdvanceStage(c.Param("id"), email, currentRole(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, services.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
	case errors.Is(err, services.ErrWrongStage), errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve report"})
	}
}

// GetPendingCount returns the approval workload for the caller's role.
func GetPendingCount(c *gin.Context) {
	count := reportService().CountPendingForRole(currentRole(c))
	c.JSON(http.StatusOK, gin.H{"pending": count})
}

// GenerateReportDocument enqueues document generation and returns the job id.
func GenerateReportDocument(c *gin.Context) {
	report, err := reportService().GetReport(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}

	if JobBroker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "job runner unavailable"})
		return
	}

	data := map[string]any{
		"document_title":     report.DocumentTitle,
		"document_reference": report.DocumentReference,
		"project_reference":  report.ProjectReference,
		"client_name":        report.ClientName,
		"revision":           report.Revision,
		"prepared_by":        report.PreparedBy,
	}

	var sat models.SATReport
	err = getDB().First(&sat, "report_id = ?", report.ID).Error
	if err == nil {
		var fields map[string]any
		if jerr := json.Unmarshal([]byte(sat.DataJSON), &fields); jerr == nil {
			for k, v := range fields {
				data[k] = v
			}
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report data"})
		return
	}

	jobID, err := JobBroker.Enqueue(c.Request.Context(), tasks.JobGenerateReport, map[string]any{
		"report_id": report.ID,
		"data":      data,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": jobID})
}
