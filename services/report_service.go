package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"report-approval-api/config"
	"report-approval-api/models"
	"report-approval-api/utils"
)

// reportTransitions is the legal status transition table. PENDING→DRAFT is
// the return-for-rework path; PENDING→REJECTED is terminal.
var reportTransitions = map[string][]string{
	models.ReportStatusDraft: {models.ReportStatusPending},
	models.ReportStatusPending: {
		models.ReportStatusApproved,
		models.ReportStatusDraft,
		models.ReportStatusRejected,
	},
}

// CreateReportInput is the submitted field set of a new report. Fields holds
// any form values beyond the indexed ones; the whole input is preserved as
// the SAT data blob.
type CreateReportInput struct {
	Type              string            `json:"type"`
	DocumentTitle     string            `json:"document_title"`
	DocumentReference string            `json:"document_reference"`
	ProjectReference  string            `json:"project_reference"`
	ClientName        string            `json:"client_name"`
	Revision          string            `json:"revision"`
	PreparedBy        string            `json:"prepared_by"`
	Date              string            `json:"date"`
	Purpose           string            `json:"purpose"`
	Scope             string            `json:"scope"`
	Fields            map[string]string `json:"fields"`
}

type ReportService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewReportService(db *gorm.DB, notifier *NotificationService) *ReportService {
	if db == nil {
		db = config.DB
	}
	return &ReportService{db: db, notifier: notifier}
}

// CreateReport constructs a DRAFT report owned by userEmail. SAT reports get
// a companion SATReport row carrying the full field set.
func (s *ReportService) CreateReport(input *CreateReportInput, userEmail string) (*models.Report, error) {
	if input == nil || strings.TrimSpace(input.DocumentTitle) == "" {
		return nil, fmt.Errorf("%w: document_title is required", ErrValidation)
	}

	reportType := input.Type
	if reportType == "" {
		reportType = "SAT"
	}
	revision := input.Revision
	if revision == "" {
		revision = "R0"
	}

	now := time.Now().UTC()
	report := &models.Report{
		ID:                uuid.NewString(),
		Type:              reportType,
		Status:            models.ReportStatusDraft,
		DocumentTitle:     input.DocumentTitle,
		DocumentReference: input.DocumentReference,
		ProjectReference:  input.ProjectReference,
		ClientName:        input.ClientName,
		Revision:          revision,
		PreparedBy:        input.PreparedBy,
		Version:           "R0",
		UserEmail:         userEmail,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		if report.Type == "SAT" {
			blob, err := json.Marshal(input)
			if err != nil {
				return err
			}
			sat := &models.SATReport{
				ReportID: report.ID,
				DataJSON: string(blob),
				Date:     input.Date,
				Purpose:  input.Purpose,
				Scope:    input.Scope,
			}
			if err := tx.Create(sat).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("failed to create report for %s: %v", userEmail, err)
		return nil, err
	}
	return report, nil
}

// GetReport loads a report by id.
func (s *ReportService) GetReport(reportID string) (*models.Report, error) {
	var report models.Report
	if err := s.db.First(&report, "report_id = ?", reportID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, reportID)
		}
		return nil, err
	}
	return &report, nil
}

// UpdateStatus applies a workflow transition. Submission (leaving DRAFT) is
// the owner's move, deciding on a PENDING report is a manager's; admins may
// do either. Entering PENDING from DRAFT reinitializes the approval sequence;
// the status change commits first and approver notification follows in a
// second commit so a dispatcher failure never rolls back the transition.
func (s *ReportService) UpdateStatus(reportID, newStatus, actorEmail, actorRole string) error {
	report, err := s.GetReport(reportID)
	if err != nil {
		return err
	}

	oldStatus := report.Status
	if !transitionAllowed(oldStatus, newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, oldStatus, newStatus)
	}

	role := utils.ClassifyRole(actorRole)
	switch oldStatus {
	case models.ReportStatusDraft:
		if role != utils.RoleAdmin && report.UserEmail != actorEmail {
			return fmt.Errorf("%w: only the owner may submit report %s", ErrForbidden, reportID)
		}
	case models.ReportStatusPending:
		if role != utils.RoleAdmin && !role.IsManager() {
			return fmt.Errorf("%w: role %q cannot decide on a pending report", ErrForbidden, actorRole)
		}
	}

	report.Status = newStatus
	report.UpdatedAt = time.Now().UTC()

	if newStatus == models.ReportStatusPending && oldStatus == models.ReportStatusDraft {
		if err := report.SetApprovalState(models.NewApprovalState()); err != nil {
			return err
		}
		report.ApprovalNotificationSent = false
	}
	if oldStatus == models.ReportStatusPending && newStatus != models.ReportStatusPending {
		// The flag holds only while PENDING; re-entering re-notifies.
		report.ApprovalNotificationSent = false
	}

	if err := s.db.Save(report).Error; err != nil {
		log.Printf("failed to update report %s status %s -> %s (actor %s): %v",
			reportID, oldStatus, newStatus, actorEmail, err)
		return err
	}

	if newStatus == models.ReportStatusPending && !report.ApprovalNotificationSent {
		if s.notifier != nil {
			if ok := s.notifier.NotifyApprovalRequired(report); !ok {
				log.Printf("approval notification dispatch incomplete for report %s", reportID)
			}
		}
		report.ApprovalNotificationSent = true
		if err := s.db.Model(report).Update("approval_notification_sent", true).Error; err != nil {
			log.Printf("failed to mark approval notification sent for report %s: %v", reportID, err)
		}
	}

	return nil
}

// AdvanceStage records an approval by the acting role's stage owner. The
// final stage approval transitions the report to APPROVED.
func (s *ReportService) AdvanceStage(reportID, actorEmail, actorRole string) error {
	report, err := s.GetReport(reportID)
	if err != nil {
		return err
	}
	if report.Status != models.ReportStatusPending {
		return fmt.Errorf("%w: report is %s", ErrInvalidTransition, report.Status)
	}

	state, ok := report.ApprovalState()
	if !ok {
		return fmt.Errorf("%w: approval state missing for %s", ErrInvalidTransition, reportID)
	}

	stage := utils.ClassifyRole(actorRole).ApprovalStage()
	if stage == 0 || stage != state.Stage {
		return fmt.Errorf("%w: role %q owns stage %d, report at stage %d",
			ErrWrongStage, actorRole, stage, state.Stage)
	}

	for i := range state.Approvers {
		if state.Approvers[i].Stage == state.Stage {
			state.Approvers[i].Status = models.StageApproved
		}
	}

	if state.Stage < len(state.Approvers) {
		state.Stage++
		if err := report.SetApprovalState(state); err != nil {
			return err
		}
		report.UpdatedAt = time.Now().UTC()
		return s.db.Save(report).Error
	}

	// Last stage approved: finish through the regular transition path.
	if err := report.SetApprovalState(state); err != nil {
		return err
	}
	if err := s.db.Save(report).Error; err != nil {
		return err
	}
	return s.UpdateStatus(reportID, models.ReportStatusApproved, actorEmail, actorRole)
}

// GetUserReports lists the reports visible to a user: admins and managers see
// everything, everyone else sees only what they own.
func (s *ReportService) GetUserReports(roleRaw, userEmail string) ([]models.Report, error) {
	role := utils.ClassifyRole(roleRaw)

	var reports []models.Report
	query := s.db.Order("updated_at DESC")
	if role != utils.RoleAdmin && !role.IsManager() {
		query = query.Where("user_email = ?", userEmail)
	}
	if err := query.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// CountPendingForRole counts PENDING reports sitting at the stage owned by
// the role. Reports with missing or malformed approval state count as
// not-at-any-stage; the count degrades to 0 on query failure.
func (s *ReportService) CountPendingForRole(roleRaw string) int {
	stage := utils.ClassifyRole(roleRaw).ApprovalStage()
	if stage == 0 {
		return 0
	}

	var reports []models.Report
	if err := s.db.Where("status = ?", models.ReportStatusPending).Find(&reports).Error; err != nil {
		log.Printf("failed to load pending reports: %v", err)
		return 0
	}

	count := 0
	for i := range reports {
		if reports[i].IsAtStage(stage) {
			count++
		}
	}
	return count
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range reportTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
