package models

import (
	"encoding/json"
	"time"
)

// Report statuses. The workflow engine owns every transition between them.
const (
	ReportStatusDraft    = "DRAFT"
	ReportStatusPending  = "PENDING"
	ReportStatusApproved = "APPROVED"
	ReportStatusRejected = "REJECTED"
)

// Approval stage statuses inside ApprovalState.
const (
	StagePending  = "pending"
	StageApproved = "approved"
	StageRejected = "rejected"
)

type Report struct {
	ID                       string     `gorm:"primaryKey;column:report_id;size:36" json:"report_id"`
	Type                     string     `gorm:"column:type" json:"type"` // SAT|...
	Status                   string     `gorm:"column:status;index" json:"status"`
	DocumentTitle            string     `gorm:"column:document_title" json:"document_title"`
	DocumentReference        string     `gorm:"column:document_reference" json:"document_reference"`
	ProjectReference         string     `gorm:"column:project_reference" json:"project_reference"`
	ClientName               string     `gorm:"column:client_name" json:"client_name"`
	Revision                 string     `gorm:"column:revision" json:"revision"`
	PreparedBy               string     `gorm:"column:prepared_by" json:"prepared_by"`
	Version                  string     `gorm:"column:version" json:"version"`
	UserEmail                string     `gorm:"column:user_email;index" json:"user_email"`
	ApprovalsJSON            *string    `gorm:"column:approvals_json" json:"-"`
	ApprovalNotificationSent bool       `gorm:"column:approval_notification_sent" json:"approval_notification_sent"`
	CreatedAt                time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                time.Time  `gorm:"column:updated_at;index" json:"updated_at"`
	DeletedAt                *time.Time `gorm:"column:deleted_at" json:"-"`
}

func (Report) TableName() string { return "reports" }

// ApprovalStage is one step of a report's approval sequence.
type ApprovalStage struct {
	Stage  int    `json:"stage"`
	Title  string `json:"title"`
	Status string `json:"status"` // pending|approved|rejected
}

// ApprovalState is the structured form of Report.ApprovalsJSON. Stage is the
// currently pending step; Approvers is fixed in length once initialized.
type ApprovalState struct {
	Stage     int             `json:"stage"`
	Approvers []ApprovalStage `json:"approvers"`
}

// NewApprovalState returns the fixed two-stage template used when a report
// enters PENDING: Technical Manager first, then Project Manager.
func NewApprovalState() *ApprovalState {
	return &ApprovalState{
		Stage: 1,
		Approvers: []ApprovalStage{
			{Stage: 1, Title: "Technical Manager", Status: StagePending},
			{Stage: 2, Title: "Project Manager", Status: StagePending},
		},
	}
}

// SetApprovalState serializes state into ApprovalsJSON. A nil state clears it.
func (r *Report) SetApprovalState(state *ApprovalState) error {
	if state == nil {
		r.ApprovalsJSON = nil
		return nil
	}
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s := string(b)
	r.ApprovalsJSON = &s
	return nil
}

// ApprovalState parses ApprovalsJSON. Missing or malformed state returns
// (nil, false); it never fails open.
func (r *Report) ApprovalState() (*ApprovalState, bool) {
	if r.ApprovalsJSON == nil || *r.ApprovalsJSON == "" {
		return nil, false
	}
	var state ApprovalState
	if err := json.Unmarshal([]byte(*r.ApprovalsJSON), &state); err != nil {
		return nil, false
	}
	return &state, true
}

// IsAtStage reports whether the report's current approval stage equals stage.
// Unparseable approval state counts as not-at-any-stage.
func (r *Report) IsAtStage(stage int) bool {
	state, ok := r.ApprovalState()
	if !ok {
		return false
	}
	return state.Stage == stage
}

// SATReport carries the full submitted field set of a SAT report as an opaque
// JSON blob, with three columns broken out for querying.
type SATReport struct {
	ID       uint   `gorm:"primaryKey;column:sat_report_id" json:"sat_report_id"`
	ReportID string `gorm:"column:report_id;size:36;index" json:"report_id"`
	DataJSON string `gorm:"column:data_json" json:"-"`
	Date     string `gorm:"column:date" json:"date"`
	Purpose  string `gorm:"column:purpose" json:"purpose"`
	Scope    string `gorm:"column:scope" json:"scope"`
}

func (SATReport) TableName() string { return "sat_reports" }
