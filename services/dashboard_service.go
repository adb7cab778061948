package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"report-approval-api/config"
	"report-approval-api/models"
)

type EngineerStats struct {
	TotalReports    int `json:"total_reports"`
	PendingReports  int `json:"pending_reports"`
	ApprovedReports int `json:"approved_reports"`
	DraftReports    int `json:"draft_reports"`
}

type AdminStats struct {
	TotalUsers     int64  `json:"total_users"`
	ActiveUsers    int64  `json:"active_users"`
	PendingUsers   int64  `json:"pending_users"`
	TotalReports   int64  `json:"total_reports"`
	PendingReports int64  `json:"pending_reports"`
	DatabaseStatus string `json:"database_status"`
}

type ManagerStats struct {
	ReportsCount     int64           `json:"reports_count"`
	PendingApprovals int             `json:"pending_approvals"`
	ApprovedReports  int64           `json:"approved_reports"`
	RecentReports    []models.Report `json:"recent_reports"`
}

// AnalyticsSnapshot is the periodic rollup stored by the analytics job.
type AnalyticsSnapshot struct {
	Users struct {
		Total    int64 `json:"total"`
		Active   int64 `json:"active"`
		Inactive int64 `json:"inactive"`
	} `json:"users"`
	Reports struct {
		Total    int64            `json:"total"`
		ByStatus map[string]int64 `json:"by_status"`
		ByType   map[string]int64 `json:"by_type"`
	} `json:"reports"`
	GeneratedAt time.Time `json:"generated_at"`
}

type DashboardService struct {
	db      *gorm.DB
	reports *ReportService
}

func NewDashboardService(db *gorm.DB, reports *ReportService) *DashboardService {
	if db == nil {
		db = config.DB
	}
	return &DashboardService{db: db, reports: reports}
}

// GetEngineerStats rolls up a single engineer's reports by status.
func (s *DashboardService) GetEngineerStats(userEmail string) EngineerStats {
	var reports []models.Report
	if err := s.db.Where("user_email = ?", userEmail).Find(&reports).Error; err != nil {
		log.Printf("failed to load engineer stats for %s: %v", userEmail, err)
		return EngineerStats{}
	}

	stats := EngineerStats{TotalReports: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case models.ReportStatusPending:
			stats.PendingReports++
		case models.ReportStatusApproved:
			stats.ApprovedReports++
		case models.ReportStatusDraft:
			stats.DraftReports++
		}
	}
	return stats
}

// GetAdminStats rolls up system-wide user and report counts.
func (s *DashboardService) GetAdminStats() AdminStats {
	stats := AdminStats{DatabaseStatus: "Connected"}

	if err := s.db.Raw("SELECT 1").Scan(new(int)).Error; err != nil {
		stats.DatabaseStatus = "Disconnected"
	}

	type countQuery struct {
		dest  *int64
		scope func(*gorm.DB) *gorm.DB
	}
	queries := []countQuery{
		{&stats.TotalUsers, func(db *gorm.DB) *gorm.DB { return db.Model(&models.User{}) }},
		{&stats.ActiveUsers, func(db *gorm.DB) *gorm.DB {
			return db.Model(&models.User{}).Where("status = ?", models.UserStatusActive)
		}},
		{&stats.PendingUsers, func(db *gorm.DB) *gorm.DB {
			return db.Model(&models.User{}).Where("status = ?", models.UserStatusPending)
		}},
		{&stats.TotalReports, func(db *gorm.DB) *gorm.DB { return db.Model(&models.Report{}) }},
		{&stats.PendingReports, func(db *gorm.DB) *gorm.DB {
			return db.Model(&models.Report{}).Where("status = ?", models.ReportStatusPending)
		}},
	}
	for _, q := range queries {
		if err := q.scope(s.db).Count(q.dest).Error; err != nil {
			log.Printf("failed to load admin stats: %v", err)
		}
	}
	return stats
}

// GetManagerStats rolls up approval workload for a manager role.
func (s *DashboardService) GetManagerStats(roleRaw string) ManagerStats {
	stats := ManagerStats{RecentReports: []models.Report{}}

	if err := s.db.Model(&models.Report{}).Count(&stats.ReportsCount).Error; err != nil {
		log.Printf("failed to count reports: %v", err)
	}
	if err := s.db.Model(&models.Report{}).
		Where("status = ?", models.ReportStatusApproved).
		Count(&stats.ApprovedReports).Error; err != nil {
		log.Printf("failed to count approved reports: %v", err)
	}
	if s.reports != nil {
		stats.PendingApprovals = s.reports.CountPendingForRole(roleRaw)
	}
	if err := s.db.Order("updated_at DESC").Limit(10).Find(&stats.RecentReports).Error; err != nil {
		log.Printf("failed to load recent reports: %v", err)
	}
	return stats
}

// Snapshot aggregates the analytics counts persisted by the periodic job.
func (s *DashboardService) Snapshot() (*AnalyticsSnapshot, error) {
	snap := &AnalyticsSnapshot{GeneratedAt: time.Now().UTC()}
	snap.Reports.ByStatus = map[string]int64{}
	snap.Reports.ByType = map[string]int64{}

	if err := s.db.Model(&models.User{}).Count(&snap.Users.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).
		Where("status = ?", models.UserStatusActive).
		Count(&snap.Users.Active).Error; err != nil {
		return nil, err
	}
	snap.Users.Inactive = snap.Users.Total - snap.Users.Active

	if err := s.db.Model(&models.Report{}).Count(&snap.Reports.Total).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var byStatus []bucket
	if err := s.db.Model(&models.Report{}).
		Select("status AS `key`, COUNT(*) AS count").
		Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, b := range byStatus {
		snap.Reports.ByStatus[b.Key] = b.Count
	}

	var byType []bucket
	if err := s.db.Model(&models.Report{}).
		Select("type AS `key`, COUNT(*) AS count").
		Group("type").Scan(&byType).Error; err != nil {
		return nil, err
	}
	for _, b := range byType {
		snap.Reports.ByType[b.Key] = b.Count
	}

	return snap, nil
}
