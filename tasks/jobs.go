package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"report-approval-api/config"
	"report-approval-api/models"
	"report-approval-api/services"
	"report-approval-api/utils"
)

// NewRegistry wires every job handler against the given database. rdb may be
// nil; the analytics snapshot is then returned but not cached.
func NewRegistry(db *gorm.DB, rdb *redis.Client) Registry {
	return Registry{
		JobSendEmail:         sendEmailJob(),
		JobGenerateReport:    generateReportJob(db),
		JobBulkNotification:  bulkNotificationJob(db),
		JobCleanupOldData:    cleanupJob(db),
		JobGenerateAnalytics: analyticsJob(db, rdb),
	}
}

// sendEmailJob delivers one email. Failure is terminal for the invocation;
// this layer never retries.
func sendEmailJob() Handler {
	return func(ctx context.Context, args map[string]any, progress ProgressFunc) (map[string]any, error) {
		recipient := argString(args, "recipient")
		subject := argString(args, "subject")
		body := argString(args, "body")
		html := argString(args, "html_body")

		if recipient == "" {
			return nil, fmt.Errorf("recipient is required")
		}

		progress(map[string]any{"status": "Sending email..."})

		if err := config.SendMail([]string{recipient}, subject, body, html); err != nil {
			return nil, fmt.Errorf("sending to %s: %w", recipient, err)
		}

		return map[string]any{
			"message":   fmt.Sprintf("Email sent to %s", recipient),
			"recipient": recipient,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, nil
	}
}

// generateReportJob renders the report document and optionally a PDF, then
// stamps the report row. A report deleted mid-flight skips the stamp without
// failing the job.
func generateReportJob(db *gorm.DB) Handler {
	return func(ctx context.Context, args map[string]any, progress ProgressFunc) (map[string]any, error) {
		reportID := argString(args, "report_id")
		templatePath := argString(args, "template_path")
		outputPath := argString(args, "output_path")
		data, _ := args["data"].(map[string]any)

		settings := config.Settings()
		if templatePath == "" {
			templatePath = filepath.Join(settings.TemplatePath, "sat_report.tmpl")
		}
		if outputPath == "" {
			outputPath = filepath.Join(settings.OutputPath, reportID+".docx")
		}

		progress(map[string]any{"status": "Generating report...", "progress": 10})

		progress(map[string]any{"status": "Creating Word document...", "progress": 30})
		wordPath, err := utils.GenerateDocument(templatePath, outputPath, data)
		if err != nil {
			return nil, err
		}

		var pdfPath string
		if settings.EnablePDFExport {
			progress(map[string]any{"status": "Converting to PDF...", "progress": 60})
			pdfPath, err = utils.ConvertToPDF(wordPath)
			if err != nil {
				return nil, err
			}
		}

		progress(map[string]any{"status": "Updating database...", "progress": 90})
		var report models.Report
		err = db.WithContext(ctx).First(&report, "report_id = ?", reportID).Error
		switch {
		case err == nil:
			if uerr := db.WithContext(ctx).Model(&report).
				Update("updated_at", time.Now().UTC()).Error; uerr != nil {
				return nil, uerr
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Report deleted while generating; nothing to stamp.
		default:
			return nil, err
		}

		result := map[string]any{
			"word_path": wordPath,
			"report_id": reportID,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if pdfPath != "" {
			result["pdf_path"] = pdfPath
		}
		return result, nil
	}
}

// bulkNotificationJob creates one notification per recipient inside a single
// transaction. Each recipient's failure is tallied without aborting the
// batch; everything that succeeded becomes visible in one commit at the end.
func bulkNotificationJob(db *gorm.DB) Handler {
	return func(ctx context.Context, args map[string]any, progress ProgressFunc) (map[string]any, error) {
		emails := argStrings(args, "user_emails")
		title := argString(args, "title")
		message := argString(args, "message")
		notificationType := argString(args, "type")
		if notificationType == "" {
			notificationType = models.NotificationTypeInfo
		}

		total := len(emails)
		progress(map[string]any{"status": "Sending notifications...", "total": total})

		sent, failed := 0, 0
		tx := db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return nil, tx.Error
		}

		for i, email := range emails {
			if strings.TrimSpace(email) == "" {
				failed++
			} else {
				n := models.Notification{
					UserEmail: email,
					Title:     title,
					Message:   message,
					Type:      notificationType,
					CreatedAt: time.Now().UTC(),
				}
				if err := tx.Create(&n).Error; err != nil {
					failed++
				} else {
					sent++
				}
			}

			progress(map[string]any{
				"status":   fmt.Sprintf("Sending %d/%d...", i+1, total),
				"progress": int(float64(i+1) / float64(total) * 100),
			})
		}

		if err := tx.Commit().Error; err != nil {
			return nil, err
		}

		return map[string]any{
			"sent":      sent,
			"failed":    failed,
			"total":     total,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, nil
	}
}

// cleanupJob applies the retention policy.
func cleanupJob(db *gorm.DB) Handler {
	return func(ctx context.Context, args map[string]any, progress ProgressFunc) (map[string]any, error) {
		days := argInt(args, "days")
		if days <= 0 {
			days = config.Settings().CleanupRetentionDays
		}

		progress(map[string]any{"status": fmt.Sprintf("Cleaning data older than %d days...", days)})

		reports, notifications, err := services.NewSystemService(db.WithContext(ctx)).CleanupOldData(days)
		if err != nil {
			return nil, err
		}

		return map[string]any{
			"deleted_reports":       reports,
			"deleted_notifications": notifications,
			"timestamp":             time.Now().UTC().Format(time.RFC3339),
		}, nil
	}
}

// analyticsJob aggregates the user/report rollup and caches it in Redis
// keyed by date.
func analyticsJob(db *gorm.DB, rdb *redis.Client) Handler {
	return func(ctx context.Context, args map[string]any, progress ProgressFunc) (map[string]any, error) {
		progress(map[string]any{"status": "Aggregating analytics..."})

		snap, err := services.NewDashboardService(db.WithContext(ctx), nil).Snapshot()
		if err != nil {
			return nil, err
		}

		if rdb != nil {
			payload, merr := json.Marshal(snap)
			if merr != nil {
				return nil, merr
			}
			key := "analytics:" + snap.GeneratedAt.Format("20060102")
			if serr := rdb.Set(ctx, key, payload, 7*24*time.Hour).Err(); serr != nil {
				return nil, serr
			}
		}

		return map[string]any{
			"analytics": snap,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, nil
	}
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func argStrings(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, _ := item.(string)
			out = append(out, s)
		}
		return out
	}
	return nil
}
