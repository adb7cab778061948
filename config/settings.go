package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// AppSettings is the typed view over the environment-driven feature flags and
// job limits shared by the API process and the worker.
type AppSettings struct {
	EnableEmailNotifications bool
	EnablePDFExport          bool

	CleanupRetentionDays   int
	AnalyticsIntervalHours int

	JobTimeLimit     time.Duration
	JobSoftTimeLimit time.Duration

	TemplatePath string
	OutputPath   string
}

// Settings reads the current environment. Values are cheap to derive so no
// caching is done; tests mutate the environment between calls.
func Settings() AppSettings {
	return AppSettings{
		EnableEmailNotifications: envBool("ENABLE_EMAIL_NOTIFICATIONS"),
		EnablePDFExport:          envBool("ENABLE_PDF_EXPORT"),
		CleanupRetentionDays:     envInt("CLEANUP_RETENTION_DAYS", 90),
		AnalyticsIntervalHours:   envInt("ANALYTICS_INTERVAL_HOURS", 6),
		JobTimeLimit:             time.Duration(envInt("JOB_TIME_LIMIT_SECONDS", 300)) * time.Second,
		JobSoftTimeLimit:         time.Duration(envInt("JOB_SOFT_TIME_LIMIT_SECONDS", 240)) * time.Second,
		TemplatePath:             envString("TEMPLATE_PATH", "templates"),
		OutputPath:               envString("OUTPUT_PATH", "generated"),
	}
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "true" || v == "1"
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && v > 0 {
		return v
	}
	return fallback
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
