package services

import "errors"

// Error taxonomy shared by the service layer. Callers match with errors.Is;
// wrapped variants carry the offending field or id.
var (
	ErrReportNotFound    = errors.New("report not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("actor not allowed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrWrongStage        = errors.New("report is not at the acting role's stage")
)
