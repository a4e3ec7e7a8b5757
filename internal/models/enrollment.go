package models

import "time"

// Enrollment ties a user to a course. Per-user module enablement lives in
// EnabledModuleIDs; modules not listed are disabled for that user.
type Enrollment struct {
	ID               string
	UserID           string
	CourseID         string
	EnrolledAt       time.Time
	EnabledModuleIDs []string
}
