// Package models holds instructor applications and the admin feed entries
// created when they arrive.
package models

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus accepts the three known statuses. Empty means "any".
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case "", StatusPending, StatusApproved, StatusRejected:
		return Status(raw), true
	default:
		return "", false
	}
}

// DefaultTeachingFormat applies when the applicant leaves the format blank.
const DefaultTeachingFormat = "Live Sessions"

type Application struct {
	ID             string     `json:"id"`
	FullName       string     `json:"fullName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Expertise      string     `json:"expertise"`
	Experience     string     `json:"experience,omitempty"`
	Qualifications string     `json:"qualifications,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	Portfolio      string     `json:"portfolio,omitempty"`
	LinkedIn       string     `json:"linkedin,omitempty"`
	Availability   string     `json:"availability,omitempty"`
	TeachingFormat string     `json:"teachingFormat"`
	Status         Status     `json:"status"`
	DecisionReason string     `json:"decisionReason,omitempty"`
	SubmittedAt    time.Time  `json:"submittedAt"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
}

// Decided reports whether an admin already approved or rejected the application.
func (a *Application) Decided() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected
}

// Admin feed entry constants for new applications.
const (
	NotificationTypeNewApplication  = "new_instructor_application"
	NotificationTitleNewApplication = "New Instructor Application"
	PriorityMedium                  = "medium"
)

type AdminNotification struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Priority      string    `json:"priority"`
	Read          bool      `json:"read"`
	ApplicationID string    `json:"applicationId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewApplicationNotice builds the feed entry announcing app.
func NewApplicationNotice(id string, app *Application) AdminNotification {
	return AdminNotification{
		ID:            id,
		Type:          NotificationTypeNewApplication,
		Title:         NotificationTitleNewApplication,
		Message:       app.FullName + " has applied to become an instructor",
		Priority:      PriorityMedium,
		ApplicationID: app.ID,
		CreatedAt:     app.SubmittedAt,
	}
}
