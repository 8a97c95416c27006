package identity

import "time"

// Roles recorded on accounts.
const (
	RoleUser       = "user"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// Claims are the authorization facts attached to an account.
type Claims struct {
	Role               string
	InstructorApproved bool
	BankDetailsAdded   bool
	SubaccountCode     string
}

// Account is a directory entry keyed by subject id with a unique email.
type Account struct {
	SubjectID   string
	Email       string
	DisplayName string
	Claims      Claims
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session is what a verified bearer credential tells us about the caller.
type Session struct {
	SubjectID   string
	Email       string
	DisplayName string
	ExpiresAt   time.Time
}
