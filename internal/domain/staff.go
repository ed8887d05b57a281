package domain

import "time"

// PostStatus tracks the employment state of a staff member.
type PostStatus string

const (
	PostStatusPending  PostStatus = "PENDING"
	PostStatusEmployed PostStatus = "EMPLOYED"
	PostStatusLeft     PostStatus = "LEFT"
)

// StaffFragment holds the personal contact block of a staff record.
type StaffFragment struct {
	No        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Iso       string
}

// Staff is a person tracked for employment purposes, independent of any
// authentication identity. AccountID references the external account bound to
// the staff member once provisioning has run.
type Staff struct {
	ID         int64
	PostStatus PostStatus
	JoinedDate *time.Time
	LeftDate   *time.Time
	AccountID  *int64
	Fragment   StaffFragment
	Disabled   bool

	// Denormalized assignment view, rebuilt on read. Never persisted.
	PostIDs   []int64
	PostNames []string

	CreatedAt time.Time
	UpdatedAt time.Time
}
