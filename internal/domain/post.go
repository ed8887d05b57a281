package domain

import "time"

// Post is an organizational position that can be held by at most one staff
// member at a time. AssignFor is the current occupant; it is set and cleared
// only by the membership workflow.
type Post struct {
	ID           int64
	DepartmentID int64
	Name         string
	AssignFor    *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StaffPost links a staff member to a post. Records are created on join and
// destroyed on leave or reassignment; a (StaffID, PostID) pair appears at most
// once among active assignments.
type StaffPost struct {
	ID      int64
	StaffID int64
	PostID  int64
}
