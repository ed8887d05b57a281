package domain

import "time"

// Department represents a high-level organizational unit. Departments own
// posts; staff membership in a department is derived from post assignments.
type Department struct {
	ID        int64
	Name      string
	ParentID  *int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
