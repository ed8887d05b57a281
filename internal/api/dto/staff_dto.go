package dto

import "time"

// DepartmentRequest payload for creating a department.
type DepartmentRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// DepartmentResponse representation.
type DepartmentResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
	IsActive bool   `json:"is_active"`
}

// PostRequest payload for creating a post.
type PostRequest struct {
	DepartmentID int64  `json:"department_id"`
	Name         string `json:"name"`
}

// PostResponse representation.
type PostResponse struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"department_id"`
	Name         string `json:"name"`
	AssignFor    *int64 `json:"assign_for,omitempty"`
}

// StaffRequest payload for creating or updating a staff record.
type StaffRequest struct {
	No        string `json:"no"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Iso       string `json:"iso"`
}

// StaffResponse representation.
type StaffResponse struct {
	ID         int64      `json:"id"`
	No         string     `json:"no"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Iso        string     `json:"iso"`
	PostStatus string     `json:"post_status"`
	JoinedDate *time.Time `json:"joined_date,omitempty"`
	LeftDate   *time.Time `json:"left_date,omitempty"`
	AccountID  *int64     `json:"account_id,omitempty"`
	Disabled   bool       `json:"disabled"`
	PostIDs    []int64    `json:"post_ids,omitempty"`
	PostNames  []string   `json:"post_names,omitempty"`
}
