package dto

// JoinRequest payload for placing a staff member on posts.
type JoinRequest struct {
	PostIDs []int64 `json:"post_ids"`
}

// MembershipResponse reports the outcome of a join or leave.
type MembershipResponse struct {
	StaffID int64 `json:"staff_id"`
	Done    bool  `json:"done"`
}
