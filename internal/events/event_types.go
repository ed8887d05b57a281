package events

import (
	"time"

	"github.com/spec-kit/org-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStaffJoined          EventType = "staff_joined"
	EventStaffLeft            EventType = "staff_left"
	EventAccountProvisioned   EventType = "account_provisioned"
	EventAccountDeprovisioned EventType = "account_deprovisioned"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type     domain.SubjectType `json:"type"`
	ClientID string             `json:"client_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	StaffID   int64       `json:"staff_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StaffJoinedPayload payload.
type StaffJoinedPayload struct {
	PostIDs []int64 `json:"post_ids"`
}

// StaffLeftPayload payload.
type StaffLeftPayload struct {
	ClearedPostIDs []int64 `json:"cleared_post_ids"`
}

// AccountProvisionedPayload payload.
type AccountProvisionedPayload struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
}

// AccountDeprovisionedPayload payload.
type AccountDeprovisionedPayload struct {
	AccountID int64 `json:"account_id"`
}
