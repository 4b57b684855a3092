package model

import (
	"time"

	"github.com/google/uuid"
)

type ComplaintStatus string

const (
	ComplaintStatusPending  ComplaintStatus = "pending"
	ComplaintStatusInReview ComplaintStatus = "in_review"
	ComplaintStatusResolved ComplaintStatus = "resolved"
)

func ParseComplaintStatus(raw string) (ComplaintStatus, bool) {
	switch ComplaintStatus(raw) {
	case ComplaintStatusPending, ComplaintStatusInReview, ComplaintStatusResolved:
		return ComplaintStatus(raw), true
	default:
		return "", false
	}
}

type Complaint struct {
	ID          uuid.UUID       `json:"id"`
	RequesterID uuid.UUID       `json:"requester_id"`
	RequestID   *uuid.UUID      `json:"request_id,omitempty"`
	CollectorID *uuid.UUID      `json:"collector_id,omitempty"`
	Motive      string          `json:"motive"`
	Description string          `json:"description"`
	Status      ComplaintStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ComplaintView is the admin listing row: complaint plus reporter name.
type ComplaintView struct {
	Complaint
	ReporterName string `json:"reporter_name"`
}
