package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestState string

const (
	RequestStatePending       RequestState = "pending"
	RequestStateInProgress    RequestState = "in_progress"
	RequestStateCompleted     RequestState = "completed"
	RequestStatePendingReview RequestState = "pending_review"
)

func ParseRequestState(raw string) (RequestState, bool) {
	switch RequestState(raw) {
	case RequestStatePending, RequestStateInProgress, RequestStateCompleted, RequestStatePendingReview:
		return RequestState(raw), true
	default:
		return "", false
	}
}

type EvidenceKind string

const (
	EvidenceCompleted            EvidenceKind = "completed"
	EvidenceCompletedByRequester EvidenceKind = "completed_by_requester"
	EvidenceNobodyHome           EvidenceKind = "nobody_home"
	EvidenceAccessBlocked        EvidenceKind = "access_blocked"
	EvidenceOther                EvidenceKind = "other"
)

// IsCompleting reports whether this evidence closes the request. Any
// other kind re-queues it for another attempt.
func (e EvidenceKind) IsCompleting() bool {
	return e == EvidenceCompleted || e == EvidenceCompletedByRequester
}

func ParseEvidenceKind(raw string) (EvidenceKind, bool) {
	switch EvidenceKind(raw) {
	case EvidenceCompleted, EvidenceCompletedByRequester, EvidenceNobodyHome, EvidenceAccessBlocked, EvidenceOther:
		return EvidenceKind(raw), true
	default:
		return "", false
	}
}

// Request is a single waste-collection ticket. Requests are never
// deleted, only moved through states.
type Request struct {
	ID             uuid.UUID    `json:"id"`
	RequesterID    uuid.UUID    `json:"requester_id"`
	Street         *string      `json:"street,omitempty"`
	ExteriorNumber *int         `json:"exterior_number,omitempty"`
	Neighborhood   *string      `json:"neighborhood,omitempty"`
	PostalCode     *int         `json:"postal_code,omitempty"`
	ReferenceNotes *string      `json:"reference_notes,omitempty"`
	Lat            float64      `json:"lat"`
	Lng            float64      `json:"lng"`
	Category       string       `json:"category"`
	MassKg         *float64     `json:"mass_kg,omitempty"`
	Notes          *string      `json:"notes,omitempty"`
	State          RequestState `json:"state"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Assignment binds one collector to one request for one attempt. A
// request retried after failure accumulates several, but only one may
// be unfinalized at a time.
type Assignment struct {
	ID          uuid.UUID    `json:"id"`
	RequestID   uuid.UUID    `json:"request_id"`
	CollectorID uuid.UUID    `json:"collector_id"`
	AssignedAt  time.Time    `json:"assigned_at"`
	FinalizedAt *time.Time   `json:"finalized_at,omitempty"`
	Evidence    EvidenceKind `json:"evidence,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	FinalLat    *float64     `json:"final_lat,omitempty"`
	FinalLng    *float64     `json:"final_lng,omitempty"`
}

// PositionReport is one sample of a collector's location. The log is
// append-only; the newest row per collector is their current position.
type PositionReport struct {
	ID          uuid.UUID `json:"id"`
	CollectorID uuid.UUID `json:"collector_id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	ReportedAt  time.Time `json:"reported_at"`
}

// CollectorPosition is a map marker: a collector's identity joined with
// their latest reported position.
type CollectorPosition struct {
	CollectorID uuid.UUID `json:"collector_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	Vehicle     *string   `json:"vehicle,omitempty"`
	Plate       *string   `json:"plate,omitempty"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	ReportedAt  time.Time `json:"reported_at"`
}

// ActivityRecord is the immutable audit row written once per successful
// completion.
type ActivityRecord struct {
	ID            uuid.UUID    `json:"id"`
	RequestID     uuid.UUID    `json:"request_id"`
	RequesterID   uuid.UUID    `json:"requester_id"`
	CollectorID   uuid.UUID    `json:"collector_id"`
	MassKg        float64      `json:"mass_kg"`
	Category      string       `json:"category"`
	Evidence      EvidenceKind `json:"evidence"`
	Notes         *string      `json:"notes,omitempty"`
	FinalLat      *float64     `json:"final_lat,omitempty"`
	FinalLng      *float64     `json:"final_lng,omitempty"`
	StartedAt     time.Time    `json:"started_at"`
	FinalizedAt   time.Time    `json:"finalized_at"`
	DurationHours *float64     `json:"duration_hours,omitempty"`
}

// TrackingInfo is the live-tracking snapshot a requester polls for.
type TrackingInfo struct {
	Collector         *TrackingCollector `json:"collector"`
	CollectorPosition Point              `json:"collector_position"`
	RequesterPosition Point              `json:"requester_position"`
	DistanceKm        float64            `json:"distance_km"`
	ETAMinutes        int                `json:"eta_minutes"`
	State             string             `json:"state"`
}

type TrackingCollector struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Vehicle string `json:"vehicle"`
	Plate   string `json:"plate"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
