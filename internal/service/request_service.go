package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ecologics/collection-service/internal/model"
)

// RequestService owns the collection-request lifecycle:
// pending → in_progress → completed, or back to pending when an attempt
// fails. Completed requests stay completed; failed attempts pass
// through pending_review before re-queuing.
type RequestService struct {
	store RequestStore
	log   zerolog.Logger
}

func NewRequestService(store RequestStore, log zerolog.Logger) *RequestService {
	return &RequestService{store: store, log: log}
}

type CreateRequestInput struct {
	RequesterID    uuid.UUID
	Street         *string
	ExteriorNumber *int
	Neighborhood   *string
	PostalCode     *int
	ReferenceNotes *string
	Lat            *float64
	Lng            *float64
	Category       string
	MassKg         *float64
	Notes          *string
}

func (s *RequestService) Create(ctx context.Context, input CreateRequestInput) (uuid.UUID, error) {
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return uuid.Nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if input.Lat == nil || input.Lng == nil {
		return uuid.Nil, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}

	req := &model.Request{
		ID:             uuid.New(),
		RequesterID:    input.RequesterID,
		Street:         normalizeText(input.Street),
		ExteriorNumber: input.ExteriorNumber,
		Neighborhood:   normalizeText(input.Neighborhood),
		PostalCode:     input.PostalCode,
		ReferenceNotes: normalizeText(input.ReferenceNotes),
		Lat:            *input.Lat,
		Lng:            *input.Lng,
		Category:       category,
		MassKg:         input.MassKg,
		Notes:          normalizeText(input.Notes),
		State:          model.RequestStatePending,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.CreateRequest(ctx, req); err != nil {
		return uuid.Nil, fmt.Errorf("create request: %w", err)
	}
	return req.ID, nil
}

// ListForRequester returns the caller's requests, newest first. filter
// accepts a state name or "all"/"" for everything.
func (s *RequestService) ListForRequester(ctx context.Context, requesterID uuid.UUID, filter string) ([]model.Request, error) {
	state, err := parseStateFilter(filter)
	if err != nil {
		return nil, err
	}
	requests, err := s.store.ListByRequester(ctx, requesterID, state)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// ListAvailable is the collectors' pending pool.
func (s *RequestService) ListAvailable(ctx context.Context) ([]model.Request, error) {
	requests, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return requests, nil
}

// ListAssigned returns the requests a collector is currently working.
func (s *RequestService) ListAssigned(ctx context.Context, collectorID uuid.UUID) ([]model.Request, error) {
	requests, err := s.store.ListActiveForCollector(ctx, collectorID)
	if err != nil {
		return nil, fmt.Errorf("list assigned requests: %w", err)
	}
	return requests, nil
}

// Accept binds a collector to a pending request. The state flip is a
// conditional update, so of two racing collectors exactly one wins and
// the other gets ErrAlreadyAccepted.
func (s *RequestService) Accept(ctx context.Context, collectorID, requestID uuid.UUID) error {
	if _, err := s.getRequest(ctx, requestID); err != nil {
		return err
	}

	moved, err := s.store.TransitionState(ctx, requestID, model.RequestStatePending, model.RequestStateInProgress)
	if err != nil {
		return fmt.Errorf("accept request: %w", err)
	}
	if !moved {
		return ErrAlreadyAccepted
	}

	asg := &model.Assignment{
		ID:          uuid.New(),
		RequestID:   requestID,
		CollectorID: collectorID,
		AssignedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateAssignment(ctx, asg); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}

	s.log.Info().
		Str("request_id", requestID.String()).
		Str("collector_id", collectorID.String()).
		Msg("request accepted")
	return nil
}

type FinalizeInput struct {
	CollectorID uuid.UUID
	RequestID   uuid.UUID
	Evidence    model.EvidenceKind
	Notes       *string
	FinalLat    *float64
	FinalLng    *float64
	FinalizedAt time.Time
}

// Finalize closes one collection attempt. Completing evidence moves the
// request to completed and writes the activity record; anything else
// re-queues it through pending_review back to pending, with no record.
// The assignment stamp is the last write, so a finalization that fails
// midway leaves the assignment active and the call can be retried.
func (s *RequestService) Finalize(ctx context.Context, input FinalizeInput) error {
	if input.Evidence == "" {
		return fmt.Errorf("%w: evidence is required", ErrInvalidInput)
	}
	if input.FinalizedAt.IsZero() {
		input.FinalizedAt = time.Now()
	}
	finalizedAt := input.FinalizedAt.UTC()

	req, err := s.getRequest(ctx, input.RequestID)
	if err != nil {
		return err
	}

	asg, err := s.store.ActiveAssignment(ctx, input.RequestID, input.CollectorID)
	if err != nil {
		return fmt.Errorf("load assignment: %w", err)
	}
	if asg == nil {
		return fmt.Errorf("%w: no active assignment for this collector", ErrNotFound)
	}

	asg.FinalizedAt = &finalizedAt
	asg.Evidence = input.Evidence
	asg.Notes = normalizeText(input.Notes)
	asg.FinalLat = input.FinalLat
	asg.FinalLng = input.FinalLng

	if !input.Evidence.IsCompleting() {
		// Failed attempt: the request passes through pending_review and
		// immediately re-queues for another collector.
		if err := s.store.UpdateState(ctx, input.RequestID, model.RequestStatePendingReview); err != nil {
			return fmt.Errorf("mark pending review: %w", err)
		}
		if err := s.store.UpdateState(ctx, input.RequestID, model.RequestStatePending); err != nil {
			return fmt.Errorf("requeue request: %w", err)
		}
		if err := s.store.FinalizeAssignment(ctx, asg); err != nil {
			return fmt.Errorf("finalize assignment: %w", err)
		}
		s.log.Info().
			Str("request_id", input.RequestID.String()).
			Str("evidence", string(input.Evidence)).
			Msg("collection failed, request re-queued")
		return nil
	}

	if err := s.store.UpdateState(ctx, input.RequestID, model.RequestStateCompleted); err != nil {
		return fmt.Errorf("complete request: %w", err)
	}

	record := &model.ActivityRecord{
		ID:            uuid.New(),
		RequestID:     req.ID,
		RequesterID:   req.RequesterID,
		CollectorID:   input.CollectorID,
		MassKg:        massOrZero(req.MassKg),
		Category:      req.Category,
		Evidence:      input.Evidence,
		Notes:         asg.Notes,
		FinalLat:      input.FinalLat,
		FinalLng:      input.FinalLng,
		StartedAt:     req.CreatedAt,
		FinalizedAt:   finalizedAt,
		DurationHours: s.computeDuration(req.CreatedAt, finalizedAt),
	}
	if err := s.store.CreateActivity(ctx, record); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	if err := s.store.FinalizeAssignment(ctx, asg); err != nil {
		return fmt.Errorf("finalize assignment: %w", err)
	}

	s.log.Info().
		Str("request_id", input.RequestID.String()).
		Str("collector_id", input.CollectorID.String()).
		Msg("collection completed")
	return nil
}

// SetState is the administrative override: it writes any known state
// without checking that the transition is legal.
func (s *RequestService) SetState(ctx context.Context, principal model.Principal, requestID uuid.UUID, rawState string) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	state, ok := model.ParseRequestState(rawState)
	if !ok {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidInput, rawState)
	}
	if _, err := s.getRequest(ctx, requestID); err != nil {
		return err
	}
	if err := s.store.UpdateState(ctx, requestID, state); err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	s.log.Warn().
		Str("request_id", requestID.String()).
		Str("state", rawState).
		Str("admin_id", principal.UserID.String()).
		Msg("request state overridden")
	return nil
}

func (s *RequestService) getRequest(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load request: %w", err)
	}
	return req, nil
}

// computeDuration returns the attempt duration in hours, or nil when it
// cannot be computed. A nil duration never fails a finalization.
func (s *RequestService) computeDuration(start, end time.Time) *float64 {
	if start.IsZero() || end.IsZero() {
		s.log.Warn().Msg("missing timestamp, storing null duration")
		return nil
	}
	hours := end.UTC().Sub(start.UTC()).Hours()
	if hours < 0 {
		s.log.Warn().Float64("hours", hours).Msg("negative duration, storing null")
		return nil
	}
	return &hours
}

func parseStateFilter(filter string) (model.RequestState, error) {
	filter = strings.TrimSpace(strings.ToLower(filter))
	if filter == "" || filter == "all" {
		return "", nil
	}
	state, ok := model.ParseRequestState(filter)
	if !ok {
		return "", fmt.Errorf("%w: unknown state filter %q", ErrInvalidInput, filter)
	}
	return state, nil
}

func normalizeText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func massOrZero(mass *float64) float64 {
	if mass == nil {
		return 0
	}
	return *mass
}
