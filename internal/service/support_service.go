package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ecologics/collection-service/internal/model"
)

// SupportService covers the two feedback channels: complaints and
// suggested collection routes.
type SupportService struct {
	complaints ComplaintStore
	routes     RouteStore
	log        zerolog.Logger
}

func NewSupportService(complaints ComplaintStore, routes RouteStore, log zerolog.Logger) *SupportService {
	return &SupportService{complaints: complaints, routes: routes, log: log}
}

type CreateComplaintInput struct {
	RequesterID uuid.UUID
	RequestID   *uuid.UUID
	CollectorID *uuid.UUID
	Motive      string
	Description string
}

func (s *SupportService) CreateComplaint(ctx context.Context, input CreateComplaintInput) (*model.Complaint, error) {
	motive := strings.TrimSpace(input.Motive)
	description := strings.TrimSpace(input.Description)
	if motive == "" || description == "" {
		return nil, fmt.Errorf("%w: motive and description are required", ErrInvalidInput)
	}

	complaint := model.Complaint{
		ID:          uuid.New(),
		RequesterID: input.RequesterID,
		RequestID:   input.RequestID,
		CollectorID: input.CollectorID,
		Motive:      motive,
		Description: description,
		Status:      model.ComplaintStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.complaints.CreateComplaint(ctx, &complaint); err != nil {
		return nil, fmt.Errorf("create complaint: %w", err)
	}
	return &complaint, nil
}

func (s *SupportService) ListComplaints(ctx context.Context, reporterID uuid.UUID) ([]model.Complaint, error) {
	list, err := s.complaints.ListByRequester(ctx, reporterID)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return list, nil
}

func (s *SupportService) AdminListComplaints(ctx context.Context, principal model.Principal) ([]model.ComplaintView, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	list, err := s.complaints.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return list, nil
}

func (s *SupportService) UpdateComplaintStatus(ctx context.Context, principal model.Principal, complaintID uuid.UUID, rawStatus string) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	status, ok := model.ParseComplaintStatus(rawStatus)
	if !ok {
		return fmt.Errorf("%w: unknown complaint status %q", ErrInvalidInput, rawStatus)
	}

	updated, err := s.complaints.UpdateStatus(ctx, complaintID, status)
	if err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	if !updated {
		return ErrNotFound
	}

	s.log.Info().Str("complaint_id", complaintID.String()).Str("status", string(status)).Msg("complaint status updated")
	return nil
}

type SuggestRouteInput struct {
	RequesterID uuid.UUID
	Description string
	Points      []model.Point
}

// SuggestRoute records a citizen-proposed collection route. Points keep
// their submitted order.
func (s *SupportService) SuggestRoute(ctx context.Context, input SuggestRouteInput) (*model.SuggestedRoute, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: route description is required", ErrInvalidInput)
	}
	if len(input.Points) < 2 {
		return nil, fmt.Errorf("%w: a route needs at least two points", ErrInvalidInput)
	}
	for _, p := range input.Points {
		if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return nil, fmt.Errorf("%w: point out of range", ErrInvalidInput)
		}
	}

	route := model.SuggestedRoute{
		ID:          uuid.New(),
		RequesterID: input.RequesterID,
		Description: description,
		Points:      input.Points,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.routes.CreateRoute(ctx, &route); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	return &route, nil
}

func (s *SupportService) ListSuggestedRoutes(ctx context.Context) ([]model.SuggestedRouteView, error) {
	list, err := s.routes.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return list, nil
}
