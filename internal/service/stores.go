package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecologics/collection-service/internal/model"
)

// Store interfaces the services depend on. The repository package
// provides the gorm-backed implementations; tests substitute mocks.

type RequestStore interface {
	CreateRequest(ctx context.Context, req *model.Request) error
	GetRequest(ctx context.Context, id uuid.UUID) (*model.Request, error)
	// ListByRequester filters by state; the zero value means all states.
	ListByRequester(ctx context.Context, requesterID uuid.UUID, state model.RequestState) ([]model.Request, error)
	ListPending(ctx context.Context) ([]model.Request, error)
	ListActiveForCollector(ctx context.Context, collectorID uuid.UUID) ([]model.Request, error)
	// TransitionState flips the state only when the current state matches
	// from, and reports whether a row changed.
	TransitionState(ctx context.Context, id uuid.UUID, from, to model.RequestState) (bool, error)
	UpdateState(ctx context.Context, id uuid.UUID, state model.RequestState) error

	CreateAssignment(ctx context.Context, asg *model.Assignment) error
	// ActiveAssignment returns the unfinalized assignment binding this
	// collector to this request, or nil when there is none.
	ActiveAssignment(ctx context.Context, requestID, collectorID uuid.UUID) (*model.Assignment, error)
	// LatestAssignment returns the newest assignment for a request
	// regardless of finalization, or nil.
	LatestAssignment(ctx context.Context, requestID uuid.UUID) (*model.Assignment, error)
	FinalizeAssignment(ctx context.Context, asg *model.Assignment) error

	CreateActivity(ctx context.Context, record *model.ActivityRecord) error
}

type PositionStore interface {
	CreatePosition(ctx context.Context, report *model.PositionReport) error
	// LatestPosition returns nil when the collector never reported.
	LatestPosition(ctx context.Context, collectorID uuid.UUID) (*model.PositionReport, error)
	LatestPositions(ctx context.Context) ([]model.CollectorPosition, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	// FindByIdentifier matches email or username.
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	ListCollectors(ctx context.Context) ([]model.CollectorSummary, error)
}

type StatsStore interface {
	// RequestCounts scopes to one requester, or globally when nil.
	RequestCounts(ctx context.Context, requesterID *uuid.UUID) (*model.RequestCounts, error)
	PendingPoolCount(ctx context.Context) (int64, error)
	ActiveCountForCollector(ctx context.Context, collectorID uuid.UUID) (int64, error)
	CompletedStats(ctx context.Context, scope model.ActivityScope) (count int64, totalKg float64, err error)
	CategoryBreakdown(ctx context.Context, scope model.ActivityScope) (map[string]model.CategoryStat, error)
	RecentActivity(ctx context.Context, scope model.ActivityScope, limit int) ([]model.ActivityRecord, error)
	ActivityForPeriod(ctx context.Context, from, to time.Time) ([]model.ActivityEntry, error)
}

type ComplaintStore interface {
	CreateComplaint(ctx context.Context, complaint *model.Complaint) error
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]model.Complaint, error)
	ListAll(ctx context.Context) ([]model.ComplaintView, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ComplaintStatus) (bool, error)
}

type RouteStore interface {
	CreateRoute(ctx context.Context, route *model.SuggestedRoute) error
	ListRoutes(ctx context.Context) ([]model.SuggestedRouteView, error)
}
