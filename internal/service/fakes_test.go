package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecologics/collection-service/internal/model"
)

// In-memory store fakes. They keep just enough state for the lifecycle
// tests to exercise real transitions instead of canned answers.

type fakeRequestStore struct {
	requests    map[uuid.UUID]*model.Request
	assignments []*model.Assignment
	activities  []*model.ActivityRecord

	updateStateErr error
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: make(map[uuid.UUID]*model.Request)}
}

func (f *fakeRequestStore) CreateRequest(_ context.Context, req *model.Request) error {
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeRequestStore) GetRequest(_ context.Context, id uuid.UUID) (*model.Request, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRequestStore) ListByRequester(_ context.Context, requesterID uuid.UUID, state model.RequestState) ([]model.Request, error) {
	var out []model.Request
	for _, req := range f.requests {
		if req.RequesterID != requesterID {
			continue
		}
		if state != "" && req.State != state {
			continue
		}
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRequestStore) ListPending(_ context.Context) ([]model.Request, error) {
	var out []model.Request
	for _, req := range f.requests {
		if req.State == model.RequestStatePending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) ListActiveForCollector(_ context.Context, collectorID uuid.UUID) ([]model.Request, error) {
	var out []model.Request
	for _, asg := range f.assignments {
		if asg.CollectorID != collectorID || asg.FinalizedAt != nil {
			continue
		}
		if req, ok := f.requests[asg.RequestID]; ok && req.State == model.RequestStateInProgress {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) TransitionState(_ context.Context, id uuid.UUID, from, to model.RequestState) (bool, error) {
	req, ok := f.requests[id]
	if !ok || req.State != from {
		return false, nil
	}
	req.State = to
	return true, nil
}

func (f *fakeRequestStore) UpdateState(_ context.Context, id uuid.UUID, state model.RequestState) error {
	if f.updateStateErr != nil {
		return f.updateStateErr
	}
	req, ok := f.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	req.State = state
	return nil
}

func (f *fakeRequestStore) CreateAssignment(_ context.Context, asg *model.Assignment) error {
	clone := *asg
	f.assignments = append(f.assignments, &clone)
	return nil
}

func (f *fakeRequestStore) ActiveAssignment(_ context.Context, requestID, collectorID uuid.UUID) (*model.Assignment, error) {
	for _, asg := range f.assignments {
		if asg.RequestID == requestID && asg.CollectorID == collectorID && asg.FinalizedAt == nil {
			clone := *asg
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeRequestStore) LatestAssignment(_ context.Context, requestID uuid.UUID) (*model.Assignment, error) {
	var latest *model.Assignment
	for _, asg := range f.assignments {
		if asg.RequestID != requestID {
			continue
		}
		if latest == nil || asg.AssignedAt.After(latest.AssignedAt) {
			latest = asg
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

func (f *fakeRequestStore) FinalizeAssignment(_ context.Context, asg *model.Assignment) error {
	for _, stored := range f.assignments {
		if stored.ID == asg.ID {
			*stored = *asg
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRequestStore) CreateActivity(_ context.Context, record *model.ActivityRecord) error {
	clone := *record
	f.activities = append(f.activities, &clone)
	return nil
}

type fakePositionStore struct {
	reports []model.PositionReport
}

func (f *fakePositionStore) CreatePosition(_ context.Context, report *model.PositionReport) error {
	f.reports = append(f.reports, *report)
	return nil
}

func (f *fakePositionStore) LatestPosition(_ context.Context, collectorID uuid.UUID) (*model.PositionReport, error) {
	var latest *model.PositionReport
	for i := range f.reports {
		report := &f.reports[i]
		if report.CollectorID != collectorID {
			continue
		}
		if latest == nil || report.ReportedAt.After(latest.ReportedAt) {
			latest = report
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

func (f *fakePositionStore) LatestPositions(_ context.Context) ([]model.CollectorPosition, error) {
	latest := make(map[uuid.UUID]model.PositionReport)
	for _, report := range f.reports {
		if current, ok := latest[report.CollectorID]; !ok || report.ReportedAt.After(current.ReportedAt) {
			latest[report.CollectorID] = report
		}
	}
	var out []model.CollectorPosition
	for _, report := range latest {
		out = append(out, model.CollectorPosition{
			CollectorID: report.CollectorID,
			Lat:         report.Lat,
			Lng:         report.Lng,
			ReportedAt:  report.ReportedAt,
		})
	}
	return out, nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	store := &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
	for _, user := range users {
		clone := *user
		store.users[user.ID] = &clone
	}
	return store
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) FindByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, identifier) || strings.EqualFold(user.Username, identifier) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) || strings.EqualFold(user.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uuid.UUID, update model.ProfileUpdate) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Address != nil {
		user.Address = *update.Address
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Vehicle != nil {
		user.Vehicle = update.Vehicle
	}
	if update.Plate != nil {
		user.Plate = update.Plate
	}
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = hash
	return nil
}

func (f *fakeUserStore) ListCollectors(_ context.Context) ([]model.CollectorSummary, error) {
	var out []model.CollectorSummary
	for _, user := range f.users {
		if user.Role != model.RoleCollector {
			continue
		}
		out = append(out, model.CollectorSummary{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Phone:     user.Phone,
			Vehicle:   user.Vehicle,
			Plate:     user.Plate,
		})
	}
	return out, nil
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }
