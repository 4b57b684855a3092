package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecologics/collection-service/internal/model"
)

type fakeComplaintStore struct {
	complaints map[uuid.UUID]*model.Complaint
}

func newFakeComplaintStore() *fakeComplaintStore {
	return &fakeComplaintStore{complaints: make(map[uuid.UUID]*model.Complaint)}
}

func (f *fakeComplaintStore) CreateComplaint(_ context.Context, complaint *model.Complaint) error {
	clone := *complaint
	f.complaints[complaint.ID] = &clone
	return nil
}

func (f *fakeComplaintStore) ListByRequester(_ context.Context, requesterID uuid.UUID) ([]model.Complaint, error) {
	var out []model.Complaint
	for _, complaint := range f.complaints {
		if complaint.RequesterID == requesterID {
			out = append(out, *complaint)
		}
	}
	return out, nil
}

func (f *fakeComplaintStore) ListAll(_ context.Context) ([]model.ComplaintView, error) {
	var out []model.ComplaintView
	for _, complaint := range f.complaints {
		out = append(out, model.ComplaintView{Complaint: *complaint})
	}
	return out, nil
}

func (f *fakeComplaintStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.ComplaintStatus) (bool, error) {
	complaint, ok := f.complaints[id]
	if !ok {
		return false, nil
	}
	complaint.Status = status
	return true, nil
}

type fakeRouteStore struct {
	routes []model.SuggestedRoute
}

func (f *fakeRouteStore) CreateRoute(_ context.Context, route *model.SuggestedRoute) error {
	f.routes = append(f.routes, *route)
	return nil
}

func (f *fakeRouteStore) ListRoutes(_ context.Context) ([]model.SuggestedRouteView, error) {
	var out []model.SuggestedRouteView
	for _, route := range f.routes {
		out = append(out, model.SuggestedRouteView{SuggestedRoute: route})
	}
	return out, nil
}

func newSupportFixture() (*SupportService, *fakeComplaintStore, *fakeRouteStore) {
	complaints := newFakeComplaintStore()
	routes := &fakeRouteStore{}
	svc := NewSupportService(complaints, routes, zerolog.Nop())
	return svc, complaints, routes
}

func TestCreateComplaint(t *testing.T) {
	svc, _, _ := newSupportFixture()
	requesterID := uuid.New()

	complaint, err := svc.CreateComplaint(context.Background(), CreateComplaintInput{
		RequesterID: requesterID,
		Motive:      "missed pickup",
		Description: "the collector never arrived",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintStatusPending, complaint.Status)
	assert.Equal(t, requesterID, complaint.RequesterID)

	own, err := svc.ListComplaints(context.Background(), requesterID)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestCreateComplaintValidation(t *testing.T) {
	svc, _, _ := newSupportFixture()

	_, err := svc.CreateComplaint(context.Background(), CreateComplaintInput{
		RequesterID: uuid.New(),
		Motive:      "  ",
		Description: "something",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestComplaintStatusLifecycle(t *testing.T) {
	svc, complaints, _ := newSupportFixture()
	admin := model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}

	complaint, err := svc.CreateComplaint(context.Background(), CreateComplaintInput{
		RequesterID: uuid.New(),
		Motive:      "noise",
		Description: "truck idles for an hour",
	})
	require.NoError(t, err)

	err = svc.UpdateComplaintStatus(context.Background(), model.Principal{Role: model.RoleRequester}, complaint.ID, "resolved")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = svc.UpdateComplaintStatus(context.Background(), admin, complaint.ID, "escalated")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.UpdateComplaintStatus(context.Background(), admin, uuid.New(), "resolved")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.UpdateComplaintStatus(context.Background(), admin, complaint.ID, "resolved"))
	assert.Equal(t, model.ComplaintStatusResolved, complaints.complaints[complaint.ID].Status)
}

func TestSuggestRoute(t *testing.T) {
	svc, _, routes := newSupportFixture()
	requesterID := uuid.New()

	route, err := svc.SuggestRoute(context.Background(), SuggestRouteInput{
		RequesterID: requesterID,
		Description: "pass through Colonia Centro on Tuesdays",
		Points: []model.Point{
			{Lat: 20.082, Lng: -98.363},
			{Lat: 20.09, Lng: -98.37},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, requesterID, route.RequesterID)
	assert.Len(t, routes.routes, 1)

	listed, err := svc.ListSuggestedRoutes(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Len(t, listed[0].Points, 2)
}

func TestSuggestRouteValidation(t *testing.T) {
	svc, _, _ := newSupportFixture()

	_, err := svc.SuggestRoute(context.Background(), SuggestRouteInput{
		RequesterID: uuid.New(),
		Description: "too short",
		Points:      []model.Point{{Lat: 20, Lng: -98}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SuggestRoute(context.Background(), SuggestRouteInput{
		RequesterID: uuid.New(),
		Description: "bad coordinates",
		Points: []model.Point{
			{Lat: 120, Lng: -98},
			{Lat: 20, Lng: -98},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
