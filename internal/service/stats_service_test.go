package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ecologics/collection-service/internal/model"
)

type mockStatsStore struct {
	mock.Mock
}

func (m *mockStatsStore) RequestCounts(ctx context.Context, requesterID *uuid.UUID) (*model.RequestCounts, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RequestCounts), args.Error(1)
}

func (m *mockStatsStore) PendingPoolCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStatsStore) ActiveCountForCollector(ctx context.Context, collectorID uuid.UUID) (int64, error) {
	args := m.Called(ctx, collectorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStatsStore) CompletedStats(ctx context.Context, scope model.ActivityScope) (int64, float64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Get(1).(float64), args.Error(2)
}

func (m *mockStatsStore) CategoryBreakdown(ctx context.Context, scope model.ActivityScope) (map[string]model.CategoryStat, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.CategoryStat), args.Error(1)
}

func (m *mockStatsStore) RecentActivity(ctx context.Context, scope model.ActivityScope, limit int) ([]model.ActivityRecord, error) {
	args := m.Called(ctx, scope, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ActivityRecord), args.Error(1)
}

func (m *mockStatsStore) ActivityForPeriod(ctx context.Context, from, to time.Time) ([]model.ActivityEntry, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ActivityEntry), args.Error(1)
}

type stubGenerator struct {
	report  model.ActivityReport
	content []byte
}

func (s *stubGenerator) Generate(report model.ActivityReport) ([]byte, error) {
	s.report = report
	return s.content, nil
}

func TestStatsForRequester(t *testing.T) {
	store := &mockStatsStore{}
	svc := NewStatsService(store, nil, nil, 8, zerolog.Nop())

	requesterID := uuid.New()
	scope := model.ActivityScope{RequesterID: &requesterID}

	store.On("RequestCounts", mock.Anything, &requesterID).
		Return(&model.RequestCounts{Total: 5, Pending: 2, InProgress: 1, Completed: 2}, nil)
	store.On("CompletedStats", mock.Anything, scope).Return(int64(2), 37.556, nil)
	store.On("CategoryBreakdown", mock.Anything, scope).
		Return(map[string]model.CategoryStat{"Plástico": {Count: 2, Kg: 37.556}}, nil)
	store.On("RecentActivity", mock.Anything, scope, 8).
		Return([]model.ActivityRecord{{ID: uuid.New()}}, nil)

	stats, err := svc.ForPrincipal(context.Background(), model.Principal{UserID: requesterID, Role: model.RoleRequester})
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.InProgress)
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, 37.56, stats.TotalKg)
	assert.Len(t, stats.Activity, 1)
	assert.Equal(t, int64(2), stats.Categories["Plástico"].Count)
	store.AssertExpectations(t)
}

func TestStatsForCollector(t *testing.T) {
	store := &mockStatsStore{}
	svc := NewStatsService(store, nil, nil, 8, zerolog.Nop())

	collectorID := uuid.New()
	scope := model.ActivityScope{CollectorID: &collectorID}

	store.On("PendingPoolCount", mock.Anything).Return(int64(4), nil)
	store.On("ActiveCountForCollector", mock.Anything, collectorID).Return(int64(1), nil)
	store.On("CompletedStats", mock.Anything, scope).Return(int64(3), 12.5, nil)
	store.On("CategoryBreakdown", mock.Anything, scope).
		Return(map[string]model.CategoryStat{}, nil)
	store.On("RecentActivity", mock.Anything, scope, 8).
		Return([]model.ActivityRecord{}, nil)

	stats, err := svc.ForPrincipal(context.Background(), model.Principal{UserID: collectorID, Role: model.RoleCollector})
	require.NoError(t, err)

	assert.Equal(t, int64(8), stats.Total)
	assert.Equal(t, int64(4), stats.Pending)
	assert.Equal(t, int64(1), stats.InProgress)
	assert.Equal(t, int64(3), stats.Completed)
	assert.Equal(t, 12.5, stats.TotalKg)
	store.AssertExpectations(t)
}

func TestStatsForAdminIsGlobal(t *testing.T) {
	store := &mockStatsStore{}
	svc := NewStatsService(store, nil, nil, 8, zerolog.Nop())

	store.On("RequestCounts", mock.Anything, (*uuid.UUID)(nil)).
		Return(&model.RequestCounts{Total: 10, Pending: 3, InProgress: 2, Completed: 5}, nil)
	store.On("CompletedStats", mock.Anything, model.ActivityScope{}).Return(int64(5), 80.0, nil)
	store.On("CategoryBreakdown", mock.Anything, model.ActivityScope{}).
		Return(map[string]model.CategoryStat{}, nil)
	store.On("RecentActivity", mock.Anything, model.ActivityScope{}, 8).
		Return([]model.ActivityRecord{}, nil)

	stats, err := svc.ForPrincipal(context.Background(), model.Principal{UserID: uuid.New(), Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.Total)
	store.AssertExpectations(t)
}

func TestExportActivityRequiresAdmin(t *testing.T) {
	svc := NewStatsService(&mockStatsStore{}, nil, nil, 8, zerolog.Nop())

	_, err := svc.ExportActivity(context.Background(), ExportActivityInput{
		Principal:   model.Principal{UserID: uuid.New(), Role: model.RoleRequester},
		PeriodStart: time.Now(),
		PeriodEnd:   time.Now(),
		Format:      ExportFormatExcel,
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestExportActivityValidatesInput(t *testing.T) {
	svc := NewStatsService(&mockStatsStore{}, nil, nil, 8, zerolog.Nop())
	admin := model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}

	_, err := svc.ExportActivity(context.Background(), ExportActivityInput{
		Principal: admin,
		Format:    ExportFormatExcel,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ExportActivity(context.Background(), ExportActivityInput{
		Principal:   admin,
		PeriodStart: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Format:      ExportFormatExcel,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExportActivityBuildsReport(t *testing.T) {
	store := &mockStatsStore{}
	excelGen := &stubGenerator{content: []byte("xlsx")}
	svc := NewStatsService(store, excelGen, nil, 8, zerolog.Nop())

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	entries := []model.ActivityEntry{
		{ActivityRecord: model.ActivityRecord{MassKg: 25, Category: "Plástico"}},
		{ActivityRecord: model.ActivityRecord{MassKg: 10.5, Category: "Plástico"}},
		{ActivityRecord: model.ActivityRecord{MassKg: 4, Category: "Vidrio"}},
	}
	// The period end is inclusive, so the query window extends one day.
	store.On("ActivityForPeriod", mock.Anything, from, to.Add(24*time.Hour)).Return(entries, nil)

	result, err := svc.ExportActivity(context.Background(), ExportActivityInput{
		Principal:   model.Principal{UserID: uuid.New(), Role: model.RoleAdmin},
		PeriodStart: from,
		PeriodEnd:   to,
		Format:      ExportFormatExcel,
	})
	require.NoError(t, err)

	assert.Equal(t, "activity-20260301-20260331.xlsx", result.FileName)
	assert.Equal(t, []byte("xlsx"), result.Content)

	assert.Equal(t, 39.5, excelGen.report.TotalKg)
	assert.Equal(t, int64(2), excelGen.report.Categories["Plástico"].Count)
	assert.Equal(t, 35.5, excelGen.report.Categories["Plástico"].Kg)
	assert.Equal(t, int64(1), excelGen.report.Categories["Vidrio"].Count)
	store.AssertExpectations(t)
}

func TestExportActivityUnknownFormat(t *testing.T) {
	store := &mockStatsStore{}
	store.On("ActivityForPeriod", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.ActivityEntry{}, nil)
	svc := NewStatsService(store, nil, nil, 8, zerolog.Nop())

	_, err := svc.ExportActivity(context.Background(), ExportActivityInput{
		Principal:   model.Principal{UserID: uuid.New(), Role: model.RoleAdmin},
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Format:      "csv",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
