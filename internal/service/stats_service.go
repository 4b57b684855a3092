package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ecologics/collection-service/internal/model"
)

type ExcelGenerator interface {
	Generate(report model.ActivityReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report model.ActivityReport) ([]byte, error)
}

// StatsService computes the dashboard rollups and the admin activity
// exports. Everything is recomputed from the store on every call.
type StatsService struct {
	stats       StatsStore
	excel       ExcelGenerator
	pdf         PDFGenerator
	recentLimit int
	log         zerolog.Logger
}

func NewStatsService(stats StatsStore, excel ExcelGenerator, pdf PDFGenerator, recentLimit int, log zerolog.Logger) *StatsService {
	if recentLimit <= 0 {
		recentLimit = 8
	}
	return &StatsService{stats: stats, excel: excel, pdf: pdf, recentLimit: recentLimit, log: log}
}

// ForPrincipal returns the caller's dashboard. Requesters see their own
// requests and collections, collectors their workload, admins the
// global picture.
func (s *StatsService) ForPrincipal(ctx context.Context, principal model.Principal) (*model.Stats, error) {
	switch {
	case principal.IsCollector():
		return s.forCollector(ctx, principal.UserID)
	case principal.IsAdmin():
		return s.scoped(ctx, nil, model.ActivityScope{})
	default:
		requesterID := principal.UserID
		return s.scoped(ctx, &requesterID, model.ActivityScope{RequesterID: &requesterID})
	}
}

func (s *StatsService) scoped(ctx context.Context, requesterID *uuid.UUID, scope model.ActivityScope) (*model.Stats, error) {
	counts, err := s.stats.RequestCounts(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("request counts: %w", err)
	}

	_, totalKg, err := s.stats.CompletedStats(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("completed stats: %w", err)
	}

	categories, err := s.stats.CategoryBreakdown(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}

	activity, err := s.stats.RecentActivity(ctx, scope, s.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}

	return &model.Stats{
		Total:      counts.Total,
		Pending:    counts.Pending,
		InProgress: counts.InProgress,
		Completed:  counts.Completed,
		TotalKg:    roundKg(totalKg),
		Categories: categories,
		Activity:   activity,
	}, nil
}

// forCollector mirrors the collector dashboard: the open pending pool,
// their own active workload, and their own completed collections.
func (s *StatsService) forCollector(ctx context.Context, collectorID uuid.UUID) (*model.Stats, error) {
	pending, err := s.stats.PendingPoolCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending pool: %w", err)
	}

	inProgress, err := s.stats.ActiveCountForCollector(ctx, collectorID)
	if err != nil {
		return nil, fmt.Errorf("active count: %w", err)
	}

	scope := model.ActivityScope{CollectorID: &collectorID}
	completed, totalKg, err := s.stats.CompletedStats(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("completed stats: %w", err)
	}

	categories, err := s.stats.CategoryBreakdown(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}

	activity, err := s.stats.RecentActivity(ctx, scope, s.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}

	return &model.Stats{
		Total:      pending + inProgress + completed,
		Pending:    pending,
		InProgress: inProgress,
		Completed:  completed,
		TotalKg:    roundKg(totalKg),
		Categories: categories,
		Activity:   activity,
	}, nil
}

type ExportFormat string

const (
	ExportFormatExcel ExportFormat = "xlsx"
	ExportFormatPDF   ExportFormat = "pdf"
)

type ExportActivityInput struct {
	Principal   model.Principal
	PeriodStart time.Time
	PeriodEnd   time.Time
	Format      ExportFormat
}

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportActivity renders the completed-collection log for a period as a
// downloadable workbook or PDF. Admin only.
func (s *StatsService) ExportActivity(ctx context.Context, input ExportActivityInput) (*ExportResult, error) {
	if !input.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}

	periodStart := dateOnly(input.PeriodStart)
	periodEnd := dateOnly(input.PeriodEnd)
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: period start must not be after period end", ErrInvalidInput)
	}
	endExclusive := periodEnd.Add(24 * time.Hour)

	entries, err := s.stats.ActivityForPeriod(ctx, periodStart, endExclusive)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	report := model.ActivityReport{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Entries:     entries,
		Categories:  make(map[string]model.CategoryStat, 8),
	}
	for _, entry := range entries {
		report.TotalKg += entry.MassKg
		stat := report.Categories[entry.Category]
		stat.Count++
		stat.Kg += entry.MassKg
		report.Categories[entry.Category] = stat
	}
	report.TotalKg = roundKg(report.TotalKg)

	period := fmt.Sprintf("%s-%s", periodStart.Format("20060102"), periodEnd.Format("20060102"))
	switch input.Format {
	case ExportFormatPDF:
		content, err := s.pdf.Generate(report)
		if err != nil {
			return nil, fmt.Errorf("generate pdf: %w", err)
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("activity-%s.pdf", period),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	case ExportFormatExcel:
		content, err := s.excel.Generate(report)
		if err != nil {
			return nil, fmt.Errorf("generate workbook: %w", err)
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("activity-%s.xlsx", period),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     content,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", ErrInvalidInput, input.Format)
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func roundKg(kg float64) float64 {
	return math.Round(kg*100) / 100
}
