package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecologics/collection-service/internal/db"
	"github.com/ecologics/collection-service/internal/model"
)

// StatsRepository serves the read-only dashboard rollups. Each method
// recomputes from the store; counts are individual queries with no
// snapshot across them, so concurrent writes can skew totals briefly.
type StatsRepository struct {
	stores *db.Stores
}

func NewStatsRepository(stores *db.Stores) *StatsRepository {
	return &StatsRepository{stores: stores}
}

func (r *StatsRepository) RequestCounts(ctx context.Context, requesterID *uuid.UUID) (*model.RequestCounts, error) {
	counts := &model.RequestCounts{}

	count := func(op, query string, args ...interface{}) (int64, error) {
		var n int64
		err := r.stores.Run(ctx, op, func(tx *gorm.DB) error {
			return tx.Raw(query, args...).Scan(&n).Error
		})
		return n, err
	}

	var err error
	if requesterID != nil {
		counts.Total, err = count("count_total", `SELECT COUNT(*) FROM requests WHERE requester_id = ?`, *requesterID)
		if err != nil {
			return nil, err
		}
		counts.Pending, err = count("count_pending", `SELECT COUNT(*) FROM requests WHERE requester_id = ? AND state = ?`, *requesterID, model.RequestStatePending)
		if err != nil {
			return nil, err
		}
		counts.InProgress, err = count("count_in_progress", `SELECT COUNT(*) FROM requests WHERE requester_id = ? AND state = ?`, *requesterID, model.RequestStateInProgress)
		if err != nil {
			return nil, err
		}
		counts.Completed, err = count("count_completed", `SELECT COUNT(*) FROM requests WHERE requester_id = ? AND state = ?`, *requesterID, model.RequestStateCompleted)
		if err != nil {
			return nil, err
		}
		return counts, nil
	}

	counts.Total, err = count("count_total", `SELECT COUNT(*) FROM requests`)
	if err != nil {
		return nil, err
	}
	counts.Pending, err = count("count_pending", `SELECT COUNT(*) FROM requests WHERE state = ?`, model.RequestStatePending)
	if err != nil {
		return nil, err
	}
	counts.InProgress, err = count("count_in_progress", `SELECT COUNT(*) FROM requests WHERE state = ?`, model.RequestStateInProgress)
	if err != nil {
		return nil, err
	}
	counts.Completed, err = count("count_completed", `SELECT COUNT(*) FROM requests WHERE state = ?`, model.RequestStateCompleted)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *StatsRepository) PendingPoolCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.stores.Run(ctx, "pending_pool_count", func(tx *gorm.DB) error {
		return tx.Raw(`SELECT COUNT(*) FROM requests WHERE state = ?`, model.RequestStatePending).Scan(&n).Error
	})
	return n, err
}

func (r *StatsRepository) ActiveCountForCollector(ctx context.Context, collectorID uuid.UUID) (int64, error) {
	var n int64
	err := r.stores.Run(ctx, "active_count_for_collector", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT COUNT(*)
			FROM requests req
			JOIN assignments a ON a.request_id = req.id
			WHERE a.collector_id = ?
				AND a.finalized_at IS NULL
				AND req.state = ?
		`, collectorID, model.RequestStateInProgress).Scan(&n).Error
	})
	return n, err
}

func scopeFilter(scope model.ActivityScope) (string, []interface{}) {
	clause := ""
	args := []interface{}{}
	if scope.RequesterID != nil {
		clause += " AND requester_id = ?"
		args = append(args, *scope.RequesterID)
	}
	if scope.CollectorID != nil {
		clause += " AND collector_id = ?"
		args = append(args, *scope.CollectorID)
	}
	return clause, args
}

func (r *StatsRepository) CompletedStats(ctx context.Context, scope model.ActivityScope) (int64, float64, error) {
	clause, args := scopeFilter(scope)
	var row struct {
		Count   int64
		TotalKg float64
	}
	err := r.stores.Run(ctx, "completed_stats", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT COUNT(*) AS count, COALESCE(SUM(mass_kg), 0) AS total_kg
			FROM activity_records
			WHERE 1=1`+clause, args...).Scan(&row).Error
	})
	if err != nil {
		return 0, 0, err
	}
	return row.Count, row.TotalKg, nil
}

func (r *StatsRepository) CategoryBreakdown(ctx context.Context, scope model.ActivityScope) (map[string]model.CategoryStat, error) {
	clause, args := scopeFilter(scope)
	var rows []struct {
		Category string
		Count    int64
		Kg       float64
	}
	err := r.stores.Run(ctx, "category_breakdown", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT category, COUNT(*) AS count, COALESCE(SUM(mass_kg), 0) AS kg
			FROM activity_records
			WHERE 1=1`+clause+`
			GROUP BY category
		`, args...).Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]model.CategoryStat, len(rows))
	for _, row := range rows {
		breakdown[row.Category] = model.CategoryStat{Count: row.Count, Kg: row.Kg}
	}
	return breakdown, nil
}

const activityColumns = `
	id, request_id, requester_id, collector_id, mass_kg, category,
	evidence, notes, final_lat, final_lng, started_at, finalized_at,
	duration_hours
`

func (r *StatsRepository) RecentActivity(ctx context.Context, scope model.ActivityScope, limit int) ([]model.ActivityRecord, error) {
	clause, args := scopeFilter(scope)
	args = append(args, limit)

	var records []model.ActivityRecord
	err := r.stores.Run(ctx, "recent_activity", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT `+activityColumns+`
			FROM activity_records
			WHERE 1=1`+clause+`
			ORDER BY finalized_at DESC
			LIMIT ?
		`, args...).Scan(&records).Error
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *StatsRepository) ActivityForPeriod(ctx context.Context, from, to time.Time) ([]model.ActivityEntry, error) {
	var rows []struct {
		model.ActivityRecord
		RequesterFirst string
		RequesterLast  string
		CollectorFirst string
		CollectorLast  string
	}
	err := r.stores.Run(ctx, "activity_for_period", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT
				ar.id, ar.request_id, ar.requester_id, ar.collector_id,
				ar.mass_kg, ar.category, ar.evidence, ar.notes,
				ar.final_lat, ar.final_lng, ar.started_at, ar.finalized_at,
				ar.duration_hours,
				req_user.first_name AS requester_first,
				req_user.last_name AS requester_last,
				col_user.first_name AS collector_first,
				col_user.last_name AS collector_last
			FROM activity_records ar
			JOIN users req_user ON req_user.id = ar.requester_id
			JOIN users col_user ON col_user.id = ar.collector_id
			WHERE ar.finalized_at >= ? AND ar.finalized_at < ?
			ORDER BY ar.finalized_at ASC
		`, from, to).Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	entries := make([]model.ActivityEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.ActivityEntry{
			ActivityRecord: row.ActivityRecord,
			RequesterName:  joinName(row.RequesterFirst, row.RequesterLast),
			CollectorName:  joinName(row.CollectorFirst, row.CollectorLast),
		})
	}
	return entries, nil
}

func joinName(first, last string) string {
	if last == "" {
		return first
	}
	return first + " " + last
}
