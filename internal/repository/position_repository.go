package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecologics/collection-service/internal/db"
	"github.com/ecologics/collection-service/internal/model"
)

// PositionRepository appends to and reads the collector position log.
// Reports are never updated or deleted.
type PositionRepository struct {
	stores *db.Stores
}

func NewPositionRepository(stores *db.Stores) *PositionRepository {
	return &PositionRepository{stores: stores}
}

func (r *PositionRepository) CreatePosition(ctx context.Context, report *model.PositionReport) error {
	return r.stores.Run(ctx, "create_position", func(tx *gorm.DB) error {
		return tx.Exec(`
			INSERT INTO position_reports (id, collector_id, lat, lng, reported_at)
			VALUES (?, ?, ?, ?, ?)
		`, report.ID, report.CollectorID, report.Lat, report.Lng, report.ReportedAt).Error
	})
}

func (r *PositionRepository) LatestPosition(ctx context.Context, collectorID uuid.UUID) (*model.PositionReport, error) {
	var report model.PositionReport
	err := r.stores.Run(ctx, "latest_position", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT id, collector_id, lat, lng, reported_at
			FROM position_reports
			WHERE collector_id = ?
			ORDER BY reported_at DESC
			LIMIT 1
		`, collectorID).Scan(&report).Error
	})
	if err != nil {
		return nil, err
	}
	if report.ID == uuid.Nil {
		return nil, nil
	}
	return &report, nil
}

func (r *PositionRepository) LatestPositions(ctx context.Context) ([]model.CollectorPosition, error) {
	var positions []model.CollectorPosition
	err := r.stores.Run(ctx, "latest_positions", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT
				u.id AS collector_id,
				u.first_name,
				u.last_name,
				u.phone,
				u.vehicle,
				u.plate,
				p.lat,
				p.lng,
				p.reported_at
			FROM users u
			JOIN position_reports p ON p.collector_id = u.id
			WHERE u.role = ?
				AND p.reported_at = (
					SELECT MAX(p2.reported_at)
					FROM position_reports p2
					WHERE p2.collector_id = u.id
				)
			ORDER BY u.last_name, u.first_name
		`, model.RoleCollector).Scan(&positions).Error
	})
	if err != nil {
		return nil, err
	}
	return positions, nil
}
