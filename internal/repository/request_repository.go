package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecologics/collection-service/internal/db"
	"github.com/ecologics/collection-service/internal/model"
)

// RequestRepository owns requests, assignments, and activity records,
// everything the lifecycle touches. All statements are dialect-portable
// so they run unchanged on the hosted and the embedded store.
type RequestRepository struct {
	stores *db.Stores
}

func NewRequestRepository(stores *db.Stores) *RequestRepository {
	return &RequestRepository{stores: stores}
}

const requestColumns = `
	id, requester_id, street, exterior_number, neighborhood, postal_code,
	reference_notes, lat, lng, category, mass_kg, notes, state, created_at
`

func (r *RequestRepository) CreateRequest(ctx context.Context, req *model.Request) error {
	return r.stores.Run(ctx, "create_request", func(tx *gorm.DB) error {
		return tx.Exec(`
			INSERT INTO requests (
				id, requester_id, street, exterior_number, neighborhood,
				postal_code, reference_notes, lat, lng, category, mass_kg,
				notes, state, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			req.ID,
			req.RequesterID,
			req.Street,
			req.ExteriorNumber,
			req.Neighborhood,
			req.PostalCode,
			req.ReferenceNotes,
			req.Lat,
			req.Lng,
			req.Category,
			req.MassKg,
			req.Notes,
			req.State,
			req.CreatedAt,
		).Error
	})
}

func (r *RequestRepository) GetRequest(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	err := r.stores.Run(ctx, "get_request", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT `+requestColumns+`
			FROM requests
			WHERE id = ?
			LIMIT 1
		`, id).Scan(&req).Error
	})
	if err != nil {
		return nil, err
	}
	if req.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &req, nil
}

func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID, state model.RequestState) ([]model.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE requester_id = ?
	`
	args := []interface{}{requesterID}
	if state != "" {
		query += ` AND state = ?`
		args = append(args, state)
	}
	query += ` ORDER BY created_at DESC`

	var requests []model.Request
	err := r.stores.Run(ctx, "list_requests_by_requester", func(tx *gorm.DB) error {
		return tx.Raw(query, args...).Scan(&requests).Error
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *RequestRepository) ListPending(ctx context.Context) ([]model.Request, error) {
	var requests []model.Request
	err := r.stores.Run(ctx, "list_pending_requests", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT `+requestColumns+`
			FROM requests
			WHERE state = ?
			ORDER BY created_at DESC
		`, model.RequestStatePending).Scan(&requests).Error
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *RequestRepository) ListActiveForCollector(ctx context.Context, collectorID uuid.UUID) ([]model.Request, error) {
	var requests []model.Request
	err := r.stores.Run(ctx, "list_active_for_collector", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT
				req.id, req.requester_id, req.street, req.exterior_number,
				req.neighborhood, req.postal_code, req.reference_notes,
				req.lat, req.lng, req.category, req.mass_kg, req.notes,
				req.state, req.created_at
			FROM requests req
			JOIN assignments a ON a.request_id = req.id
			WHERE a.collector_id = ?
				AND a.finalized_at IS NULL
				AND req.state = ?
			ORDER BY req.created_at DESC
		`, collectorID, model.RequestStateInProgress).Scan(&requests).Error
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// TransitionState is the compare-and-swap on the request state: the
// update applies only while the current state still matches from.
func (r *RequestRepository) TransitionState(ctx context.Context, id uuid.UUID, from, to model.RequestState) (bool, error) {
	var affected int64
	err := r.stores.Run(ctx, "transition_request_state", func(tx *gorm.DB) error {
		result := tx.Exec(`
			UPDATE requests
			SET state = ?
			WHERE id = ? AND state = ?
		`, to, id, from)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RequestRepository) UpdateState(ctx context.Context, id uuid.UUID, state model.RequestState) error {
	return r.stores.Run(ctx, "update_request_state", func(tx *gorm.DB) error {
		return tx.Exec(`
			UPDATE requests SET state = ? WHERE id = ?
		`, state, id).Error
	})
}

func (r *RequestRepository) CreateAssignment(ctx context.Context, asg *model.Assignment) error {
	return r.stores.Run(ctx, "create_assignment", func(tx *gorm.DB) error {
		return tx.Exec(`
			INSERT INTO assignments (id, request_id, collector_id, assigned_at)
			VALUES (?, ?, ?, ?)
		`, asg.ID, asg.RequestID, asg.CollectorID, asg.AssignedAt).Error
	})
}

const assignmentColumns = `
	id, request_id, collector_id, assigned_at, finalized_at, evidence,
	notes, final_lat, final_lng
`

func (r *RequestRepository) ActiveAssignment(ctx context.Context, requestID, collectorID uuid.UUID) (*model.Assignment, error) {
	var asg model.Assignment
	err := r.stores.Run(ctx, "active_assignment", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT `+assignmentColumns+`
			FROM assignments
			WHERE request_id = ? AND collector_id = ? AND finalized_at IS NULL
			ORDER BY assigned_at DESC
			LIMIT 1
		`, requestID, collectorID).Scan(&asg).Error
	})
	if err != nil {
		return nil, err
	}
	if asg.ID == uuid.Nil {
		return nil, nil
	}
	return &asg, nil
}

func (r *RequestRepository) LatestAssignment(ctx context.Context, requestID uuid.UUID) (*model.Assignment, error) {
	var asg model.Assignment
	err := r.stores.Run(ctx, "latest_assignment", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT `+assignmentColumns+`
			FROM assignments
			WHERE request_id = ?
			ORDER BY assigned_at DESC
			LIMIT 1
		`, requestID).Scan(&asg).Error
	})
	if err != nil {
		return nil, err
	}
	if asg.ID == uuid.Nil {
		return nil, nil
	}
	return &asg, nil
}

func (r *RequestRepository) FinalizeAssignment(ctx context.Context, asg *model.Assignment) error {
	return r.stores.Run(ctx, "finalize_assignment", func(tx *gorm.DB) error {
		return tx.Exec(`
			UPDATE assignments
			SET finalized_at = ?, evidence = ?, notes = ?, final_lat = ?, final_lng = ?
			WHERE id = ?
		`, asg.FinalizedAt, asg.Evidence, asg.Notes, asg.FinalLat, asg.FinalLng, asg.ID).Error
	})
}

func (r *RequestRepository) CreateActivity(ctx context.Context, record *model.ActivityRecord) error {
	return r.stores.Run(ctx, "create_activity", func(tx *gorm.DB) error {
		return tx.Exec(`
			INSERT INTO activity_records (
				id, request_id, requester_id, collector_id, mass_kg, category,
				evidence, notes, final_lat, final_lng, started_at,
				finalized_at, duration_hours
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			record.ID,
			record.RequestID,
			record.RequesterID,
			record.CollectorID,
			record.MassKg,
			record.Category,
			record.Evidence,
			record.Notes,
			record.FinalLat,
			record.FinalLng,
			record.StartedAt,
			record.FinalizedAt,
			record.DurationHours,
		).Error
	})
}
