package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecologics/collection-service/internal/db"
	"github.com/ecologics/collection-service/internal/model"
)

type ComplaintRepository struct {
	stores *db.Stores
}

func NewComplaintRepository(stores *db.Stores) *ComplaintRepository {
	return &ComplaintRepository{stores: stores}
}

const complaintColumns = `
	id, requester_id, request_id, collector_id, motive, description,
	status, created_at
`

func (r *ComplaintRepository) CreateComplaint(ctx context.Context, complaint *model.Complaint) error {
	return r.stores.Run(ctx, "create_complaint", func(tx *gorm.DB) error {
		return tx.Exec(`
			INSERT INTO complaints (
				id, requester_id, request_id, collector_id, motive,
				description, status, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			complaint.ID,
			complaint.RequesterID,
			complaint.RequestID,
			complaint.CollectorID,
			complaint.Motive,
			complaint.Description,
			complaint.Status,
			complaint.CreatedAt,
		).Error
	})
}

func (r *ComplaintRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]model.Complaint, error) {
	var complaints []model.Complaint
	err := r.stores.Run(ctx, "list_complaints_by_requester", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT `+complaintColumns+`
			FROM complaints
			WHERE requester_id = ?
			ORDER BY created_at DESC
		`, requesterID).Scan(&complaints).Error
	})
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

func (r *ComplaintRepository) ListAll(ctx context.Context) ([]model.ComplaintView, error) {
	var rows []struct {
		model.Complaint
		FirstName string
		LastName  string
	}
	err := r.stores.Run(ctx, "list_all_complaints", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT
				c.id, c.requester_id, c.request_id, c.collector_id,
				c.motive, c.description, c.status, c.created_at,
				u.first_name, u.last_name
			FROM complaints c
			JOIN users u ON u.id = c.requester_id
			ORDER BY c.created_at DESC
		`).Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	views := make([]model.ComplaintView, 0, len(rows))
	for _, row := range rows {
		views = append(views, model.ComplaintView{
			Complaint:    row.Complaint,
			ReporterName: joinName(row.FirstName, row.LastName),
		})
	}
	return views, nil
}

func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ComplaintStatus) (bool, error) {
	var affected int64
	err := r.stores.Run(ctx, "update_complaint_status", func(tx *gorm.DB) error {
		result := tx.Exec(`UPDATE complaints SET status = ? WHERE id = ?`, status, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
