package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecologics/collection-service/internal/db"
	"github.com/ecologics/collection-service/internal/model"
)

type UserRepository struct {
	stores *db.Stores
}

func NewUserRepository(stores *db.Stores) *UserRepository {
	return &UserRepository{stores: stores}
}

const userColumns = `
	id, role, username, email, first_name, last_name, phone, address,
	vehicle, plate, password_hash, created_at
`

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.stores.Run(ctx, "create_user", func(tx *gorm.DB) error {
		return tx.Exec(`
			INSERT INTO users (
				id, role, username, email, first_name, last_name, phone,
				address, vehicle, plate, password_hash, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			user.ID,
			user.Role,
			user.Username,
			user.Email,
			user.FirstName,
			user.LastName,
			user.Phone,
			user.Address,
			user.Vehicle,
			user.Plate,
			user.PasswordHash,
			user.CreatedAt,
		).Error
	})
}

func (r *UserRepository) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.stores.Run(ctx, "get_user", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT `+userColumns+`
			FROM users
			WHERE id = ?
			LIMIT 1
		`, id).Scan(&user).Error
	})
	if err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	var user model.User
	err := r.stores.Run(ctx, "find_user", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT `+userColumns+`
			FROM users
			WHERE email = ? OR username = ?
			LIMIT 1
		`, identifier, identifier).Scan(&user).Error
	})
	if err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.stores.Run(ctx, "user_exists", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT COUNT(*) FROM users WHERE email = ? OR username = ?
		`, email, username).Scan(&count).Error
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) error {
	assignments := make([]string, 0, 8)
	args := make([]interface{}, 0, 9)
	appendSet := func(column string, value *string) {
		if value != nil {
			assignments = append(assignments, column+" = ?")
			args = append(args, *value)
		}
	}
	appendSet("first_name", update.FirstName)
	appendSet("last_name", update.LastName)
	appendSet("phone", update.Phone)
	appendSet("email", update.Email)
	appendSet("address", update.Address)
	appendSet("username", update.Username)
	appendSet("vehicle", update.Vehicle)
	appendSet("plate", update.Plate)

	if len(assignments) == 0 {
		return nil
	}
	args = append(args, id)

	return r.stores.Run(ctx, "update_profile", func(tx *gorm.DB) error {
		return tx.Exec(
			`UPDATE users SET `+strings.Join(assignments, ", ")+` WHERE id = ?`,
			args...,
		).Error
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.stores.Run(ctx, "update_password", func(tx *gorm.DB) error {
		return tx.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, hash, id).Error
	})
}

func (r *UserRepository) ListCollectors(ctx context.Context) ([]model.CollectorSummary, error) {
	var collectors []model.CollectorSummary
	err := r.stores.Run(ctx, "list_collectors", func(tx *gorm.DB) error {
		return tx.Raw(`
			SELECT
				u.id,
				u.first_name,
				u.last_name,
				u.email,
				u.phone,
				u.vehicle,
				u.plate,
				COUNT(a.id) AS total_assignments,
				SUM(CASE WHEN a.finalized_at IS NOT NULL THEN 1 ELSE 0 END) AS completed
			FROM users u
			LEFT JOIN assignments a ON a.collector_id = u.id
			WHERE u.role = ?
			GROUP BY u.id, u.first_name, u.last_name, u.email, u.phone, u.vehicle, u.plate
			ORDER BY u.last_name, u.first_name
		`, model.RoleCollector).Scan(&collectors).Error
	})
	if err != nil {
		return nil, err
	}
	return collectors, nil
}
