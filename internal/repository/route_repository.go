package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ecologics/collection-service/internal/db"
	"github.com/ecologics/collection-service/internal/model"
)

type RouteRepository struct {
	stores *db.Stores
}

func NewRouteRepository(stores *db.Stores) *RouteRepository {
	return &RouteRepository{stores: stores}
}

func (r *RouteRepository) CreateRoute(ctx context.Context, route *model.SuggestedRoute) error {
	return r.stores.Run(ctx, "create_route", func(tx *gorm.DB) error {
		return tx.Transaction(func(tx *gorm.DB) error {
			err := tx.Exec(`
				INSERT INTO suggested_routes (id, requester_id, description, created_at)
				VALUES (?, ?, ?, ?)
			`, route.ID, route.RequesterID, route.Description, route.CreatedAt).Error
			if err != nil {
				return err
			}

			for i, point := range route.Points {
				if err := tx.Exec(`
					INSERT INTO suggested_route_points (route_id, lat, lng, position)
					VALUES (?, ?, ?, ?)
				`, route.ID, point.Lat, point.Lng, i).Error; err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func (r *RouteRepository) ListRoutes(ctx context.Context) ([]model.SuggestedRouteView, error) {
	var routes []model.SuggestedRouteView

	err := r.stores.Run(ctx, "list_routes", func(tx *gorm.DB) error {
		var heads []struct {
			model.SuggestedRoute
			FirstName string
			LastName  string
		}
		if err := tx.Raw(`
			SELECT
				sr.id, sr.requester_id, sr.description, sr.created_at,
				u.first_name, u.last_name
			FROM suggested_routes sr
			JOIN users u ON u.id = sr.requester_id
			ORDER BY sr.created_at DESC
		`).Scan(&heads).Error; err != nil {
			return err
		}

		routes = routes[:0]
		for _, head := range heads {
			var points []model.Point
			if err := tx.Raw(`
				SELECT lat, lng
				FROM suggested_route_points
				WHERE route_id = ?
				ORDER BY position
			`, head.ID).Scan(&points).Error; err != nil {
				return err
			}

			view := model.SuggestedRouteView{
				SuggestedRoute: head.SuggestedRoute,
				AuthorName:     joinName(head.FirstName, head.LastName),
			}
			view.Points = points
			routes = append(routes, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return routes, nil
}
