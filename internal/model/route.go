package model

import (
	"time"

	"github.com/google/uuid"
)

// SuggestedRoute is a requester-drawn pickup route proposal.
type SuggestedRoute struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Points      []Point   `json:"points"`
}

// SuggestedRouteView adds the author's name for listings.
type SuggestedRouteView struct {
	SuggestedRoute
	AuthorName string `json:"author_name"`
}

type RoutePoint struct {
	RouteID  uuid.UUID `json:"route_id"`
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	Position int       `json:"position"`
}
