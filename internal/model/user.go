package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleRequester Role = "requester"
	RoleCollector Role = "collector"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Role         Role      `json:"role"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Vehicle      *string   `json:"vehicle,omitempty"`
	Plate        *string   `json:"plate,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ProfileUpdate carries only the fields a user may change about themselves.
// Nil means "leave as is".
type ProfileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
	Username  *string `json:"username"`
	Vehicle   *string `json:"vehicle"`
	Plate     *string `json:"plate"`
}

// CollectorSummary is the admin roster row: collector identity plus
// assignment throughput.
type CollectorSummary struct {
	ID               uuid.UUID `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Vehicle          *string   `json:"vehicle,omitempty"`
	Plate            *string   `json:"plate,omitempty"`
	TotalAssignments int64     `json:"total_assignments"`
	Completed        int64     `json:"completed"`
}
