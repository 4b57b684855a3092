package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Both dialects get the same schema; statements are idempotent and run
// in order on every start.

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		role VARCHAR(16) NOT NULL,
		username VARCHAR(64) NOT NULL,
		email VARCHAR(255) NOT NULL,
		first_name VARCHAR(128) NOT NULL,
		last_name VARCHAR(128) NOT NULL DEFAULT '',
		phone VARCHAR(32) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		vehicle VARCHAR(64),
		plate VARCHAR(32),
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users (email);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_username ON users (username);`,
	`CREATE TABLE IF NOT EXISTS requests (
		id UUID PRIMARY KEY,
		requester_id UUID NOT NULL REFERENCES users(id),
		street TEXT,
		exterior_number INTEGER,
		neighborhood TEXT,
		postal_code INTEGER,
		reference_notes TEXT,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		category VARCHAR(64) NOT NULL,
		mass_kg NUMERIC(10,2),
		notes TEXT,
		state VARCHAR(24) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_requests_requester ON requests (requester_id);`,
	`CREATE INDEX IF NOT EXISTS idx_requests_state ON requests (state);`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id UUID PRIMARY KEY,
		request_id UUID NOT NULL REFERENCES requests(id),
		collector_id UUID NOT NULL REFERENCES users(id),
		assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		finalized_at TIMESTAMPTZ,
		evidence VARCHAR(32),
		notes TEXT,
		final_lat DOUBLE PRECISION,
		final_lng DOUBLE PRECISION
	);`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_request ON assignments (request_id);`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_collector ON assignments (collector_id);`,
	`CREATE TABLE IF NOT EXISTS position_reports (
		id UUID PRIMARY KEY,
		collector_id UUID NOT NULL REFERENCES users(id),
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		reported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_position_reports_collector ON position_reports (collector_id, reported_at DESC);`,
	`CREATE TABLE IF NOT EXISTS activity_records (
		id UUID PRIMARY KEY,
		request_id UUID NOT NULL REFERENCES requests(id),
		requester_id UUID NOT NULL REFERENCES users(id),
		collector_id UUID NOT NULL REFERENCES users(id),
		mass_kg NUMERIC(10,2) NOT NULL DEFAULT 0,
		category VARCHAR(64) NOT NULL,
		evidence VARCHAR(32) NOT NULL,
		notes TEXT,
		final_lat DOUBLE PRECISION,
		final_lng DOUBLE PRECISION,
		started_at TIMESTAMPTZ NOT NULL,
		finalized_at TIMESTAMPTZ NOT NULL,
		duration_hours DOUBLE PRECISION
	);`,
	`CREATE INDEX IF NOT EXISTS idx_activity_requester ON activity_records (requester_id, finalized_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_activity_collector ON activity_records (collector_id, finalized_at DESC);`,
	`CREATE TABLE IF NOT EXISTS complaints (
		id UUID PRIMARY KEY,
		requester_id UUID NOT NULL REFERENCES users(id),
		request_id UUID REFERENCES requests(id),
		collector_id UUID REFERENCES users(id),
		motive VARCHAR(128) NOT NULL,
		description TEXT NOT NULL,
		status VARCHAR(24) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS suggested_routes (
		id UUID PRIMARY KEY,
		requester_id UUID NOT NULL REFERENCES users(id),
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS suggested_route_points (
		route_id UUID NOT NULL REFERENCES suggested_routes(id) ON DELETE CASCADE,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (route_id, position)
	);`,
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		vehicle TEXT,
		plate TEXT,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL REFERENCES users(id),
		street TEXT,
		exterior_number INTEGER,
		neighborhood TEXT,
		postal_code INTEGER,
		reference_notes TEXT,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		category TEXT NOT NULL,
		mass_kg REAL,
		notes TEXT,
		state TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS idx_requests_requester ON requests (requester_id);`,
	`CREATE INDEX IF NOT EXISTS idx_requests_state ON requests (state);`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL REFERENCES requests(id),
		collector_id TEXT NOT NULL REFERENCES users(id),
		assigned_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		finalized_at DATETIME,
		evidence TEXT,
		notes TEXT,
		final_lat REAL,
		final_lng REAL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_request ON assignments (request_id);`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_collector ON assignments (collector_id);`,
	`CREATE TABLE IF NOT EXISTS position_reports (
		id TEXT PRIMARY KEY,
		collector_id TEXT NOT NULL REFERENCES users(id),
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		reported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS idx_position_reports_collector ON position_reports (collector_id, reported_at DESC);`,
	`CREATE TABLE IF NOT EXISTS activity_records (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL REFERENCES requests(id),
		requester_id TEXT NOT NULL REFERENCES users(id),
		collector_id TEXT NOT NULL REFERENCES users(id),
		mass_kg REAL NOT NULL DEFAULT 0,
		category TEXT NOT NULL,
		evidence TEXT NOT NULL,
		notes TEXT,
		final_lat REAL,
		final_lng REAL,
		started_at DATETIME NOT NULL,
		finalized_at DATETIME NOT NULL,
		duration_hours REAL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_activity_requester ON activity_records (requester_id, finalized_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_activity_collector ON activity_records (collector_id, finalized_at DESC);`,
	`CREATE TABLE IF NOT EXISTS complaints (
		id TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL REFERENCES users(id),
		request_id TEXT REFERENCES requests(id),
		collector_id TEXT REFERENCES users(id),
		motive TEXT NOT NULL,
		description TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS suggested_routes (
		id TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL REFERENCES users(id),
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS suggested_route_points (
		route_id TEXT NOT NULL REFERENCES suggested_routes(id) ON DELETE CASCADE,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (route_id, position)
	);`,
}

func Migrate(db *gorm.DB) error {
	statements := postgresMigrations
	if db.Dialector.Name() == "sqlite" {
		statements = sqliteMigrations
	}
	for i, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
