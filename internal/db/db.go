package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ecologics/collection-service/internal/config"
)

// Stores holds the hosted Postgres handle and the embedded SQLite
// fallback, in that priority order. Every repository call goes through
// Run, which tries the primary and falls back once when the primary is
// unreachable. The two handles share one schema and one set of raw SQL
// statements; there is no reconciliation between them.
type Stores struct {
	primary   *gorm.DB
	secondary *gorm.DB
	timeout   time.Duration
	log       zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	stores := &Stores{timeout: cfg.DB.OpTimeout, log: log}

	if cfg.DB.DSN != "" {
		primary, err := openPostgres(cfg)
		if err == nil {
			stores.primary = primary
		} else {
			if cfg.DB.FallbackPath == "" {
				return nil, fmt.Errorf("connect postgres: %w", err)
			}
			log.Warn().Err(err).Msg("postgres unreachable, embedded store becomes primary")
		}
	}

	if cfg.DB.FallbackPath != "" {
		embedded, err := openSQLite(cfg.DB.FallbackPath)
		if err != nil {
			if stores.primary == nil {
				return nil, fmt.Errorf("open embedded store: %w", err)
			}
			log.Warn().Err(err).Msg("embedded store unavailable, running without fallback")
		} else if stores.primary == nil {
			stores.primary = embedded
		} else {
			stores.secondary = embedded
		}
	}

	if stores.primary == nil {
		return nil, fmt.Errorf("no store configured")
	}

	if err := Migrate(stores.primary); err != nil {
		return nil, fmt.Errorf("migrate primary: %w", err)
	}
	if stores.secondary != nil {
		if err := Migrate(stores.secondary); err != nil {
			return nil, fmt.Errorf("migrate fallback: %w", err)
		}
	}

	return stores, nil
}

func openPostgres(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	return db, nil
}

func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Run executes fn against the primary store with the configured
// timeout. When the primary fails with a connectivity-class error and a
// fallback is configured, fn runs once more against the fallback; its
// result is final.
func (s *Stores) Run(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := fn(s.primary.WithContext(runCtx))
	cancel()
	if err == nil || s.secondary == nil || !isUnavailable(err) {
		return err
	}

	s.log.Warn().Err(err).Str("op", op).Msg("primary store unavailable, retrying on fallback")

	fbCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(s.secondary.WithContext(fbCtx))
}

// HasFallback reports whether a secondary store is configured.
func (s *Stores) HasFallback() bool {
	return s.secondary != nil
}

func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, gorm.ErrInvalidDB) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"failed to connect",
		"no such host",
		"bad connection",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
