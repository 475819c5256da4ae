package postgres

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/marketplace/internal/config"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB is a direct connection to the data service's Postgres. The server talks to the data
// service over REST; only schema tooling connects directly.
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// NewDB connects using postgres.dsn, retrying the first ping for up to
// postgres.connect_timeout while the database comes up
func NewDB(cfg *config.Configuration, logger *logger.Logger) (*DB, error) {
	if cfg.Postgres.DSN == "" {
		return nil, ierr.NewError("postgres dsn not configured").
			WithHint("Set postgres.dsn to run migrations").
			Mark(ierr.ErrValidation)
	}

	db, err := sqlx.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid database configuration").
			Mark(ierr.ErrDatabase)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.Postgres.ConnectTimeout

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Postgres.ConnectTimeout)
	defer cancel()

	if err := ping(ctx, db, b, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &DB{DB: db, logger: logger}, nil
}

func ping(ctx context.Context, db *sqlx.DB, b backoff.BackOff, logger *logger.Logger) error {
	err := backoff.RetryNotify(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		logger.Warnw("database not reachable yet", "error", err, "retry_in", next)
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not connect to the database").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() {
	if err := db.DB.Close(); err != nil {
		db.logger.Errorw("error closing database", "error", err)
	}
}
