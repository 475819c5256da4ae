package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/marketplace/internal/config"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPingMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func TestPingRetriesUntilReachable(t *testing.T) {
	db, mock := newPingMock(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	b := backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 5)
	require.NoError(t, ping(context.Background(), db, b, logger.NewNoopLogger()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPingGivesUp(t *testing.T) {
	db, mock := newPingMock(t)
	for i := 0; i < 3; i++ {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	}

	b := backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
	err := ping(context.Background(), db, b, logger.NewNoopLogger())
	require.Error(t, err)
	assert.True(t, ierr.IsDatabase(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDBRequiresDSN(t *testing.T) {
	_, err := NewDB(config.GetDefaultConfig(), logger.NewNoopLogger())
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
