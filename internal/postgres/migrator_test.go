package postgres

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
)

type MigratorSuite struct {
	suite.Suite
	mock       sqlmock.Sqlmock
	db         *DB
	migrations []Migration
}

func TestMigrator(t *testing.T) {
	suite.Run(t, new(MigratorSuite))
}

func (s *MigratorSuite) SetupTest() {
	raw, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.mock = mock
	s.db = &DB{DB: sqlx.NewDb(raw, "postgres"), logger: logger.NewNoopLogger()}

	s.migrations, err = LoadMigrations()
	s.Require().NoError(err)
}

func (s *MigratorSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	_ = s.db.DB.Close()
}

func (s *MigratorSuite) expectApplied(versions ...int) {
	s.mock.ExpectExec("create table if not exists public.marketplace_schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"version"})
	for _, v := range versions {
		rows.AddRow(v)
	}
	s.mock.ExpectQuery("select version from public.marketplace_schema_migrations").WillReturnRows(rows)
}

func (s *MigratorSuite) TestUpAppliesPending() {
	s.expectApplied(1)
	for _, m := range s.migrations[1:] {
		s.mock.ExpectBegin()
		s.mock.ExpectExec(".+").WillReturnResult(sqlmock.NewResult(0, 0))
		s.mock.ExpectExec("insert into public.marketplace_schema_migrations").
			WithArgs(m.Version, m.Name).
			WillReturnResult(sqlmock.NewResult(1, 1))
		s.mock.ExpectCommit()
	}

	applied, err := NewMigrator(s.db).Up(context.Background())
	s.Require().NoError(err)
	s.Equal(len(s.migrations)-1, applied)
}

func (s *MigratorSuite) TestUpRollsBackFailedMigration() {
	s.expectApplied()
	s.mock.ExpectBegin()
	s.mock.ExpectExec(".+").WillReturnError(errors.New("relation provider does not exist"))
	s.mock.ExpectRollback()

	_, err := NewMigrator(s.db).Up(context.Background())
	s.Require().Error(err)
	s.True(ierr.IsDatabase(err))
}

func (s *MigratorSuite) TestWriteToPrintsPendingOnly() {
	versions := make([]int, 0, len(s.migrations)-1)
	for _, m := range s.migrations[:len(s.migrations)-1] {
		versions = append(versions, m.Version)
	}
	s.expectApplied(versions...)

	var buf bytes.Buffer
	s.Require().NoError(NewMigrator(s.db).WriteTo(context.Background(), &buf))

	last := s.migrations[len(s.migrations)-1]
	s.Contains(buf.String(), "-- "+last.Name)
	s.NotContains(buf.String(), "-- "+s.migrations[0].Name)
}
