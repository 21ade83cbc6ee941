package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	appstock "github.com/freshstock/backend/internal/application/stock"
	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestGormTransactionScope_Execute(t *testing.T) {
	t.Run("commits when the function succeeds", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "movements"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := scope.Execute(context.Background(), func(repos appstock.TransactionalRepositories) error {
			return repos.MovementRepo().Append(context.Background(), newTestMovement(t))
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the function fails", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "movements"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		err := scope.Execute(context.Background(), func(repos appstock.TransactionalRepositories) error {
			if err := repos.MovementRepo().Append(context.Background(), newTestMovement(t)); err != nil {
				return err
			}
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a deadlock abort to the retryable concurrency error", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "movements"`).
			WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
		mock.ExpectRollback()

		err := scope.Execute(context.Background(), func(repos appstock.TransactionalRepositories) error {
			return repos.MovementRepo().Append(context.Background(), newTestMovement(t))
		})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, shared.CodeConcurrency, shared.ErrorCode(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a serialization failure to the retryable concurrency error", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "movements"`).
			WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
		mock.ExpectRollback()

		err := scope.Execute(context.Background(), func(repos appstock.TransactionalRepositories) error {
			return repos.MovementRepo().Append(context.Background(), newTestMovement(t))
		})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("leaves non-contention database errors untranslated", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(gormDB)

		uniqueViolation := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "movements"`).
			WillReturnError(uniqueViolation)
		mock.ExpectRollback()

		err := scope.Execute(context.Background(), func(repos appstock.TransactionalRepositories) error {
			return repos.MovementRepo().Append(context.Background(), newTestMovement(t))
		})

		assert.NotErrorIs(t, err, shared.ErrConcurrencyConflict)
		var pgErr *pgconn.PgError
		assert.ErrorAs(t, err, &pgErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exposes all four transactional repositories", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(gormDB)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := scope.Execute(context.Background(), func(repos appstock.TransactionalRepositories) error {
			assert.NotNil(t, repos.MovementRepo())
			assert.NotNil(t, repos.LevelRepo())
			assert.NotNil(t, repos.BatchRepo())
			assert.NotNil(t, repos.ReservationRepo())
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
