package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormProductReader_GetProduct(t *testing.T) {
	t.Run("returns product snapshot", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		reader := NewGormProductReader(gormDB)

		productID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "name", "code"}).
			AddRow(productID, "Chicken Breast", "CHB-01")

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WillReturnRows(rows)

		info, err := reader.GetProduct(context.Background(), productID)

		require.NoError(t, err)
		assert.Equal(t, "Chicken Breast", info.Name)
		assert.Equal(t, "CHB-01", info.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown product", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		reader := NewGormProductReader(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WillReturnError(gorm.ErrRecordNotFound)

		info, err := reader.GetProduct(context.Background(), uuid.New())

		assert.Nil(t, info)
		assert.Equal(t, shared.CodeNotFound, shared.ErrorCode(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSupplierReader_GetSupplier(t *testing.T) {
	t.Run("returns supplier snapshot", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		reader := NewGormSupplierReader(gormDB)

		supplierID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "name"}).
			AddRow(supplierID, "Hofgut Nord")

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE id = \$1`).
			WillReturnRows(rows)

		info, err := reader.GetSupplier(context.Background(), supplierID)

		require.NoError(t, err)
		assert.Equal(t, "Hofgut Nord", info.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown supplier", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		reader := NewGormSupplierReader(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE id = \$1`).
			WillReturnError(gorm.ErrRecordNotFound)

		info, err := reader.GetSupplier(context.Background(), uuid.New())

		assert.Nil(t, info)
		assert.Equal(t, shared.CodeNotFound, shared.ErrorCode(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
