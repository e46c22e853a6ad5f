package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/opsync/backend/internal/domain/catalog"
	"github.com/opsync/backend/internal/domain/shared"
)

func newMockItemRepository(t *testing.T) (*GormItemRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormItemRepository(gormDB), mock, mockDB
}

func itemRows(id uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "name", "sku", "description", "unit_price", "is_service"}).
		AddRow(id, now, now, 1, "Widget", "WID-001", "", "9.99", false)
}

func TestGormItemRepository_FindByID(t *testing.T) {
	t.Run("finds existing item", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "items" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(itemID, 1).
			WillReturnRows(itemRows(itemID))

		item, err := repo.FindByID(context.Background(), itemID)

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "WID-001", item.SKU)
		assert.Equal(t, "9.99", item.UnitPrice.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing item", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "items" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(itemID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		item, err := repo.FindByID(context.Background(), itemID)

		assert.Nil(t, item)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormItemRepository_FindBySKU(t *testing.T) {
	t.Run("uppercases the lookup key", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "items" WHERE sku = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("WID-001", 1).
			WillReturnRows(itemRows(itemID))

		item, err := repo.FindBySKU(context.Background(), " wid-001 ")

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, itemID, item.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormItemRepository_Count(t *testing.T) {
	t.Run("counts with search pattern", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "items" WHERE name ILIKE \$1 OR sku ILIKE \$2`).
			WithArgs("%wid%", "%wid%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.Count(context.Background(), shared.Filter{Search: "wid"})

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormItemRepository_Delete(t *testing.T) {
	t.Run("deletes existing item", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		mock.ExpectExec(`DELETE FROM "items" WHERE id = \$1`).
			WithArgs(itemID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), itemID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing was deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		mock.ExpectExec(`DELETE FROM "items" WHERE id = \$1`).
			WithArgs(itemID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), itemID), shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormItemRepository_InterfaceCompliance(t *testing.T) {
	repo, _, mockDB := newMockItemRepository(t)
	defer mockDB.Close()

	var _ catalog.ItemRepository = repo
}
