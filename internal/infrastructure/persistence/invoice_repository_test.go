package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/opsync/backend/internal/domain/sales"
	"github.com/opsync/backend/internal/domain/shared"
)

// setupInvoiceTestDB creates an in-memory SQLite database with the invoice
// schema
func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE invoices (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_by TEXT,
			invoice_number TEXT NOT NULL UNIQUE,
			customer_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'DRAFT',
			issue_date DATETIME,
			due_date DATETIME,
			subtotal NUMERIC NOT NULL DEFAULT 0,
			total_paid NUMERIC NOT NULL DEFAULT 0,
			balance NUMERIC NOT NULL DEFAULT 0,
			notes TEXT
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE invoice_lines (
			id TEXT PRIMARY KEY,
			invoice_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			item_name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price NUMERIC NOT NULL,
			line_total NUMERIC NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE payments (
			id TEXT PRIMARY KEY,
			invoice_id TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			method TEXT NOT NULL,
			paid_at DATETIME NOT NULL,
			reference TEXT,
			created_by TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func newStoredInvoice(t *testing.T) *sales.Invoice {
	t.Helper()
	inv, err := sales.NewInvoice("INV-2026-000001", uuid.New(), nil, "net 30")
	require.NoError(t, err)

	line1, err := sales.NewInvoiceLine(inv.ID, uuid.New(), "Widget", 2, decimal.RequireFromString("10.005"))
	require.NoError(t, err)
	line2, err := sales.NewInvoiceLine(inv.ID, uuid.New(), "Gadget", 1, decimal.RequireFromString("5.00"))
	require.NoError(t, err)
	require.NoError(t, inv.ReplaceLines([]sales.InvoiceLine{*line1, *line2}))

	return inv
}

func TestGormInvoiceRepository_CreateAndFind(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := newStoredInvoice(t)
	require.NoError(t, repo.Create(ctx, inv))

	loaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-000001", loaded.InvoiceNumber)
	assert.Equal(t, sales.InvoiceStatusDraft, loaded.Status)
	assert.Len(t, loaded.Lines, 2)
	assert.Equal(t, "25.01", loaded.Subtotal.String())
	assert.Empty(t, loaded.Payments)

	byNumber, err := repo.FindByNumber(ctx, "INV-2026-000001")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byNumber.ID)
}

func TestGormInvoiceRepository_FindMissing(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByNumber(ctx, "INV-2026-999999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormInvoiceRepository_Update(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := newStoredInvoice(t)
	require.NoError(t, repo.Create(ctx, inv))

	require.NoError(t, inv.UpdateDetails(inv.CustomerID, nil, "updated notes"))
	require.NoError(t, repo.Update(ctx, inv))

	loaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated notes", loaded.Notes)
	assert.Equal(t, 2, loaded.Version)
	assert.Len(t, loaded.Lines, 2)
}

func TestGormInvoiceRepository_UpdateStaleVersion(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := newStoredInvoice(t)
	require.NoError(t, repo.Create(ctx, inv))

	stale := *inv
	stale.Version = 99

	err := repo.Update(ctx, &stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	// the stored row is untouched
	loaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Version)
}

func TestGormInvoiceRepository_UpdateReplacesLines(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := newStoredInvoice(t)
	require.NoError(t, repo.Create(ctx, inv))

	line, err := sales.NewInvoiceLine(inv.ID, uuid.New(), "Sprocket", 3, decimal.RequireFromString("2.50"))
	require.NoError(t, err)
	require.NoError(t, inv.ReplaceLines([]sales.InvoiceLine{*line}))
	require.NoError(t, repo.Update(ctx, inv))

	loaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, "Sprocket", loaded.Lines[0].ItemName)
	assert.Equal(t, "7.50", loaded.Subtotal.String())
}

func TestGormInvoiceRepository_Counts(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := newStoredInvoice(t)
	require.NoError(t, repo.Create(ctx, inv))

	count, err := repo.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	byCustomer, err := repo.CountByCustomer(ctx, inv.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byCustomer)

	byItem, err := repo.CountByItem(ctx, inv.Lines[0].ItemID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byItem)

	byOther, err := repo.CountByCustomer(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), byOther)
}

func TestGormInvoiceRepository_FindAll(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	first := newStoredInvoice(t)
	require.NoError(t, repo.Create(ctx, first))

	second, err := sales.NewInvoice("INV-2026-000002", first.CustomerID, nil, "")
	require.NoError(t, err)
	line, err := sales.NewInvoiceLine(second.ID, uuid.New(), "Widget", 1, decimal.RequireFromString("1.00"))
	require.NoError(t, err)
	require.NoError(t, second.ReplaceLines([]sales.InvoiceLine{*line}))
	require.NoError(t, repo.Create(ctx, second))

	all, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 10,
		Filters: map[string]interface{}{"status": sales.InvoiceStatusDraft},
	})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	none, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 10,
		Filters: map[string]interface{}{"customer_id": uuid.New()},
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormInvoiceRepository_FindAllSortWhitelist(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	first := newStoredInvoice(t)
	require.NoError(t, repo.Create(ctx, first))

	second, err := sales.NewInvoice("INV-2026-000002", first.CustomerID, nil, "")
	require.NoError(t, err)
	line, err := sales.NewInvoiceLine(second.ID, uuid.New(), "Widget", 1, decimal.RequireFromString("1.00"))
	require.NoError(t, err)
	require.NoError(t, second.ReplaceLines([]sales.InvoiceLine{*line}))
	require.NoError(t, repo.Create(ctx, second))

	// Whitelisted columns are honored
	byNumber, err := repo.FindAll(ctx, shared.Filter{OrderBy: "invoice_number", OrderDir: "asc"})
	require.NoError(t, err)
	require.Len(t, byNumber, 2)
	assert.Equal(t, "INV-2026-000001", byNumber[0].InvoiceNumber)
	assert.Equal(t, "INV-2026-000002", byNumber[1].InvoiceNumber)

	// A caller-supplied subquery must never reach the ORDER BY clause. If
	// it were interpolated, this query would fail on the missing table.
	hostile := "(SELECT amount FROM no_such_table)"
	all, err := repo.FindAll(ctx, shared.Filter{OrderBy: hostile, OrderDir: "desc"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
