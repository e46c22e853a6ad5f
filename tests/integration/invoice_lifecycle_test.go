package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salesapp "github.com/opsync/backend/internal/application/sales"
	"github.com/opsync/backend/internal/domain/shared"
	"github.com/opsync/backend/internal/infrastructure/persistence"
)

func newInvoiceService(tdb *TestDB) *salesapp.InvoiceService {
	return salesapp.NewInvoiceService(
		persistence.NewGormInvoiceRepository(tdb.DB),
		persistence.NewGormPaymentRepository(tdb.DB),
		persistence.NewGormCustomerRepository(tdb.DB),
		persistence.NewGormItemRepository(tdb.DB),
		persistence.NewPostgresSequenceAllocator(tdb.DB),
	)
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestInvoiceLifecycle(t *testing.T) {
	tdb := NewTestDB(t)
	tdb.CleanTables()
	ctx := context.Background()

	customer := tdb.SeedCustomer("Acme Ltd")
	item := tdb.SeedItem("Widget", "WID-001", "50.00")

	service := newInvoiceService(tdb)

	created, err := service.Create(ctx, salesapp.CreateInvoiceRequest{
		CustomerID: customer.ID,
		Lines: []salesapp.CreateInvoiceLineInput{
			{ItemID: item.ID, Quantity: 2},
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", created.Status)
	assert.Equal(t, "100.00", created.Subtotal)
	assert.Equal(t, "100.00", created.Balance)
	assert.Regexp(t, `^INV-\d{4}-\d{6}$`, created.InvoiceNumber)

	issued, err := service.Issue(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ISSUED", issued.Status)
	require.NotNil(t, issued.IssueDate)

	partial, err := service.RecordPayment(ctx, created.ID, salesapp.RecordPaymentRequest{
		Amount: decimal.RequireFromString("40.00"),
		Method: "CASH",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "PARTIALLY_PAID", partial.Status)
	assert.Equal(t, "40.00", partial.TotalPaid)
	assert.Equal(t, "60.00", partial.Balance)

	settled, err := service.RecordPayment(ctx, created.ID, salesapp.RecordPaymentRequest{
		Amount: decimal.RequireFromString("60.00"),
		Method: "BANK",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "PAID", settled.Status)
	assert.Equal(t, "0.00", settled.Balance)
	assert.Len(t, settled.Payments, 2)

	payments, err := service.ListPayments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "40.00", payments[0].Amount)
	assert.Equal(t, "60.00", payments[1].Amount)

	// Settled invoices accept no further payments
	_, err = service.RecordPayment(ctx, created.ID, salesapp.RecordPaymentRequest{
		Amount: decimal.RequireFromString("1.00"),
		Method: "CASH",
	}, nil)
	requireDomainCode(t, err, "ALREADY_SETTLED")

	// And cannot be voided
	_, err = service.Void(ctx, created.ID)
	requireDomainCode(t, err, "INVALID_TRANSITION")
}

func TestInvoiceHalfCentRounding(t *testing.T) {
	tdb := NewTestDB(t)
	tdb.CleanTables()
	ctx := context.Background()

	customer := tdb.SeedCustomer("Rounding Co")
	item := tdb.SeedItem("Half Cent", "HC-001", "10.005")

	service := newInvoiceService(tdb)

	created, err := service.Create(ctx, salesapp.CreateInvoiceRequest{
		CustomerID: customer.ID,
		Lines: []salesapp.CreateInvoiceLineInput{
			{ItemID: item.ID, Quantity: 2},
		},
	}, nil)
	require.NoError(t, err)

	// The line total comes from the raw price, rounded once: 2 x 10.005
	// is 20.01, not 2 x 10.01.
	assert.Equal(t, "20.01", created.Subtotal)
	require.Len(t, created.Lines, 1)
	assert.Equal(t, "10.01", created.Lines[0].UnitPrice)
	assert.Equal(t, "20.01", created.Lines[0].LineTotal)

	// Round-trips unchanged through the database
	loaded, err := service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.01", loaded.Subtotal)
}

func TestInvoiceNumbersUniqueUnderConcurrency(t *testing.T) {
	tdb := NewTestDB(t)
	tdb.CleanTables()
	ctx := context.Background()

	customer := tdb.SeedCustomer("Concurrent Co")
	item := tdb.SeedItem("Gadget", "GAD-001", "5.00")

	service := newInvoiceService(tdb)

	const n = 8
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := service.Create(ctx, salesapp.CreateInvoiceRequest{
				CustomerID: customer.ID,
				Lines: []salesapp.CreateInvoiceLineInput{
					{ItemID: item.ID, Quantity: 1},
				},
			}, nil)
			assert.NoError(t, err)
			if err == nil {
				numbers <- created.InvoiceNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "duplicate invoice number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}

func TestConcurrentPaymentsConverge(t *testing.T) {
	tdb := NewTestDB(t)
	tdb.CleanTables()
	ctx := context.Background()

	customer := tdb.SeedCustomer("Race Co")
	item := tdb.SeedItem("Service", "SRV-001", "100.00")

	service := newInvoiceService(tdb)

	created, err := service.Create(ctx, salesapp.CreateInvoiceRequest{
		CustomerID: customer.ID,
		Lines: []salesapp.CreateInvoiceLineInput{
			{ItemID: item.ID, Quantity: 1},
		},
	}, nil)
	require.NoError(t, err)
	_, err = service.Issue(ctx, created.ID)
	require.NoError(t, err)

	// Two clerks record half the amount each at the same time. The row
	// lock serializes them; the re-aggregated total must come out exact.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.RecordPayment(ctx, created.ID, salesapp.RecordPaymentRequest{
				Amount: decimal.RequireFromString("50.00"),
				Method: "CASH",
			}, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", final.Status)
	assert.Equal(t, "100.00", final.TotalPaid)
	assert.Equal(t, "0.00", final.Balance)
	assert.Len(t, final.Payments, 2)
}

func TestOptimisticLockOnStaleUpdate(t *testing.T) {
	tdb := NewTestDB(t)
	tdb.CleanTables()
	ctx := context.Background()

	customer := tdb.SeedCustomer("Lock Co")
	item := tdb.SeedItem("Bolt", "BLT-001", "1.00")

	repo := persistence.NewGormInvoiceRepository(tdb.DB)
	service := newInvoiceService(tdb)

	created, err := service.Create(ctx, salesapp.CreateInvoiceRequest{
		CustomerID: customer.ID,
		Lines: []salesapp.CreateInvoiceLineInput{
			{ItemID: item.ID, Quantity: 3},
		},
	}, nil)
	require.NoError(t, err)

	// Two loads of the same version; the second write must lose
	first, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)

	first.Notes = "first writer"
	require.NoError(t, repo.Update(ctx, first))

	second.Notes = "second writer"
	err = repo.Update(ctx, second)
	require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestVoidedInvoiceRejectsPayments(t *testing.T) {
	tdb := NewTestDB(t)
	tdb.CleanTables()
	ctx := context.Background()

	customer := tdb.SeedCustomer("Void Co")
	item := tdb.SeedItem("Nut", "NUT-001", "2.50")

	service := newInvoiceService(tdb)

	created, err := service.Create(ctx, salesapp.CreateInvoiceRequest{
		CustomerID: customer.ID,
		Lines: []salesapp.CreateInvoiceLineInput{
			{ItemID: item.ID, Quantity: 4},
		},
	}, nil)
	require.NoError(t, err)
	_, err = service.Issue(ctx, created.ID)
	require.NoError(t, err)

	voided, err := service.Void(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "VOID", voided.Status)
	assert.Equal(t, "0.00", voided.Balance)

	_, err = service.RecordPayment(ctx, created.ID, salesapp.RecordPaymentRequest{
		Amount: decimal.RequireFromString("5.00"),
		Method: "CASH",
	}, nil)
	requireDomainCode(t, err, "VOIDED_DOCUMENT")
}
