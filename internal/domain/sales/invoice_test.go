package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsync/backend/internal/domain/shared"
	"github.com/opsync/backend/internal/domain/shared/valueobject"
)

func TestInvoiceStatusIsValid(t *testing.T) {
	valid := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusIssued,
		InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid,
		InvoiceStatusVoid,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "expected %s to be valid", s)
	}
	assert.False(t, InvoiceStatus("SHIPPED").IsValid())
	assert.False(t, InvoiceStatus("").IsValid())
}

func TestInvoiceStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    InvoiceStatus
		to      InvoiceStatus
		allowed bool
	}{
		{"draft to issued", InvoiceStatusDraft, InvoiceStatusIssued, true},
		{"draft to void", InvoiceStatusDraft, InvoiceStatusVoid, true},
		{"draft to paid", InvoiceStatusDraft, InvoiceStatusPaid, false},
		{"issued to partially paid", InvoiceStatusIssued, InvoiceStatusPartiallyPaid, true},
		{"issued to paid", InvoiceStatusIssued, InvoiceStatusPaid, true},
		{"issued to void", InvoiceStatusIssued, InvoiceStatusVoid, true},
		{"issued back to draft", InvoiceStatusIssued, InvoiceStatusDraft, false},
		{"partially paid to paid", InvoiceStatusPartiallyPaid, InvoiceStatusPaid, true},
		{"partially paid to void", InvoiceStatusPartiallyPaid, InvoiceStatusVoid, true},
		{"paid is terminal", InvoiceStatusPaid, InvoiceStatusVoid, false},
		{"void is terminal", InvoiceStatusVoid, InvoiceStatusIssued, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	at := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-2026-000042", FormatInvoiceNumber(at, 42))
	assert.Equal(t, "INV-2026-1000000", FormatInvoiceNumber(at, 1000000))
}

func TestNewInvoiceLine(t *testing.T) {
	invoiceID := uuid.New()
	itemID := uuid.New()

	t.Run("rounds the line total", func(t *testing.T) {
		line, err := NewInvoiceLine(invoiceID, itemID, "Widget", 2, decimal.NewFromFloat(10.005))
		require.NoError(t, err)
		assert.Equal(t, "20.01", line.LineTotal.String())
		assert.Equal(t, 2, line.Quantity)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewInvoiceLine(invoiceID, itemID, "Widget", 0, decimal.NewFromFloat(5))
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewInvoiceLine(invoiceID, itemID, "Widget", -3, decimal.NewFromFloat(5))
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})

	t.Run("rejects nil item", func(t *testing.T) {
		_, err := NewInvoiceLine(invoiceID, uuid.Nil, "Widget", 1, decimal.NewFromFloat(5))
		assert.Error(t, err)
	})
}

// buildDraftInvoice assembles the two-line invoice used across the lifecycle
// tests: qty 2 @ 10.005 and qty 1 @ 5.00, subtotal 25.01.
func buildDraftInvoice(t *testing.T) *Invoice {
	t.Helper()

	inv, err := NewInvoice("INV-2026-000001", uuid.New(), nil, "")
	require.NoError(t, err)

	l1, err := NewInvoiceLine(inv.ID, uuid.New(), "Widget", 2, decimal.NewFromFloat(10.005))
	require.NoError(t, err)
	l2, err := NewInvoiceLine(inv.ID, uuid.New(), "Gadget", 1, decimal.NewFromFloat(5.00))
	require.NoError(t, err)

	require.NoError(t, inv.ReplaceLines([]InvoiceLine{*l1, *l2}))
	return inv
}

func TestInvoiceCreateWithRoundedLines(t *testing.T) {
	inv := buildDraftInvoice(t)

	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Equal(t, "20.01", inv.Lines[0].LineTotal.String())
	assert.Equal(t, "5.00", inv.Lines[1].LineTotal.String())
	assert.Equal(t, "25.01", inv.Subtotal.String())
	assert.Equal(t, "25.01", inv.Balance.String())
	assert.True(t, inv.TotalPaid.IsZero())
}

func TestInvoiceIssue(t *testing.T) {
	t.Run("issues a draft and stamps the issue date", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())

		assert.Equal(t, InvoiceStatusIssued, inv.Status)
		require.NotNil(t, inv.IssueDate)
		assert.WithinDuration(t, time.Now(), *inv.IssueDate, time.Second)
		assert.Equal(t, "25.01", inv.Balance.String())
	})

	t.Run("cannot issue twice", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())

		err := inv.Issue()
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
		assert.Equal(t, InvoiceStatusIssued, inv.Status)
	})

	t.Run("cannot issue without lines", func(t *testing.T) {
		inv, err := NewInvoice("INV-2026-000002", uuid.New(), nil, "")
		require.NoError(t, err)
		assert.Error(t, inv.Issue())
	})
}

func TestInvoiceReconcile(t *testing.T) {
	t.Run("full payment settles the invoice", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())

		require.NoError(t, inv.Reconcile(valueobject.NewMoneyFromFloat(25.01)))

		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.Equal(t, "25.01", inv.TotalPaid.String())
		assert.Equal(t, "0.00", inv.Balance.String())
	})

	t.Run("partial payment moves to partially paid", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())

		require.NoError(t, inv.Reconcile(valueobject.NewMoneyFromFloat(10)))

		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		assert.Equal(t, "15.01", inv.Balance.String())
	})

	t.Run("overpayment clamps the balance at zero", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())

		require.NoError(t, inv.Reconcile(valueobject.NewMoneyFromFloat(30)))

		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.Equal(t, "30.00", inv.TotalPaid.String())
		assert.Equal(t, "0.00", inv.Balance.String())
	})

	t.Run("draft invoices reject payments", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		err := inv.Reconcile(valueobject.NewMoneyFromFloat(10))
		assert.ErrorIs(t, err, shared.ErrNotIssued)
	})

	t.Run("void invoices reject payments", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())
		require.NoError(t, inv.Void())

		err := inv.Reconcile(valueobject.NewMoneyFromFloat(10))
		assert.ErrorIs(t, err, shared.ErrVoidedDocument)
	})

	t.Run("settled invoices reject further payments", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())
		require.NoError(t, inv.Reconcile(valueobject.NewMoneyFromFloat(25.01)))

		err := inv.Reconcile(valueobject.NewMoneyFromFloat(1))
		assert.ErrorIs(t, err, shared.ErrAlreadySettled)
	})
}

func TestInvoiceVoid(t *testing.T) {
	t.Run("voiding zeroes the balance", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())
		require.NoError(t, inv.Reconcile(valueobject.NewMoneyFromFloat(10)))
		require.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)

		require.NoError(t, inv.Void())

		assert.Equal(t, InvoiceStatusVoid, inv.Status)
		assert.Equal(t, "0.00", inv.Balance.String())
		// recorded payments stay on file
		assert.Equal(t, "10.00", inv.TotalPaid.String())
	})

	t.Run("cannot void a paid invoice", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())
		require.NoError(t, inv.Reconcile(valueobject.NewMoneyFromFloat(25.01)))

		err := inv.Void()
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})
}

func TestInvoiceImmutability(t *testing.T) {
	replacement, err := NewInvoiceLine(uuid.New(), uuid.New(), "Other", 1, decimal.NewFromFloat(1))
	require.NoError(t, err)

	t.Run("cannot replace lines after issuing", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())

		err := inv.ReplaceLines([]InvoiceLine{*replacement})
		assert.ErrorIs(t, err, shared.ErrImmutableDocument)
		assert.Len(t, inv.Lines, 2)
		assert.Equal(t, "25.01", inv.Subtotal.String())
	})

	t.Run("cannot replace lines on a paid invoice", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())
		require.NoError(t, inv.Reconcile(valueobject.NewMoneyFromFloat(25.01)))

		err := inv.ReplaceLines([]InvoiceLine{*replacement})
		assert.ErrorIs(t, err, shared.ErrImmutableDocument)
		assert.Len(t, inv.Lines, 2)
	})

	t.Run("cannot update header after issuing", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		require.NoError(t, inv.Issue())

		err := inv.UpdateDetails(uuid.New(), nil, "late edit")
		assert.ErrorIs(t, err, shared.ErrImmutableDocument)
	})
}

func TestInvoiceReplaceLines(t *testing.T) {
	t.Run("replaces wholesale and recalculates", func(t *testing.T) {
		inv := buildDraftInvoice(t)

		line, err := NewInvoiceLine(inv.ID, uuid.New(), "Replacement", 3, decimal.NewFromFloat(7))
		require.NoError(t, err)
		require.NoError(t, inv.ReplaceLines([]InvoiceLine{*line}))

		assert.Len(t, inv.Lines, 1)
		assert.Equal(t, "21.00", inv.Subtotal.String())
		assert.Equal(t, "21.00", inv.Balance.String())
	})

	t.Run("rejects an empty line set", func(t *testing.T) {
		inv := buildDraftInvoice(t)
		assert.Error(t, inv.ReplaceLines(nil))
	})
}

func TestNewPayment(t *testing.T) {
	invoiceID := uuid.New()

	t.Run("creates a valid payment", func(t *testing.T) {
		p, err := NewPayment(invoiceID, decimal.NewFromFloat(25.014), PaymentMethodBank, time.Time{}, "TXN-1")
		require.NoError(t, err)
		assert.Equal(t, "25.01", p.Amount.String())
		assert.Equal(t, PaymentMethodBank, p.Method)
		assert.False(t, p.PaidAt.IsZero())
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := NewPayment(invoiceID, decimal.Zero, PaymentMethodCash, time.Now(), "")
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)

		_, err = NewPayment(invoiceID, decimal.NewFromFloat(-5), PaymentMethodCash, time.Now(), "")
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})

	t.Run("rejects unknown methods", func(t *testing.T) {
		_, err := NewPayment(invoiceID, decimal.NewFromFloat(10), PaymentMethod("CHEQUE"), time.Now(), "")
		assert.Error(t, err)
	})

	t.Run("rejects nil invoice", func(t *testing.T) {
		_, err := NewPayment(uuid.Nil, decimal.NewFromFloat(10), PaymentMethodCash, time.Now(), "")
		assert.Error(t, err)
	})
}
