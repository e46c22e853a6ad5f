package purchasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsync/backend/internal/domain/shared"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"draft to approved", OrderStatusDraft, OrderStatusApproved, true},
		{"draft to cancelled", OrderStatusDraft, OrderStatusCancelled, true},
		{"draft to received", OrderStatusDraft, OrderStatusReceived, false},
		{"approved to received", OrderStatusApproved, OrderStatusReceived, true},
		{"approved to cancelled", OrderStatusApproved, OrderStatusCancelled, true},
		{"approved back to draft", OrderStatusApproved, OrderStatusDraft, false},
		{"received is terminal", OrderStatusReceived, OrderStatusCancelled, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestFormatOrderNumber(t *testing.T) {
	at := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "PO-2026-000007", FormatOrderNumber(at, 7))
}

func TestNewPurchaseOrderLine(t *testing.T) {
	orderID := uuid.New()

	t.Run("rounds the line total", func(t *testing.T) {
		line, err := NewPurchaseOrderLine(orderID, "Steel bolts", 3, decimal.NewFromFloat(3.335))
		require.NoError(t, err)
		// 3 × 3.335 = 10.005, rounded once
		assert.Equal(t, "10.01", line.LineTotal.String())
	})

	t.Run("rejects empty item name", func(t *testing.T) {
		_, err := NewPurchaseOrderLine(orderID, "", 1, decimal.NewFromFloat(5))
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewPurchaseOrderLine(orderID, "Bolts", 0, decimal.NewFromFloat(5))
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})

	t.Run("rejects negative unit price", func(t *testing.T) {
		_, err := NewPurchaseOrderLine(orderID, "Bolts", 1, decimal.NewFromFloat(-1))
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})
}

func buildDraftOrder(t *testing.T) *PurchaseOrder {
	t.Helper()

	order, err := NewPurchaseOrder("PO-2026-000001", uuid.New(), time.Now(), "")
	require.NoError(t, err)

	lines, err := PriceLines(order.ID, []LineInput{
		{ItemName: "Steel bolts", Quantity: 100, UnitPrice: decimal.NewFromFloat(0.25)},
		{ItemName: "Washers", Quantity: 50, UnitPrice: decimal.NewFromFloat(0.10)},
	})
	require.NoError(t, err)
	require.NoError(t, order.ReplaceLines(lines))
	return order
}

func TestNewPurchaseOrder(t *testing.T) {
	order := buildDraftOrder(t)

	assert.Equal(t, OrderStatusDraft, order.Status)
	assert.Equal(t, "30.00", order.Subtotal.String())
	assert.Equal(t, "30.00", order.Total.String())
	assert.Len(t, order.Lines, 2)
	assert.Nil(t, order.ReceivedDate)
}

func TestPurchaseOrderApprove(t *testing.T) {
	t.Run("approves a draft", func(t *testing.T) {
		order := buildDraftOrder(t)
		require.NoError(t, order.Approve())
		assert.Equal(t, OrderStatusApproved, order.Status)
	})

	t.Run("second approval fails and status is unchanged", func(t *testing.T) {
		order := buildDraftOrder(t)
		require.NoError(t, order.Approve())

		err := order.Approve()
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
		assert.Equal(t, OrderStatusApproved, order.Status)
	})

	t.Run("cannot approve without lines", func(t *testing.T) {
		order, err := NewPurchaseOrder("PO-2026-000002", uuid.New(), time.Now(), "")
		require.NoError(t, err)
		assert.Error(t, order.Approve())
	})
}

func TestPurchaseOrderReceive(t *testing.T) {
	t.Run("receives an approved order and stamps the date", func(t *testing.T) {
		order := buildDraftOrder(t)
		require.NoError(t, order.Approve())
		require.NoError(t, order.Receive())

		assert.Equal(t, OrderStatusReceived, order.Status)
		require.NotNil(t, order.ReceivedDate)
		assert.WithinDuration(t, time.Now(), *order.ReceivedDate, time.Second)
	})

	t.Run("cannot receive a draft", func(t *testing.T) {
		order := buildDraftOrder(t)
		err := order.Receive()
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})

	t.Run("cannot receive twice", func(t *testing.T) {
		order := buildDraftOrder(t)
		require.NoError(t, order.Approve())
		require.NoError(t, order.Receive())
		assert.Error(t, order.Receive())
	})
}

func TestPurchaseOrderCancel(t *testing.T) {
	t.Run("cancels a draft with a reason", func(t *testing.T) {
		order := buildDraftOrder(t)
		require.NoError(t, order.Cancel("supplier discontinued the part"))

		assert.Equal(t, OrderStatusCancelled, order.Status)
		assert.Equal(t, "supplier discontinued the part", order.CancelReason)
	})

	t.Run("cancels an approved order", func(t *testing.T) {
		order := buildDraftOrder(t)
		require.NoError(t, order.Approve())
		require.NoError(t, order.Cancel("budget cut"))
		assert.Equal(t, OrderStatusCancelled, order.Status)
	})

	t.Run("requires a reason", func(t *testing.T) {
		order := buildDraftOrder(t)
		assert.Error(t, order.Cancel(""))
		assert.Equal(t, OrderStatusDraft, order.Status)
	})

	t.Run("cannot cancel a received order", func(t *testing.T) {
		order := buildDraftOrder(t)
		require.NoError(t, order.Approve())
		require.NoError(t, order.Receive())
		assert.Error(t, order.Cancel("too late"))
	})
}

func TestPurchaseOrderImmutability(t *testing.T) {
	replacement, err := PriceLines(uuid.New(), []LineInput{
		{ItemName: "Something else", Quantity: 1, UnitPrice: decimal.NewFromFloat(1)},
	})
	require.NoError(t, err)

	t.Run("cannot replace lines after approval", func(t *testing.T) {
		order := buildDraftOrder(t)
		require.NoError(t, order.Approve())

		err := order.ReplaceLines(replacement)
		assert.ErrorIs(t, err, shared.ErrImmutableDocument)
		assert.Len(t, order.Lines, 2)
		assert.Equal(t, "30.00", order.Subtotal.String())
	})

	t.Run("cannot update header after approval", func(t *testing.T) {
		order := buildDraftOrder(t)
		require.NoError(t, order.Approve())

		err := order.UpdateDetails(uuid.New(), time.Now(), "late edit")
		assert.ErrorIs(t, err, shared.ErrImmutableDocument)
	})
}

func TestPurchaseOrderReplaceLines(t *testing.T) {
	order := buildDraftOrder(t)

	lines, err := PriceLines(order.ID, []LineInput{
		{ItemName: "Copper wire", Quantity: 4, UnitPrice: decimal.NewFromFloat(2.505)},
	})
	require.NoError(t, err)
	require.NoError(t, order.ReplaceLines(lines))

	assert.Len(t, order.Lines, 1)
	assert.Equal(t, "10.02", order.Subtotal.String())

	assert.Error(t, order.ReplaceLines(nil))
}
