package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsync/backend/internal/domain/shared"
)

func TestNewItem(t *testing.T) {
	t.Run("keeps the raw price including sub-cent digits", func(t *testing.T) {
		item, err := NewItem("Widget", "wd-001", "A widget", decimal.NewFromFloat(10.005), false)
		require.NoError(t, err)
		assert.Equal(t, "WD-001", item.SKU)
		assert.Equal(t, "10.005", item.UnitPrice.String())
		assert.False(t, item.IsService)
	})

	t.Run("allows a zero price", func(t *testing.T) {
		item, err := NewItem("Consultation", "", "", decimal.Zero, true)
		require.NoError(t, err)
		assert.True(t, item.UnitPrice.IsZero())
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := NewItem("  ", "SKU", "", decimal.NewFromFloat(1), false)
		assert.Error(t, err)
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		_, err := NewItem("Widget", "", "", decimal.NewFromFloat(-1), false)
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})
}

func TestItemUpdate(t *testing.T) {
	item, err := NewItem("Widget", "WD-001", "", decimal.NewFromFloat(10), false)
	require.NoError(t, err)

	require.NoError(t, item.Update("Widget v2", "wd-002", "updated", decimal.NewFromFloat(12.5), false))
	assert.Equal(t, "Widget v2", item.Name)
	assert.Equal(t, "WD-002", item.SKU)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromFloat(12.5)))

	assert.Error(t, item.Update("", "", "", decimal.NewFromFloat(1), false))
}
