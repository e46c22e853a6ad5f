package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/opsync/backend/internal/domain/catalog"
	"github.com/opsync/backend/internal/domain/sales"
	"github.com/opsync/backend/internal/domain/shared"
)

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Item, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInvoiceRepository mocks only the pieces of InvoiceRepository the item
// service touches
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, number string) (*sales.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *sales.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *sales.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ApplyPayment(ctx context.Context, invoiceID uuid.UUID, payment *sales.Payment) (*sales.Invoice, error) {
	args := m.Called(ctx, invoiceID, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func createTestItem() *catalog.Item {
	item, _ := catalog.NewItem("Widget", "WID-001", "A widget", decimal.RequireFromString("9.99"), false)
	return item
}

func TestItemService_Create(t *testing.T) {
	t.Run("create item successfully", func(t *testing.T) {
		itemRepo := new(MockItemRepository)
		service := NewItemService(itemRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		itemRepo.On("FindBySKU", ctx, "WID-001").Return(nil, shared.ErrNotFound)
		itemRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Item")).Return(nil)

		result, err := service.Create(ctx, CreateItemRequest{
			Name:      "Widget",
			SKU:       "WID-001",
			UnitPrice: decimal.RequireFromString("9.99"),
		})

		assert.NoError(t, err)
		assert.Equal(t, "Widget", result.Name)
		assert.Equal(t, "WID-001", result.SKU)
		assert.Equal(t, "9.99", result.UnitPrice)
		itemRepo.AssertExpectations(t)
	})

	t.Run("duplicate SKU is rejected", func(t *testing.T) {
		itemRepo := new(MockItemRepository)
		service := NewItemService(itemRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		itemRepo.On("FindBySKU", ctx, "WID-001").Return(createTestItem(), nil)

		result, err := service.Create(ctx, CreateItemRequest{
			Name:      "Widget clone",
			SKU:       "WID-001",
			UnitPrice: decimal.RequireFromString("1.00"),
		})

		assert.Nil(t, result)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
		itemRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("empty SKU skips the uniqueness check", func(t *testing.T) {
		itemRepo := new(MockItemRepository)
		service := NewItemService(itemRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		itemRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Item")).Return(nil)

		result, err := service.Create(ctx, CreateItemRequest{
			Name:      "Consulting hour",
			UnitPrice: decimal.RequireFromString("150.00"),
			IsService: true,
		})

		assert.NoError(t, err)
		assert.True(t, result.IsService)
		itemRepo.AssertNotCalled(t, "FindBySKU", mock.Anything, mock.Anything)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		itemRepo := new(MockItemRepository)
		service := NewItemService(itemRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		result, err := service.Create(ctx, CreateItemRequest{
			Name:      "Broken",
			UnitPrice: decimal.RequireFromString("-1.00"),
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})
}

func TestItemService_Delete(t *testing.T) {
	t.Run("delete unreferenced item", func(t *testing.T) {
		itemRepo := new(MockItemRepository)
		invoiceRepo := new(MockInvoiceRepository)
		service := NewItemService(itemRepo, invoiceRepo)
		ctx := context.Background()

		item := createTestItem()
		itemRepo.On("FindByID", ctx, item.ID).Return(item, nil)
		invoiceRepo.On("CountByItem", ctx, item.ID).Return(int64(0), nil)
		itemRepo.On("Delete", ctx, item.ID).Return(nil)

		err := service.Delete(ctx, item.ID)

		assert.NoError(t, err)
		itemRepo.AssertExpectations(t)
	})

	t.Run("referenced item cannot be deleted", func(t *testing.T) {
		itemRepo := new(MockItemRepository)
		invoiceRepo := new(MockInvoiceRepository)
		service := NewItemService(itemRepo, invoiceRepo)
		ctx := context.Background()

		item := createTestItem()
		itemRepo.On("FindByID", ctx, item.ID).Return(item, nil)
		invoiceRepo.On("CountByItem", ctx, item.ID).Return(int64(3), nil)

		err := service.Delete(ctx, item.ID)

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
		itemRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestItemService_Update(t *testing.T) {
	t.Run("changing SKU to one already taken fails", func(t *testing.T) {
		itemRepo := new(MockItemRepository)
		service := NewItemService(itemRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		item := createTestItem()
		other := createTestItem()
		other.SKU = "WID-002"

		itemRepo.On("FindByID", ctx, item.ID).Return(item, nil)
		itemRepo.On("FindBySKU", ctx, "WID-002").Return(other, nil)

		result, err := service.Update(ctx, item.ID, UpdateItemRequest{
			Name:      item.Name,
			SKU:       "WID-002",
			UnitPrice: decimal.RequireFromString("9.99"),
		})

		assert.Nil(t, result)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
	})

	t.Run("price change keeps sub-cent digits", func(t *testing.T) {
		itemRepo := new(MockItemRepository)
		service := NewItemService(itemRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		item := createTestItem()
		itemRepo.On("FindByID", ctx, item.ID).Return(item, nil)
		itemRepo.On("Save", ctx, item).Return(nil)

		result, err := service.Update(ctx, item.ID, UpdateItemRequest{
			Name:      item.Name,
			SKU:       item.SKU,
			UnitPrice: decimal.RequireFromString("10.005"),
		})

		assert.NoError(t, err)
		assert.Equal(t, "10.005", result.UnitPrice)
	})
}
