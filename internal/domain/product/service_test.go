package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/inventory-backend/internal/pkg/testdb"
)

func newRequest(sku string) *CreateProductRequest {
	return &CreateProductRequest{
		SKU:       sku,
		Name:      "Banarasi Silk Saree",
		Category:  "saree",
		Color:     "red",
		CostPrice: decimal.RequireFromString("1200.00"),
		SellPrice: decimal.RequireFromString("2499.50"),
	}
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(testdb.New(t, &Product{}))
	ctx := context.Background()

	created, err := svc.Create(ctx, newRequest("SAR-001"))
	require.NoError(t, err)
	assert.Equal(t, 5, created.ReorderPoint)
	assert.True(t, created.Active)

	got, err := svc.Get(ctx, "SAR-001")
	require.NoError(t, err)
	assert.Equal(t, "Banarasi Silk Saree", got.Name)
	assert.True(t, got.SellPrice.Equal(decimal.RequireFromString("2499.5")))

	exists, err := svc.Exists(ctx, "SAR-001")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateRejectsDuplicatesAndBadPrices(t *testing.T) {
	svc := NewService(testdb.New(t, &Product{}))
	ctx := context.Background()

	_, err := svc.Create(ctx, newRequest("SAR-001"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, newRequest("SAR-001"))
	assert.ErrorIs(t, err, ErrProductExists)

	bad := newRequest("SAR-002")
	bad.SellPrice = decimal.Zero
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidProduct)

	missing := newRequest("")
	_, err = svc.Create(ctx, missing)
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestGetMissing(t *testing.T) {
	svc := NewService(testdb.New(t, &Product{}))

	_, err := svc.Get(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrProductNotFound)

	exists, err := svc.Exists(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListAndDeactivate(t *testing.T) {
	svc := NewService(testdb.New(t, &Product{}))
	ctx := context.Background()

	for _, sku := range []string{"SAR-002", "SAR-001", "SUT-001"} {
		req := newRequest(sku)
		if sku == "SUT-001" {
			req.Category = "suit"
		}
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}
	require.NoError(t, svc.Deactivate(ctx, "SAR-002"))

	sarees, err := svc.List(ctx, ListRequest{Category: "saree"})
	require.NoError(t, err)
	require.Len(t, sarees, 2)
	assert.Equal(t, "SAR-001", sarees[0].SKU)

	active, err := svc.List(ctx, ListRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	assert.ErrorIs(t, svc.Deactivate(ctx, "NOPE"), ErrProductNotFound)
}

func TestLockForStockChange(t *testing.T) {
	db := testdb.New(t, &Product{})
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, newRequest("SAR-001"))
	require.NoError(t, err)

	tx := db.Begin()
	defer tx.Rollback()

	p, err := LockForStockChange(ctx, tx, "SAR-001")
	require.NoError(t, err)
	assert.Equal(t, "SAR-001", p.SKU)

	_, err = LockForStockChange(ctx, tx, "NOPE")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
