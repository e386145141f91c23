package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welwexpress/internal/domain"
	"welwexpress/internal/errors"
	"welwexpress/internal/testutil"
)

// Unit Tests

func TestNewMySQLOrderRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLOrderRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func testOrder(id, buyerID, sellerID string) *domain.Order {
	items := []domain.OrderItem{
		{ProductID: "prod-1", ProductName: "Sneakers", Quantity: 2, UnitPrice: decimal.NewFromInt(2500)},
	}
	return &domain.Order{
		ID:              id,
		BuyerID:         buyerID,
		SellerID:        sellerID,
		CustomerName:    "Carlos Silva",
		CustomerPhone:   "+244912345678",
		CustomerAddress: "Luanda",
		Items:           items,
		TotalAmount:     domain.ComputeTotal(items),
		Status:          domain.OrderStatusPending,
		PaymentIntentID: "pi_test",
	}
}

func TestOrderRepository_InsertAndFindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	order := testOrder("order-1", "buyer-1", "seller-1")
	require.NoError(t, repo.Insert(context.Background(), order))

	found, err := repo.FindByID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", found.BuyerID)
	assert.Equal(t, "seller-1", found.SellerID)
	assert.Equal(t, domain.OrderStatusPending, found.Status)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(5000)))
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Sneakers", found.Items[0].ProductName)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.True(t, found.Items[0].UnitPrice.Equal(decimal.NewFromInt(2500)))
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	order, err := repo.FindByID(context.Background(), "missing")
	assert.Error(t, err)
	assert.Nil(t, order)

	nfe, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, nfe)
}

func TestOrderRepository_FindByIDAndBuyer_CrossTenantInvisible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	require.NoError(t, repo.Insert(context.Background(), testOrder("order-1", "buyer-1", "seller-1")))

	found, err := repo.FindByIDAndBuyer(context.Background(), "order-1", "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", found.ID)

	_, err = repo.FindByIDAndBuyer(context.Background(), "order-1", "buyer-2")
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestOrderRepository_FindByBuyer_StableOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	require.NoError(t, repo.Insert(context.Background(), testOrder("order-a", "buyer-1", "seller-1")))
	require.NoError(t, repo.Insert(context.Background(), testOrder("order-b", "buyer-1", "seller-1")))
	require.NoError(t, repo.Insert(context.Background(), testOrder("order-c", "buyer-2", "seller-1")))

	orders, err := repo.FindByBuyer(context.Background(), "buyer-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	// Same createdAt second resolves by id.
	assert.Equal(t, "order-a", orders[0].ID)
	assert.Equal(t, "order-b", orders[1].ID)
}

func TestOrderRepository_FindBySeller_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	require.NoError(t, repo.Insert(context.Background(), testOrder("order-old", "buyer-1", "seller-1")))
	require.NoError(t, repo.Insert(context.Background(), testOrder("order-new", "buyer-2", "seller-1")))
	require.NoError(t, repo.Insert(context.Background(), testOrder("order-other", "buyer-1", "seller-2")))

	// Spread the timestamps so ordering is not decided by the id tiebreak.
	_, err := db.Exec("UPDATE Orders SET createdAt = '2026-01-01 10:00:00' WHERE id = 'order-old'")
	require.NoError(t, err)
	_, err = db.Exec("UPDATE Orders SET createdAt = '2026-01-02 10:00:00' WHERE id = 'order-new'")
	require.NoError(t, err)

	orders, err := repo.FindBySeller(context.Background(), "seller-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order-new", orders[0].ID)
	assert.Equal(t, "order-old", orders[1].ID)
}

func TestOrderRepository_UpdateStatus_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	require.NoError(t, repo.Insert(context.Background(), testOrder("order-1", "buyer-1", "seller-1")))

	require.NoError(t, repo.UpdateStatus(context.Background(), "order-1", domain.OrderStatusPaid))
	// A repeated same-value write must not fail.
	require.NoError(t, repo.UpdateStatus(context.Background(), "order-1", domain.OrderStatusPaid))

	found, err := repo.FindByID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, found.Status)
}

func TestOrderRepository_Update_ReplacesItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	order := testOrder("order-1", "buyer-1", "seller-1")
	require.NoError(t, repo.Insert(context.Background(), order))

	order.Items = []domain.OrderItem{
		{ProductID: "prod-2", ProductName: "Boots", Quantity: 1, UnitPrice: decimal.NewFromInt(3000)},
	}
	order.TotalAmount = domain.ComputeTotal(order.Items)
	require.NoError(t, repo.Update(context.Background(), order))

	found, err := repo.FindByID(context.Background(), "order-1")
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Boots", found.Items[0].ProductName)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(3000)))
}

func TestOrderRepository_FindByBuyerAndKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	order := testOrder("order-1", "buyer-1", "seller-1")
	order.IdempotencyKey = "key-abc"
	require.NoError(t, repo.Insert(context.Background(), order))

	found, err := repo.FindByBuyerAndKey(context.Background(), "buyer-1", "key-abc")
	require.NoError(t, err)
	assert.Equal(t, "order-1", found.ID)

	_, err = repo.FindByBuyerAndKey(context.Background(), "buyer-2", "key-abc")
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestOrderRepository_DeleteByIDAndBuyer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	require.NoError(t, repo.Insert(context.Background(), testOrder("order-1", "buyer-1", "seller-1")))

	err := repo.DeleteByIDAndBuyer(context.Background(), "order-1", "buyer-2")
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)

	require.NoError(t, repo.DeleteByIDAndBuyer(context.Background(), "order-1", "buyer-1"))

	_, err = repo.FindByID(context.Background(), "order-1")
	_, ok = errors.IsNotFoundError(err)
	assert.True(t, ok)
}
