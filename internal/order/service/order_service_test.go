package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"welwexpress/internal/domain"
	apperrors "welwexpress/internal/errors"
	"welwexpress/internal/payment"
)

// Mock implementations

type mockOrderRepository struct {
	InsertFunc             func(ctx context.Context, order *domain.Order) error
	FindByIDFunc           func(ctx context.Context, id string) (*domain.Order, error)
	FindByIDAndBuyerFunc   func(ctx context.Context, id, buyerID string) (*domain.Order, error)
	FindByBuyerAndKeyFunc  func(ctx context.Context, buyerID, key string) (*domain.Order, error)
	FindByBuyerFunc        func(ctx context.Context, buyerID string) ([]domain.Order, error)
	FindBySellerFunc       func(ctx context.Context, sellerID string) ([]domain.Order, error)
	UpdateFunc             func(ctx context.Context, order *domain.Order) error
	UpdateStatusFunc       func(ctx context.Context, id string, status domain.OrderStatus) error
	DeleteByIDAndBuyerFunc func(ctx context.Context, id, buyerID string) error
}

func (m *mockOrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	return m.InsertFunc(ctx, order)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderRepository) FindByIDAndBuyer(ctx context.Context, id, buyerID string) (*domain.Order, error) {
	return m.FindByIDAndBuyerFunc(ctx, id, buyerID)
}

func (m *mockOrderRepository) FindByBuyerAndKey(ctx context.Context, buyerID, key string) (*domain.Order, error) {
	return m.FindByBuyerAndKeyFunc(ctx, buyerID, key)
}

func (m *mockOrderRepository) FindByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return m.FindByBuyerFunc(ctx, buyerID)
}

func (m *mockOrderRepository) FindBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	return m.FindBySellerFunc(ctx, sellerID)
}

func (m *mockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return m.UpdateFunc(ctx, order)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return m.UpdateStatusFunc(ctx, id, status)
}

func (m *mockOrderRepository) DeleteByIDAndBuyer(ctx context.Context, id, buyerID string) error {
	return m.DeleteByIDAndBuyerFunc(ctx, id, buyerID)
}

type mockUserReader struct {
	FindByIDFunc func(ctx context.Context, id string) (*domain.User, error)
}

func (m *mockUserReader) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockPaymentProvider struct {
	CreatePaymentIntentFunc func(ctx context.Context, params payment.CreateIntentParams) (*payment.PaymentIntent, error)
}

func (m *mockPaymentProvider) CreatePaymentIntent(ctx context.Context, params payment.CreateIntentParams) (*payment.PaymentIntent, error) {
	return m.CreatePaymentIntentFunc(ctx, params)
}

type mockMailSender struct {
	SendFunc func(htmlBody, subject, recipient string) error
}

func (m *mockMailSender) Send(htmlBody, subject, recipient string) error {
	return m.SendFunc(htmlBody, subject, recipient)
}

func notFoundRepo() *mockOrderRepository {
	return &mockOrderRepository{
		FindByBuyerAndKeyFunc: func(ctx context.Context, buyerID, key string) (*domain.Order, error) {
			return nil, apperrors.NewNotFoundError("no order found for this account")
		},
	}
}

func okSeller() *mockUserReader {
	return &mockUserReader{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Name: "Maria", Email: "maria@example.com", Role: domain.RoleSeller}, nil
		},
	}
}

func okProvider() *mockPaymentProvider {
	return &mockPaymentProvider{
		CreatePaymentIntentFunc: func(ctx context.Context, params payment.CreateIntentParams) (*payment.PaymentIntent, error) {
			return &payment.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
		},
	}
}

func okSender() *mockMailSender {
	return &mockMailSender{
		SendFunc: func(htmlBody, subject, recipient string) error { return nil },
	}
}

func newTestService(repo OrderRepository, users UserReader, provider PaymentProvider, sender MailSender) *OrderService {
	return NewOrderService(repo, users, provider, sender, "eur", 900, zap.NewNop())
}

func singleItem() []ItemInput {
	return []ItemInput{
		{ProductID: "prod-1", ProductName: "Sneakers", Quantity: 2, UnitPrice: decimal.NewFromInt(2500)},
	}
}

// Tests

func TestCreateOrder_ComputesTotalAndPersistsPending(t *testing.T) {
	ctx := context.Background()

	var inserted *domain.Order
	repo := notFoundRepo()
	repo.InsertFunc = func(ctx context.Context, order *domain.Order) error {
		inserted = order
		return nil
	}

	var intentParams payment.CreateIntentParams
	provider := &mockPaymentProvider{
		CreatePaymentIntentFunc: func(ctx context.Context, params payment.CreateIntentParams) (*payment.PaymentIntent, error) {
			intentParams = params
			return &payment.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
		},
	}

	svc := newTestService(repo, okSeller(), provider, okSender())

	result, err := svc.CreateOrder(ctx, "buyer-1", CreateOrderInput{
		SellerID:        "seller-1",
		CustomerName:    "Carlos Silva",
		CustomerPhone:   "+244912345678",
		CustomerAddress: "Luanda",
		Items:           singleItem(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inserted == nil {
		t.Fatal("expected order to be persisted")
	}
	if !inserted.TotalAmount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected totalAmount 5000, got %s", inserted.TotalAmount)
	}
	if inserted.Status != domain.OrderStatusPending {
		t.Errorf("expected status pending, got %s", inserted.Status)
	}
	if inserted.PaymentIntentID != "pi_123" {
		t.Errorf("expected paymentIntentId pi_123, got %s", inserted.PaymentIntentID)
	}

	// round(5000/900 × 100) = 556 minor units
	if intentParams.AmountMinor != 556 {
		t.Errorf("expected 556 minor units, got %d", intentParams.AmountMinor)
	}
	if intentParams.Currency != "eur" {
		t.Errorf("expected currency eur, got %s", intentParams.Currency)
	}
	if intentParams.Metadata["userId"] != "buyer-1" || intentParams.Metadata["sellerId"] != "seller-1" {
		t.Errorf("unexpected intent metadata: %v", intentParams.Metadata)
	}

	if result.OrderID != inserted.ID {
		t.Errorf("expected result order id %s, got %s", inserted.ID, result.OrderID)
	}
	if result.ClientSecret != "pi_123_secret" {
		t.Errorf("expected client secret, got %s", result.ClientSecret)
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	svc := newTestService(notFoundRepo(), okSeller(), okProvider(), okSender())

	_, err := svc.CreateOrder(context.Background(), "buyer-1", CreateOrderInput{
		SellerID: "seller-1",
		Items:    nil,
	})

	if _, ok := apperrors.IsBadRequestError(err); !ok {
		t.Errorf("expected BadRequestError, got %v", err)
	}
}

func TestCreateOrder_InvalidItemsRejected(t *testing.T) {
	intents := 0
	provider := &mockPaymentProvider{
		CreatePaymentIntentFunc: func(ctx context.Context, params payment.CreateIntentParams) (*payment.PaymentIntent, error) {
			intents++
			return &payment.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
		},
	}
	svc := newTestService(notFoundRepo(), okSeller(), provider, okSender())

	cases := []struct {
		name  string
		items []ItemInput
	}{
		{"zero quantity", []ItemInput{
			{ProductID: "prod-1", ProductName: "Sneakers", Quantity: 0, UnitPrice: decimal.NewFromInt(2500)},
		}},
		{"negative price", []ItemInput{
			{ProductID: "prod-1", ProductName: "Sneakers", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), "buyer-1", CreateOrderInput{
				SellerID: "seller-1",
				Items:    tc.items,
			})
			if _, ok := apperrors.IsBadRequestError(err); !ok {
				t.Errorf("expected BadRequestError, got %v", err)
			}
		})
	}

	if intents != 0 {
		t.Errorf("expected no payment intents for invalid items, got %d", intents)
	}
}

func TestCreateOrder_MissingSellerDoesNotRollBackOrder(t *testing.T) {
	inserted := false
	repo := notFoundRepo()
	repo.InsertFunc = func(ctx context.Context, order *domain.Order) error {
		inserted = true
		return nil
	}

	users := &mockUserReader{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return nil, apperrors.NewNotFoundError("no user with this id")
		},
	}

	svc := newTestService(repo, users, okProvider(), okSender())

	_, err := svc.CreateOrder(context.Background(), "buyer-1", CreateOrderInput{
		SellerID: "seller-gone",
		Items:    singleItem(),
	})

	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	if !inserted {
		t.Error("expected the order to remain persisted despite the missing seller")
	}
}

func TestCreateOrder_MailFailureDoesNotFailCreation(t *testing.T) {
	repo := notFoundRepo()
	repo.InsertFunc = func(ctx context.Context, order *domain.Order) error { return nil }

	sender := &mockMailSender{
		SendFunc: func(htmlBody, subject, recipient string) error {
			return errors.New("smtp unavailable")
		},
	}

	svc := newTestService(repo, okSeller(), okProvider(), sender)

	result, err := svc.CreateOrder(context.Background(), "buyer-1", CreateOrderInput{
		SellerID: "seller-1",
		Items:    singleItem(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OrderID == "" {
		t.Error("expected an order id")
	}
}

func TestCreateOrder_IdempotencyKeyReplayReturnsExistingOrder(t *testing.T) {
	existing := &domain.Order{ID: "order-1", BuyerID: "buyer-1", IdempotencyKey: "key-1"}

	intentCalls := 0
	provider := &mockPaymentProvider{
		CreatePaymentIntentFunc: func(ctx context.Context, params payment.CreateIntentParams) (*payment.PaymentIntent, error) {
			intentCalls++
			return &payment.PaymentIntent{ID: "pi_x", ClientSecret: "cs"}, nil
		},
	}

	repo := &mockOrderRepository{
		FindByBuyerAndKeyFunc: func(ctx context.Context, buyerID, key string) (*domain.Order, error) {
			if buyerID == "buyer-1" && key == "key-1" {
				return existing, nil
			}
			return nil, apperrors.NewNotFoundError("no order found for this account")
		},
	}

	svc := newTestService(repo, okSeller(), provider, okSender())

	result, err := svc.CreateOrder(context.Background(), "buyer-1", CreateOrderInput{
		SellerID:       "seller-1",
		Items:          singleItem(),
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Replayed {
		t.Error("expected a replayed result")
	}
	if result.OrderID != "order-1" {
		t.Errorf("expected existing order id, got %s", result.OrderID)
	}
	if intentCalls != 0 {
		t.Errorf("expected no new payment intent, got %d calls", intentCalls)
	}
}

func TestUpdateOrder_RecomputesTotalFromNewItems(t *testing.T) {
	stored := &domain.Order{
		ID:          "order-1",
		BuyerID:     "buyer-1",
		Status:      domain.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(5000),
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.NewFromInt(2500)},
		},
	}

	var updated *domain.Order
	repo := &mockOrderRepository{
		FindByIDAndBuyerFunc: func(ctx context.Context, id, buyerID string) (*domain.Order, error) {
			if updated != nil {
				return updated, nil
			}
			o := *stored
			return &o, nil
		},
		UpdateFunc: func(ctx context.Context, order *domain.Order) error {
			updated = order
			return nil
		},
	}

	svc := newTestService(repo, okSeller(), okProvider(), okSender())

	order, err := svc.UpdateOrder(context.Background(), "buyer-1", "order-1", UpdateOrderInput{
		Items: []ItemInput{
			{ProductID: "prod-2", ProductName: "Shirt", Quantity: 3, UnitPrice: decimal.NewFromInt(1000)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !order.TotalAmount.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected recomputed total 3000, got %s", order.TotalAmount)
	}
}

func TestUpdateOrder_EmptyItemListRejected(t *testing.T) {
	repo := &mockOrderRepository{
		FindByIDAndBuyerFunc: func(ctx context.Context, id, buyerID string) (*domain.Order, error) {
			return &domain.Order{ID: id, BuyerID: buyerID, Status: domain.OrderStatusPending}, nil
		},
	}

	svc := newTestService(repo, okSeller(), okProvider(), okSender())

	_, err := svc.UpdateOrder(context.Background(), "buyer-1", "order-1", UpdateOrderInput{
		Items: []ItemInput{},
	})

	if _, ok := apperrors.IsBadRequestError(err); !ok {
		t.Errorf("expected BadRequestError, got %v", err)
	}
}

func TestUpdateOrder_InvalidItemRejected(t *testing.T) {
	repo := &mockOrderRepository{
		FindByIDAndBuyerFunc: func(ctx context.Context, id, buyerID string) (*domain.Order, error) {
			return &domain.Order{ID: id, BuyerID: buyerID, Status: domain.OrderStatusPending}, nil
		},
	}

	svc := newTestService(repo, okSeller(), okProvider(), okSender())

	_, err := svc.UpdateOrder(context.Background(), "buyer-1", "order-1", UpdateOrderInput{
		Items: []ItemInput{
			{ProductID: "prod-1", ProductName: "Sneakers", Quantity: 1, UnitPrice: decimal.NewFromInt(-500)},
		},
	})

	if _, ok := apperrors.IsBadRequestError(err); !ok {
		t.Errorf("expected BadRequestError, got %v", err)
	}
}

func TestUpdateOrder_IllegalTransitionRejected(t *testing.T) {
	repo := &mockOrderRepository{
		FindByIDAndBuyerFunc: func(ctx context.Context, id, buyerID string) (*domain.Order, error) {
			return &domain.Order{ID: id, BuyerID: buyerID, Status: domain.OrderStatusPending}, nil
		},
	}

	svc := newTestService(repo, okSeller(), okProvider(), okSender())

	shipped := domain.OrderStatusShipped
	_, err := svc.UpdateOrder(context.Background(), "buyer-1", "order-1", UpdateOrderInput{
		Status: &shipped,
	})

	if _, ok := apperrors.IsBadRequestError(err); !ok {
		t.Errorf("expected BadRequestError for pending->shipped, got %v", err)
	}
}

func TestUpdateOrder_LegalTransitionApplied(t *testing.T) {
	var updated *domain.Order
	repo := &mockOrderRepository{
		FindByIDAndBuyerFunc: func(ctx context.Context, id, buyerID string) (*domain.Order, error) {
			if updated != nil {
				return updated, nil
			}
			return &domain.Order{ID: id, BuyerID: buyerID, Status: domain.OrderStatusPending}, nil
		},
		UpdateFunc: func(ctx context.Context, order *domain.Order) error {
			updated = order
			return nil
		},
	}

	svc := newTestService(repo, okSeller(), okProvider(), okSender())

	cancelled := domain.OrderStatusCancelled
	order, err := svc.UpdateOrder(context.Background(), "buyer-1", "order-1", UpdateOrderInput{
		Status: &cancelled,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Status != domain.OrderStatusCancelled {
		t.Errorf("expected cancelled, got %s", order.Status)
	}
}

func TestGetOrder_OwnershipIsolation(t *testing.T) {
	repo := &mockOrderRepository{
		FindByIDAndBuyerFunc: func(ctx context.Context, id, buyerID string) (*domain.Order, error) {
			// order-of-b exists but belongs to buyer-b
			if id == "order-of-b" && buyerID == "buyer-b" {
				return &domain.Order{ID: id, BuyerID: buyerID}, nil
			}
			return nil, apperrors.NewNotFoundError("no order found for this account")
		},
	}

	svc := newTestService(repo, okSeller(), okProvider(), okSender())

	_, err := svc.GetOrder(context.Background(), "buyer-a", "order-of-b")

	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Errorf("expected NotFoundError for another buyer's order, got %v", err)
	}
}

func TestMarkPaid_Idempotent(t *testing.T) {
	status := domain.OrderStatusPending

	repo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: status}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id string, s domain.OrderStatus) error {
			status = s
			return nil
		},
	}

	svc := newTestService(repo, okSeller(), okProvider(), okSender())

	order, err := svc.MarkPaid(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("first MarkPaid failed: %v", err)
	}
	if order.Status != domain.OrderStatusPaid {
		t.Errorf("expected paid, got %s", order.Status)
	}

	order, err = svc.MarkPaid(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("second MarkPaid failed: %v", err)
	}
	if order.Status != domain.OrderStatusPaid {
		t.Errorf("expected paid after re-delivery, got %s", order.Status)
	}
}

func TestMarkPaid_UnknownOrder(t *testing.T) {
	repo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			return nil, apperrors.NewNotFoundError("no order found for this account")
		},
	}

	svc := newTestService(repo, okSeller(), okProvider(), okSender())

	_, err := svc.MarkPaid(context.Background(), "order-missing")

	if _, ok := apperrors.IsBadRequestError(err); !ok {
		t.Errorf("expected BadRequestError, got %v", err)
	}
}
