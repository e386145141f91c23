package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"welwexpress/internal/domain"
	"welwexpress/internal/errors"
	"welwexpress/internal/payment"
)

type OrderRepository interface {
	Insert(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByIDAndBuyer(ctx context.Context, id, buyerID string) (*domain.Order, error)
	FindByBuyerAndKey(ctx context.Context, buyerID, key string) (*domain.Order, error)
	FindByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	FindBySeller(ctx context.Context, sellerID string) ([]domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	DeleteByIDAndBuyer(ctx context.Context, id, buyerID string) error
}

type UserReader interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, params payment.CreateIntentParams) (*payment.PaymentIntent, error)
}

type MailSender interface {
	Send(htmlBody, subject, recipient string) error
}

type ItemInput struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type CreateOrderInput struct {
	SellerID        string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []ItemInput
	// IdempotencyKey is optional; when a key is replayed by the same buyer
	// the original order is returned and no new payment intent is opened.
	IdempotencyKey string
}

type CreateOrderResult struct {
	OrderID      string
	ClientSecret string
	Replayed     bool
}

type UpdateOrderInput struct {
	CustomerName    *string
	CustomerPhone   *string
	CustomerAddress *string
	Items           []ItemInput
	Status          *domain.OrderStatus
}

// OrderService owns the order lifecycle: creation with payment-intent
// opening, ownership-filtered reads and writes, and the paid transition
// applied by the checkout bridge.
type OrderService struct {
	repo         OrderRepository
	users        UserReader
	provider     PaymentProvider
	sender       MailSender
	currency     string
	exchangeRate decimal.Decimal
	logger       *zap.Logger
}

func NewOrderService(
	repo OrderRepository,
	users UserReader,
	provider PaymentProvider,
	sender MailSender,
	currency string,
	exchangeRate int64,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		repo:         repo,
		users:        users,
		provider:     provider,
		sender:       sender,
		currency:     currency,
		exchangeRate: decimal.NewFromInt(exchangeRate),
		logger:       logger,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, buyerID string, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		existing, err := s.repo.FindByBuyerAndKey(ctx, buyerID, input.IdempotencyKey)
		if err == nil {
			s.logger.Info("idempotency key replayed, returning existing order",
				zap.String("orderId", existing.ID), zap.String("buyerId", buyerID))
			return &CreateOrderResult{OrderID: existing.ID, Replayed: true}, nil
		}
		if _, ok := errors.IsNotFoundError(err); !ok {
			return nil, err
		}
	}

	items := toDomainItems(input.Items)
	totalAmount := domain.ComputeTotal(items)
	amountMinor := domain.ConvertToMinorUnits(totalAmount, s.exchangeRate)

	intent, err := s.provider.CreatePaymentIntent(ctx, payment.CreateIntentParams{
		AmountMinor: amountMinor,
		Currency:    s.currency,
		Metadata: map[string]string{
			"userId":   buyerID,
			"sellerId": input.SellerID,
		},
		IdempotencyKey: input.IdempotencyKey,
	})
	if err != nil {
		return nil, fmt.Errorf("opening payment intent: %w", err)
	}

	order := &domain.Order{
		ID:              uuid.New().String(),
		BuyerID:         buyerID,
		SellerID:        input.SellerID,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerAddress: input.CustomerAddress,
		Items:           items,
		TotalAmount:     totalAmount,
		Status:          domain.OrderStatusPending,
		PaymentIntentID: intent.ID,
		IdempotencyKey:  input.IdempotencyKey,
	}

	if err := s.repo.Insert(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("orderId", order.ID),
		zap.String("buyerId", buyerID),
		zap.String("sellerId", input.SellerID),
		zap.String("totalAmount", totalAmount.String()),
		zap.Int64("amountMinor", amountMinor))

	// The seller lookup happens after the order is persisted: a missing
	// seller surfaces as NotFound without rolling the order back.
	seller, err := s.users.FindByID(ctx, input.SellerID)
	if err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			return nil, errors.NewNotFoundError("no seller account with this id")
		}
		return nil, err
	}

	if err := s.sender.Send(newOrderEmail(seller.Name, order), "New product order", seller.Email); err != nil {
		s.logger.Warn("failed to send new-order notification",
			zap.String("orderId", order.ID), zap.Error(err))
	}

	return &CreateOrderResult{
		OrderID:      order.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, buyerID, orderID string) (*domain.Order, error) {
	return s.repo.FindByIDAndBuyer(ctx, orderID, buyerID)
}

func (s *OrderService) ListOrdersForBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return s.repo.FindByBuyer(ctx, buyerID)
}

// ListOrdersForSeller returns the seller's orders newest first. Role gating
// happens at the route; this path is only reachable through it.
func (s *OrderService) ListOrdersForSeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	return s.repo.FindBySeller(ctx, sellerID)
}

func (s *OrderService) UpdateOrder(ctx context.Context, buyerID, orderID string, input UpdateOrderInput) (*domain.Order, error) {
	order, err := s.repo.FindByIDAndBuyer(ctx, orderID, buyerID)
	if err != nil {
		return nil, err
	}

	if input.CustomerName != nil {
		order.CustomerName = *input.CustomerName
	}
	if input.CustomerPhone != nil {
		order.CustomerPhone = *input.CustomerPhone
	}
	if input.CustomerAddress != nil {
		order.CustomerAddress = *input.CustomerAddress
	}

	if input.Items != nil {
		if err := validateItems(input.Items); err != nil {
			return nil, err
		}
		order.Items = toDomainItems(input.Items)
		// The total is always recomputed from the new item list; a
		// client-supplied total is never trusted.
		order.TotalAmount = domain.ComputeTotal(order.Items)
	}

	if input.Status != nil {
		next := *input.Status
		if !next.Valid() {
			return nil, errors.NewBadRequestError(fmt.Sprintf("unknown order status %q", next))
		}
		if !order.Status.CanTransitionTo(next) {
			return nil, errors.NewBadRequestError(
				fmt.Sprintf("order cannot change from %s to %s", order.Status, next))
		}
		order.Status = next
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	return s.repo.FindByIDAndBuyer(ctx, orderID, buyerID)
}

func (s *OrderService) DeleteOrder(ctx context.Context, buyerID, orderID string) error {
	return s.repo.DeleteByIDAndBuyer(ctx, orderID, buyerID)
}

// MarkPaid sets the order to paid unconditionally. It is idempotent: a
// second delivery of the same confirmation finds the order already paid and
// applies the same value again.
func (s *OrderService) MarkPaid(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			return nil, errors.NewBadRequestError(fmt.Sprintf("no order with id %s", orderID))
		}
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, orderID, domain.OrderStatusPaid); err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusPaid

	s.logger.Info("order marked paid", zap.String("orderId", orderID))

	return order, nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return errors.NewBadRequestError("order must contain at least one item")
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return errors.NewBadRequestError(
				fmt.Sprintf("item %q must have a quantity of at least 1", item.ProductID))
		}
		if item.UnitPrice.IsNegative() {
			return errors.NewBadRequestError(
				fmt.Sprintf("item %q cannot have a negative price", item.ProductID))
		}
	}
	return nil
}

func toDomainItems(items []ItemInput) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	for i, item := range items {
		out[i] = domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return out
}

func newOrderEmail(sellerName string, order *domain.Order) string {
	return fmt.Sprintf(`<p>Hello %s,</p>
<p>You received an order from this customer:</p>
<p>Name: <strong>%s</strong></p>
<p>Phone: <strong>%s</strong></p>
<p>Address: <strong>%s</strong></p>
<p>Status: Pending</p>
<hr>
<p>Please open your dashboard for the product details.</p>`,
		sellerName, order.CustomerName, order.CustomerPhone, order.CustomerAddress)
}
