package checkout

import (
	"context"

	"welwexpress/internal/domain"
	"welwexpress/internal/payment"
)

type UseCase interface {
	OpenCheckout(ctx context.Context, buyerID, orderID string) (string, error)
	HandlePaymentSuccess(ctx context.Context, sessionID string) (string, error)
	HandlePaymentCancel() string
}

type OrderService interface {
	GetOrder(ctx context.Context, buyerID, orderID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string) (*domain.Order, error)
}

type ProductReader interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
}

type UserReader interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type StoreReader interface {
	FindByOwner(ctx context.Context, ownerID string) (*domain.Store, error)
}

type SessionProvider interface {
	CreateCheckoutSession(ctx context.Context, params payment.CreateSessionParams) (*payment.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error)
}

type MailSender interface {
	Send(htmlBody, subject, recipient string) error
}
