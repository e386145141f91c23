package checkout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"welwexpress/internal/errors"
	"welwexpress/internal/payment"
)

type checkoutUseCase struct {
	orders     OrderService
	products   ProductReader
	users      UserReader
	stores     StoreReader
	provider   SessionProvider
	sender     MailSender
	currency   string
	successURL string
	cancelURL  string
	logger     *zap.Logger
}

func NewUseCase(
	orders OrderService,
	products ProductReader,
	users UserReader,
	stores StoreReader,
	provider SessionProvider,
	sender MailSender,
	currency, successURL, cancelURL string,
	logger *zap.Logger,
) UseCase {
	return &checkoutUseCase{
		orders:     orders,
		products:   products,
		users:      users,
		stores:     stores,
		provider:   provider,
		sender:     sender,
		currency:   currency,
		successURL: successURL,
		cancelURL:  cancelURL,
		logger:     logger,
	}
}

// OpenCheckout builds a hosted session from the order's own item snapshot.
// The catalog is consulted only to verify each referenced product still
// exists; it never overrides the snapshot's name or price.
func (uc *checkoutUseCase) OpenCheckout(ctx context.Context, buyerID, orderID string) (string, error) {
	order, err := uc.orders.GetOrder(ctx, buyerID, orderID)
	if err != nil {
		return "", err
	}

	lineItems := make([]payment.LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		if _, err := uc.products.FindByID(ctx, item.ProductID); err != nil {
			if _, ok := errors.IsNotFoundError(err); ok {
				return "", errors.NewBadRequestError(fmt.Sprintf("product with id %s not found", item.ProductID))
			}
			return "", err
		}

		// Snapshot prices may carry cents; the wire amount is the whole
		// unit, rounded half-up.
		lineItems = append(lineItems, payment.LineItem{
			Name:            item.ProductName,
			UnitAmountMinor: item.UnitPrice.Round(0).IntPart(),
			Quantity:        item.Quantity,
			Currency:        uc.currency,
		})
	}

	session, err := uc.provider.CreateCheckoutSession(ctx, payment.CreateSessionParams{
		LineItems:  lineItems,
		SuccessURL: uc.successURL,
		CancelURL:  uc.cancelURL,
		// Metadata carries the order context so the callback never trusts a
		// client-supplied id.
		Metadata: map[string]string{
			"orderId":  order.ID,
			"sellerId": order.SellerID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("opening checkout session: %w", err)
	}

	uc.logger.Info("checkout session opened",
		zap.String("orderId", order.ID), zap.String("sessionId", session.ID))

	return session.URL, nil
}

func (uc *checkoutUseCase) HandlePaymentSuccess(ctx context.Context, sessionID string) (string, error) {
	session, err := uc.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("retrieving checkout session: %w", err)
	}

	orderID := session.Metadata["orderId"]
	sellerID := session.Metadata["sellerId"]
	if orderID == "" || sellerID == "" {
		return "", errors.NewBadRequestError("session metadata is missing orderId or sellerId")
	}

	order, err := uc.orders.MarkPaid(ctx, orderID)
	if err != nil {
		return "", err
	}

	seller, err := uc.users.FindByID(ctx, sellerID)
	if err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			return "", errors.NewNotFoundError("no seller account associated with this id")
		}
		return "", err
	}

	store, err := uc.stores.FindByOwner(ctx, seller.ID)
	if err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			return "", errors.NewBadRequestError("no store registered for this seller")
		}
		return "", err
	}

	// The paid status is already durable; a failed notification is reported
	// but never rolls it back.
	msg := paymentConfirmationEmail(seller.Name, order.CustomerName, order.CustomerPhone, order.CustomerAddress, string(order.Status))
	if err := uc.sender.Send(msg, "Product payment received", seller.Email); err != nil {
		uc.logger.Warn("failed to send payment confirmation",
			zap.String("orderId", orderID), zap.Error(err))
	}

	confirmation := fmt.Sprintf(
		"Order status updated to paid and the seller was notified. Your products will arrive within 3 days; in case of delay contact the seller, phone: %s or email: %s.",
		store.Phone, store.Email,
	)

	return confirmation, nil
}

// HandlePaymentCancel acknowledges an abandoned checkout. The order stays
// pending and checkout can be retried.
func (uc *checkoutUseCase) HandlePaymentCancel() string {
	return "The customer cancelled the checkout and should be redirected back to the cart."
}

func paymentConfirmationEmail(sellerName, customerName, customerPhone, customerAddress, status string) string {
	return fmt.Sprintf(`<p>Hello %s! You received a payment confirmation from the following customer:</p>
<p>Name: <strong>%s</strong></p>
<p>Phone: <strong>%s</strong></p>
<p>Address: <strong>%s</strong></p>
<p>Order status: %s</p>
<strong>Please open your dashboard to ship the products!</strong>`,
		sellerName, customerName, customerPhone, customerAddress, status)
}
