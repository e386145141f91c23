package order

import (
	"database/sql"

	"go.uber.org/zap"

	"welwexpress/internal/config"
	"welwexpress/internal/order/controller"
	"welwexpress/internal/order/repository"
	"welwexpress/internal/order/service"
)

// NewModule wires the order lifecycle. The service is returned alongside the
// controller because the checkout bridge drives the paid transition through
// it.
func NewModule(
	db *sql.DB,
	cfg *config.Config,
	users service.UserReader,
	provider service.PaymentProvider,
	sender service.MailSender,
	logger *zap.Logger,
) (*controller.Controller, *service.OrderService) {
	repo := repository.NewMySQLOrderRepository(db)

	svc := service.NewOrderService(
		repo,
		users,
		provider,
		sender,
		cfg.Stripe.Currency,
		cfg.Stripe.ExchangeRate,
		logger,
	)

	return controller.NewController(svc, logger), svc
}
