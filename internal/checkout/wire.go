package checkout

import (
	"go.uber.org/zap"

	"welwexpress/internal/config"
)

func NewModule(
	orders OrderService,
	products ProductReader,
	users UserReader,
	stores StoreReader,
	provider SessionProvider,
	sender MailSender,
	cfg *config.Config,
	logger *zap.Logger,
) *Controller {
	uc := NewUseCase(
		orders,
		products,
		users,
		stores,
		provider,
		sender,
		cfg.Stripe.Currency,
		cfg.Stripe.SuccessURL,
		cfg.Stripe.CancelURL,
		logger,
	)

	return NewController(uc, logger)
}
