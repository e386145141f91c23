package user

import (
	"go.uber.org/zap"

	"welwexpress/internal/auth"
	"welwexpress/internal/config"
)

// NewModule wires the identity feature. The repository is constructed by the
// caller because the store, order and checkout modules read users through the
// same instance.
func NewModule(
	repo *MySQLRepository,
	cfg *config.Config,
	stores StoreReader,
	sender MailSender,
	issuer *auth.TokenIssuer,
	logger *zap.Logger,
) *Controller {
	svc := NewService(repo, stores, sender, issuer, cfg.Uploads.Dir, logger)

	return NewController(svc, logger)
}
