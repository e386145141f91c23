package catalog

import (
	"database/sql"

	"go.uber.org/zap"

	"welwexpress/internal/config"
)

// NewModule wires the catalog. The service is returned alongside the
// controller because the checkout bridge reads products through it.
func NewModule(db *sql.DB, cfg *config.Config, stores StoreReader, logger *zap.Logger) (*Controller, Service) {
	repo := NewMySQLRepository(db)

	svc := NewService(repo, stores, cfg.Uploads.Dir, logger)

	return NewController(svc, logger), svc
}
