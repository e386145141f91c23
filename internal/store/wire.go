package store

import (
	"database/sql"

	"go.uber.org/zap"
)

// NewModule wires the store directory. The service is returned alongside the
// controller because catalog, identity and checkout resolve stores through it.
func NewModule(db *sql.DB, users UserReader, logger *zap.Logger) (*Controller, Service) {
	repo := NewMySQLRepository(db)

	svc := NewService(repo, users, logger)

	return NewController(svc, logger), svc
}
