package store

import (
	"context"

	"welwexpress/internal/domain"
)

type Repository interface {
	Insert(ctx context.Context, s *domain.Store) error
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Store, error)
	FindByOwner(ctx context.Context, ownerID string) (*domain.Store, error)
	FindByTaxID(ctx context.Context, taxID string) (*domain.Store, error)
	Update(ctx context.Context, s *domain.Store) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error
}

type UserReader interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type RegisterStoreInput struct {
	Name     string
	TaxID    string
	Email    string
	Phone    string
	IBAN     string
	Commerce string
	Province string
	Address  string
}

type UpdateStoreInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Commerce *string
	Province *string
	Address  *string
}

type Service interface {
	RegisterStore(ctx context.Context, ownerID string, input RegisterStoreInput) (*domain.Store, error)
	GetStore(ctx context.Context, ownerID, storeID string) (*domain.Store, error)
	FindByOwner(ctx context.Context, ownerID string) (*domain.Store, error)
	UpdateStore(ctx context.Context, ownerID, storeID string, input UpdateStoreInput) (*domain.Store, error)
	DeleteStore(ctx context.Context, ownerID, storeID string) error
}
