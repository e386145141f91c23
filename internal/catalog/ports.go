package catalog

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"welwexpress/internal/domain"
)

type Repository interface {
	Insert(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByIDAndStore(ctx context.Context, id, storeID string) (*domain.Product, error)
	FindByStore(ctx context.Context, storeID string) ([]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	DeleteByIDAndStore(ctx context.Context, id, storeID string) error
}

// StoreReader resolves the caller's store; every catalog mutation is scoped
// to it.
type StoreReader interface {
	FindByOwner(ctx context.Context, ownerID string) (*domain.Store, error)
}

type CreateProductInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Category    string
	Colors      []string
	Sizes       []string
	Quantity    int
	Image       io.Reader
	// ImageName is the client-supplied filename; only its extension is kept.
	ImageName string
}

type UpdateProductInput struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	Category    *string
	Colors      []string
	Sizes       []string
	Quantity    *int
}

type Service interface {
	CreateProduct(ctx context.Context, ownerID string, input CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, ownerID, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context, ownerID string) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, ownerID, productID string, input UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, ownerID, productID string) error

	// FindByID is the read-only lookup used by the checkout bridge.
	FindByID(ctx context.Context, id string) (*domain.Product, error)
}
