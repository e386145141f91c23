package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"welwexpress/internal/domain"
	apperrors "welwexpress/internal/errors"
)

type catalogService struct {
	repo       Repository
	stores     StoreReader
	uploadsDir string
	logger     *zap.Logger
}

func NewService(repo Repository, stores StoreReader, uploadsDir string, logger *zap.Logger) Service {
	return &catalogService{
		repo:       repo,
		stores:     stores,
		uploadsDir: uploadsDir,
		logger:     logger,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, ownerID string, input CreateProductInput) (*domain.Product, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := validateProductFields(input.Name, input.Price, input.Quantity); err != nil {
		return nil, err
	}

	var imagePath string
	if input.Image != nil {
		imagePath, err = s.saveImage(input.Image, input.ImageName)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to store product image", err)
		}
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:          uuid.NewString(),
		StoreID:     store.ID,
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Category:    input.Category,
		Colors:      input.Colors,
		Sizes:       input.Sizes,
		Quantity:    input.Quantity,
		ImagePath:   imagePath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		if imagePath != "" {
			if removeErr := os.Remove(imagePath); removeErr != nil {
				s.logger.Warn("failed to remove orphaned product image",
					zap.String("path", imagePath),
					zap.Error(removeErr),
				)
			}
		}
		return nil, err
	}

	return p, nil
}

func (s *catalogService) GetProduct(ctx context.Context, ownerID, productID string) (*domain.Product, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return s.repo.FindByIDAndStore(ctx, productID, store.ID)
}

func (s *catalogService) ListProducts(ctx context.Context, ownerID string) ([]domain.Product, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return s.repo.FindByStore(ctx, store.ID)
}

func (s *catalogService) UpdateProduct(ctx context.Context, ownerID, productID string, input UpdateProductInput) (*domain.Product, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.FindByIDAndStore(ctx, productID, store.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperrors.NewBadRequestError("price must be non-negative")
		}
		p.Price = *input.Price
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.Colors != nil {
		p.Colors = input.Colors
	}
	if input.Sizes != nil {
		p.Sizes = input.Sizes
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, apperrors.NewBadRequestError("quantity must be non-negative")
		}
		p.Quantity = *input.Quantity
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, ownerID, productID string) error {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		return err
	}

	return s.repo.DeleteByIDAndStore(ctx, productID, store.ID)
}

func (s *catalogService) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *catalogService) saveImage(src io.Reader, originalName string) (string, error) {
	dir := filepath.Join(s.uploadsDir, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

func validateProductFields(name string, price decimal.Decimal, quantity int) error {
	var details []apperrors.ValidationDetail

	if name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}

	if price.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be non-negative",
		})
	}

	if quantity < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be non-negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}
