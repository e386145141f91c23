package store

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"welwexpress/internal/domain"
	apperrors "welwexpress/internal/errors"
)

var (
	taxIDPattern = regexp.MustCompile(`^\d{14}$`)
	ibanPattern  = regexp.MustCompile(`^AO\d{21}$`)
	phonePattern = regexp.MustCompile(`^(\+244)?9\d{8}$`)
)

type storeService struct {
	repo   Repository
	users  UserReader
	logger *zap.Logger
}

func NewService(repo Repository, users UserReader, logger *zap.Logger) Service {
	return &storeService{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

func (s *storeService) RegisterStore(ctx context.Context, ownerID string, input RegisterStoreInput) (*domain.Store, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != domain.RoleSeller {
		return nil, apperrors.NewUnauthenticatedError("only sellers can register a store")
	}

	if err := validateStoreFields(input); err != nil {
		return nil, err
	}

	// One store per seller.
	if existing, err := s.repo.FindByOwner(ctx, ownerID); err == nil && existing != nil {
		return nil, apperrors.NewBadRequestError("this seller already has a registered store")
	} else if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
	}

	if existing, err := s.repo.FindByTaxID(ctx, input.TaxID); err == nil && existing != nil {
		return nil, apperrors.NewBadRequestError("a store with this tax id already exists")
	} else if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
	}

	st := &domain.Store{
		ID:        uuid.NewString(),
		Name:      input.Name,
		TaxID:     input.TaxID,
		Email:     input.Email,
		Phone:     input.Phone,
		IBAN:      input.IBAN,
		Commerce:  input.Commerce,
		Province:  input.Province,
		Address:   input.Address,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, st); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *storeService) GetStore(ctx context.Context, ownerID, storeID string) (*domain.Store, error) {
	return s.repo.FindByIDAndOwner(ctx, storeID, ownerID)
}

func (s *storeService) FindByOwner(ctx context.Context, ownerID string) (*domain.Store, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

func (s *storeService) UpdateStore(ctx context.Context, ownerID, storeID string, input UpdateStoreInput) (*domain.Store, error) {
	st, err := s.repo.FindByIDAndOwner(ctx, storeID, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		st.Name = *input.Name
	}
	if input.Email != nil {
		st.Email = *input.Email
	}
	if input.Phone != nil {
		if !phonePattern.MatchString(*input.Phone) {
			return nil, apperrors.NewBadRequestError("phone must be a valid Angolan mobile number")
		}
		st.Phone = *input.Phone
	}
	if input.Commerce != nil {
		st.Commerce = *input.Commerce
	}
	if input.Province != nil {
		if !domain.ValidProvince(*input.Province) {
			return nil, apperrors.NewBadRequestError("province is not a recognised Angolan province")
		}
		st.Province = *input.Province
	}
	if input.Address != nil {
		st.Address = *input.Address
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *storeService) DeleteStore(ctx context.Context, ownerID, storeID string) error {
	return s.repo.DeleteByIDAndOwner(ctx, storeID, ownerID)
}

func validateStoreFields(input RegisterStoreInput) error {
	var details []apperrors.ValidationDetail

	if input.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}

	if !taxIDPattern.MatchString(input.TaxID) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "taxId",
			Message: "taxId must be exactly 14 digits",
		})
	}

	if !ibanPattern.MatchString(input.IBAN) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "iban",
			Message: "iban must start with AO followed by 21 digits",
		})
	}

	if !phonePattern.MatchString(input.Phone) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "phone",
			Message: "phone must be a valid Angolan mobile number",
		})
	}

	if !domain.ValidProvince(input.Province) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "province",
			Message: "province is not a recognised Angolan province",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}
