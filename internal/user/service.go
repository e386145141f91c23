package user

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"welwexpress/internal/auth"
	"welwexpress/internal/domain"
	apperrors "welwexpress/internal/errors"
)

const generatedPasswordLength = 12

type userService struct {
	repo       Repository
	stores     StoreReader
	sender     MailSender
	issuer     *auth.TokenIssuer
	uploadsDir string
	logger     *zap.Logger
}

func NewService(
	repo Repository,
	stores StoreReader,
	sender MailSender,
	issuer *auth.TokenIssuer,
	uploadsDir string,
	logger *zap.Logger,
) Service {
	return &userService{
		repo:       repo,
		stores:     stores,
		sender:     sender,
		issuer:     issuer,
		uploadsDir: uploadsDir,
		logger:     logger,
	}
}

func (s *userService) RegisterBuyer(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	return s.register(ctx, input, domain.RoleBuyer, "")
}

func (s *userService) RegisterSeller(ctx context.Context, input RegisterSellerInput) (*AuthResult, error) {
	if input.License == nil {
		return nil, apperrors.NewBadRequestError("a commerce license file is required")
	}

	licensePath, err := s.saveLicense(input.License, input.LicenseName)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to store license file", err)
	}

	result, err := s.register(ctx, RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	}, domain.RoleSeller, licensePath)
	if err != nil {
		if removeErr := os.Remove(licensePath); removeErr != nil {
			s.logger.Warn("failed to remove orphaned license file",
				zap.String("path", licensePath),
				zap.Error(removeErr),
			)
		}
		return nil, err
	}

	return result, nil
}

func (s *userService) register(ctx context.Context, input RegisterInput, role domain.Role, licensePath string) (*AuthResult, error) {
	if existing, err := s.repo.FindByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, apperrors.NewBadRequestError("email already registered")
	} else if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		LicensePath:  licensePath,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.InsertUser(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(u.ID, u.Name, u.Role)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}

	return &AuthResult{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Token:  token,
	}, nil
}

func (s *userService) RegisterEmployee(ctx context.Context, ownerID string, input RegisterEmployeeInput) (*domain.Employee, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if input.StoreID != store.ID {
		return nil, apperrors.NewForbiddenError("store does not belong to this seller")
	}

	if existing, err := s.repo.FindEmployeeByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, apperrors.NewBadRequestError("email already registered")
	} else if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
	}

	password, err := auth.GeneratePassword(generatedPasswordLength)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate password", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	e := &domain.Employee{
		ID:           uuid.NewString(),
		Name:         input.Name,
		IDNumber:     input.IDNumber,
		Email:        input.Email,
		PasswordHash: hash,
		Phone:        input.Phone,
		Address:      input.Address,
		StoreID:      store.ID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.InsertEmployee(ctx, e); err != nil {
		return nil, err
	}

	body := employeeWelcomeEmail(e.Name, store.Name, e.Email, password)
	if err := s.sender.Send(body, "Your employee account", e.Email); err != nil {
		s.logger.Warn("failed to send employee credentials email",
			zap.String("employeeId", e.ID),
			zap.Error(err),
		)
	}

	return e, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if !auth.ComparePassword(u.PasswordHash, password) {
			return nil, apperrors.NewBadRequestError("wrong password")
		}

		token, err := s.issuer.Issue(u.ID, u.Name, u.Role)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to issue token", err)
		}

		return &AuthResult{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Token: token}, nil
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	// Employees live in their own table but share the login endpoint.
	e, err := s.repo.FindEmployeeByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !auth.ComparePassword(e.PasswordHash, password) {
		return nil, apperrors.NewBadRequestError("wrong password")
	}

	token, err := s.issuer.Issue(e.ID, e.Name, domain.RoleEmployee)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}

	return &AuthResult{UserID: e.ID, Name: e.Name, Email: e.Email, Role: domain.RoleEmployee, Token: token}, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		u.Name = *input.Name
	}
	if input.Email != nil && *input.Email != u.Email {
		if existing, err := s.repo.FindByEmail(ctx, *input.Email); err == nil && existing != nil {
			return nil, apperrors.NewBadRequestError("email already registered")
		} else if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); !ok {
				return nil, err
			}
		}
		u.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

func (s *userService) saveLicense(src io.Reader, originalName string) (string, error) {
	dir := filepath.Join(s.uploadsDir, "licenses")
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

func employeeWelcomeEmail(name, storeName, email, password string) string {
	return fmt.Sprintf(`<h2>Welcome, %s</h2>
<p>An account was created for you at the store <strong>%s</strong>.</p>
<p>Sign in with:</p>
<ul>
<li>Email: %s</li>
<li>Password: %s</li>
</ul>
<p>Please change your password after the first sign in.</p>`,
		name, storeName, email, password)
}
