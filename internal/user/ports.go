package user

import (
	"context"
	"io"

	"welwexpress/internal/domain"
)

type Repository interface {
	InsertUser(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	DeleteUser(ctx context.Context, id string) error

	InsertEmployee(ctx context.Context, e *domain.Employee) error
	FindEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error)
}

// StoreReader resolves the store owned by a seller, used to scope employee
// provisioning.
type StoreReader interface {
	FindByOwner(ctx context.Context, ownerID string) (*domain.Store, error)
}

type MailSender interface {
	Send(htmlBody, subject, recipient string) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterSellerInput struct {
	Name     string
	Email    string
	Password string
	License  io.Reader
	// LicenseName is the client-supplied filename; only its extension is kept.
	LicenseName string
}

type RegisterEmployeeInput struct {
	StoreID  string
	Name     string
	IDNumber string
	Email    string
	Phone    string
	Address  string
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

type AuthResult struct {
	UserID string
	Name   string
	Email  string
	Role   domain.Role
	Token  string
}

type Service interface {
	RegisterBuyer(ctx context.Context, input RegisterInput) (*AuthResult, error)
	RegisterSeller(ctx context.Context, input RegisterSellerInput) (*AuthResult, error)
	RegisterEmployee(ctx context.Context, ownerID string, input RegisterEmployeeInput) (*domain.Employee, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
