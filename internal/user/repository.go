package user

import (
	"context"
	"database/sql"
	"fmt"

	"welwexpress/internal/domain"
	"welwexpress/internal/errors"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

const userColumns = `id, name, email, passwordHash, role, licensePath, createdAt`

func (r *MySQLRepository) InsertUser(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO Users (id, name, email, passwordHash, role, licensePath)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role),
		nullableString(u.LicensePath),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "WHERE id = ?", id)
}

func (r *MySQLRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "WHERE email = ?", email)
}

func (r *MySQLRepository) findOne(ctx context.Context, where string, args ...interface{}) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM Users %s", userColumns, where)

	var (
		u           domain.User
		role        string
		licensePath sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &licensePath, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("no user found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	u.Role = domain.Role(role)
	u.LicensePath = licensePath.String

	return &u, nil
}

func (r *MySQLRepository) UpdateUser(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE Users
		SET name = ?, email = ?, passwordHash = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.ID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	// A same-value update also reports zero affected rows on MySQL, but the
	// service always re-reads before updating so the row is known to exist.
	_, _ = result.RowsAffected()

	return nil
}

func (r *MySQLRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("no user found")
	}

	return nil
}

func (r *MySQLRepository) InsertEmployee(ctx context.Context, e *domain.Employee) error {
	query := `
		INSERT INTO Employees (id, name, idNumber, email, passwordHash, phone, address, storeId)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Name, e.IDNumber, e.Email, e.PasswordHash, e.Phone, e.Address, e.StoreID,
	)
	if err != nil {
		return fmt.Errorf("inserting employee: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	query := `
		SELECT id, name, idNumber, email, passwordHash, phone, address, storeId, createdAt
		FROM Employees
		WHERE email = ?
	`

	var e domain.Employee

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&e.ID, &e.Name, &e.IDNumber, &e.Email, &e.PasswordHash,
		&e.Phone, &e.Address, &e.StoreID, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("no user found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying employee: %w", err)
	}

	return &e, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
