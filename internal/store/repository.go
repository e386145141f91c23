package store

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

const storeColumns = `id, name, taxId, email, phone, iban, commerce, province, address, ownerId, createdAt`

func (r *MySQLRepository) Insert(ctx context.Context, s *domain.Store) error {
	query := `
		INSERT INTO Stores (id, name, taxId, email, phone, iban, commerce, province, address, ownerId)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.TaxID, s.Email, s.Phone, s.IBAN,
		s.Commerce, s.Province, s.Address, s.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("inserting store: %w", err)
	}

	return nil
}

// FindByIDAndOwner is the ownership filter: a store belonging to another
// seller is indistinguishable from a missing one.
func (r *MySQLRepository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Store, error) {
	return r.findOne(ctx, "WHERE id = ? AND ownerId = ?", id, ownerID)
}

func (r *MySQLRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.Store, error) {
	return r.findOne(ctx, "WHERE ownerId = ?", ownerID)
}

func (r *MySQLRepository) FindByTaxID(ctx context.Context, taxID string) (*domain.Store, error) {
	return r.findOne(ctx, "WHERE taxId = ?", taxID)
}

func (r *MySQLRepository) findOne(ctx context.Context, where string, args ...interface{}) (*domain.Store, error) {
	query := fmt.Sprintf("SELECT %s FROM Stores %s", storeColumns, where)

	var s domain.Store

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.ID, &s.Name, &s.TaxID, &s.Email, &s.Phone, &s.IBAN,
		&s.Commerce, &s.Province, &s.Address, &s.OwnerID, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("no store found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying store: %w", err)
	}

	return &s, nil
}

func (r *MySQLRepository) Update(ctx context.Context, s *domain.Store) error {
	query := `
		UPDATE Stores
		SET name = ?, email = ?, phone = ?, commerce = ?, province = ?, address = ?
		WHERE id = ? AND ownerId = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		s.Name, s.Email, s.Phone, s.Commerce, s.Province, s.Address,
		s.ID, s.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating store: %w", err)
	}

	return nil
}

func (r *MySQLRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Stores WHERE id = ? AND ownerId = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting store: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("no store found")
	}

	return nil
}
