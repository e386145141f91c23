package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
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

const productColumns = `id, storeId, name, price, description, category, colors, sizes,
       quantity, imagePath, createdAt, updatedAt`

func (r *MySQLRepository) Insert(ctx context.Context, p *domain.Product) error {
	colors, sizes, err := encodeVariants(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO Products (id, storeId, name, price, description, category, colors, sizes,
		                      quantity, imagePath)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.StoreID, p.Name, p.Price, p.Description, p.Category,
		colors, sizes, p.Quantity, nullableString(p.ImagePath),
	)
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.findOne(ctx, "WHERE id = ?", id)
}

// FindByIDAndStore is the ownership filter: a product in another store is
// indistinguishable from a missing one.
func (r *MySQLRepository) FindByIDAndStore(ctx context.Context, id, storeID string) (*domain.Product, error) {
	return r.findOne(ctx, "WHERE id = ? AND storeId = ?", id, storeID)
}

func (r *MySQLRepository) FindByStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM Products WHERE storeId = ? ORDER BY createdAt DESC, id DESC", productColumns)

	rows, err := r.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	return products, nil
}

func (r *MySQLRepository) findOne(ctx context.Context, where string, args ...interface{}) (*domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM Products %s", productColumns, where)

	row := r.db.QueryRowContext(ctx, query, args...)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("no product found")
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p             domain.Product
		colors, sizes []byte
		imagePath     sql.NullString
	)

	err := row.Scan(
		&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Description, &p.Category,
		&colors, &sizes, &p.Quantity, &imagePath, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning product: %w", err)
	}

	if len(colors) > 0 {
		if err := json.Unmarshal(colors, &p.Colors); err != nil {
			return nil, fmt.Errorf("decoding product colors: %w", err)
		}
	}
	if len(sizes) > 0 {
		if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
			return nil, fmt.Errorf("decoding product sizes: %w", err)
		}
	}
	p.ImagePath = imagePath.String

	return &p, nil
}

func (r *MySQLRepository) Update(ctx context.Context, p *domain.Product) error {
	colors, sizes, err := encodeVariants(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE Products
		SET name = ?, price = ?, description = ?, category = ?, colors = ?, sizes = ?, quantity = ?
		WHERE id = ? AND storeId = ?
	`

	_, err = r.db.ExecContext(ctx, query,
		p.Name, p.Price, p.Description, p.Category, colors, sizes, p.Quantity,
		p.ID, p.StoreID,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	return nil
}

func (r *MySQLRepository) DeleteByIDAndStore(ctx context.Context, id, storeID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Products WHERE id = ? AND storeId = ?`, id, storeID)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("no product found")
	}

	return nil
}

func encodeVariants(p *domain.Product) ([]byte, []byte, error) {
	colors, err := json.Marshal(p.Colors)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding product colors: %w", err)
	}

	sizes, err := json.Marshal(p.Sizes)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding product sizes: %w", err)
	}

	return colors, sizes, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
