package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"welwexpress/internal/domain"
	"welwexpress/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

const orderColumns = `id, buyerId, sellerId, customerName, customerPhone, customerAddress,
       totalAmount, status, paymentIntentId, idempotencyKey, createdAt, updatedAt`

func (r *MySQLOrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO Orders (id, buyerId, sellerId, customerName, customerPhone, customerAddress,
		                    totalAmount, status, paymentIntentId, idempotencyKey)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		order.ID, order.BuyerID, order.SellerID,
		order.CustomerName, order.CustomerPhone, order.CustomerAddress,
		order.TotalAmount, string(order.Status), order.PaymentIntentID,
		nullableString(order.IdempotencyKey),
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing order insert: %w", err)
	}

	return nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, "WHERE id = ?", id)
}

// FindByIDAndBuyer is the ownership filter: an order belonging to another
// buyer is indistinguishable from a missing one.
func (r *MySQLOrderRepository) FindByIDAndBuyer(ctx context.Context, id, buyerID string) (*domain.Order, error) {
	return r.findOne(ctx, "WHERE id = ? AND buyerId = ?", id, buyerID)
}

func (r *MySQLOrderRepository) FindByBuyerAndKey(ctx context.Context, buyerID, key string) (*domain.Order, error) {
	return r.findOne(ctx, "WHERE buyerId = ? AND idempotencyKey = ?", buyerID, key)
}

func (r *MySQLOrderRepository) FindByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return r.findMany(ctx, "WHERE buyerId = ? ORDER BY createdAt ASC, id ASC", buyerID)
}

func (r *MySQLOrderRepository) FindBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	return r.findMany(ctx, "WHERE sellerId = ? ORDER BY createdAt DESC, id DESC", sellerID)
}

// Update rewrites the order's mutable fields and replaces its item snapshot.
func (r *MySQLOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE Orders
		SET customerName = ?, customerPhone = ?, customerAddress = ?,
		    totalAmount = ?, status = ?
		WHERE id = ? AND buyerId = ?
	`

	_, err = tx.ExecContext(ctx, query,
		order.CustomerName, order.CustomerPhone, order.CustomerAddress,
		order.TotalAmount, string(order.Status),
		order.ID, order.BuyerID,
	)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM OrderItems WHERE orderId = ?`, order.ID); err != nil {
		return fmt.Errorf("clearing order items: %w", err)
	}

	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing order update: %w", err)
	}

	return nil
}

// UpdateStatus sets the status unconditionally. Callers verify existence
// first; a same-value write is deliberately not an error so re-delivered
// payment callbacks stay harmless.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `UPDATE Orders SET status = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, string(status), id); err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	return nil
}

func (r *MySQLOrderRepository) DeleteByIDAndBuyer(ctx context.Context, id, buyerID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Orders WHERE id = ? AND buyerId = ?`, id, buyerID)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("no order with id %s for this account", id))
	}

	return nil
}

func (r *MySQLOrderRepository) findOne(ctx context.Context, where string, args ...interface{}) (*domain.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM Orders %s", orderColumns, where)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("no order found for this account")
	}
	if err != nil {
		return nil, fmt.Errorf("querying order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *MySQLOrderRepository) findMany(ctx context.Context, where string, args ...interface{}) ([]domain.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM Orders %s", orderColumns, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *MySQLOrderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT productId, productName, quantity, unitPrice
		FROM OrderItems
		WHERE orderId = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var unitPrice decimal.Decimal
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &unitPrice); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		item.UnitPrice = unitPrice
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var status string
	var idempotencyKey sql.NullString

	err := row.Scan(
		&order.ID, &order.BuyerID, &order.SellerID,
		&order.CustomerName, &order.CustomerPhone, &order.CustomerAddress,
		&order.TotalAmount, &status, &order.PaymentIntentID, &idempotencyKey,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	order.IdempotencyKey = idempotencyKey.String

	return &order, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID string, items []domain.OrderItem) error {
	query := `
		INSERT INTO OrderItems (orderId, productId, productName, quantity, unitPrice)
		VALUES (?, ?, ?, ?, ?)
	`

	for _, item := range items {
		_, err := tx.ExecContext(ctx, query, orderID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("inserting order item: %w", err)
		}
	}

	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
