package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusShipped   OrderStatus = "shipped"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusShipped:
		return true
	}
	return false
}

// transitions is the closed set of legal status changes. A write to the
// current status is treated as a no-op, which keeps re-delivered payment
// callbacks harmless.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a buyer's purchase against one seller. Customer fields and items
// are a snapshot taken at order time; catalog changes afterwards never alter
// historical totals.
type Order struct {
	ID              string
	BuyerID         string
	SellerID        string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []OrderItem
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	PaymentIntentID string
	IdempotencyKey  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ComputeTotal sums quantity × unitPrice over items in the store's native
// currency unit.
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ConvertToMinorUnits converts a native-currency total to the settlement
// currency's minor units at the given rate, rounding half up:
// round(total/rate × 100).
func ConvertToMinorUnits(total decimal.Decimal, rate decimal.Decimal) int64 {
	return total.Div(rate).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
