package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	StoreID     string
	Name        string
	Price       decimal.Decimal
	Description string
	Category    string
	Colors      []string
	Sizes       []string
	Quantity    int
	ImagePath   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
