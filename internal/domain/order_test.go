package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotal_SumsQuantityTimesUnitPrice(t *testing.T) {
	items := []OrderItem{
		{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(2500)},
		{ProductID: "p2", Quantity: 3, UnitPrice: decimal.NewFromInt(100)},
	}

	total := ComputeTotal(items)

	assert.True(t, total.Equal(decimal.NewFromInt(5300)), "got %s", total)
}

func TestComputeTotal_SingleItem(t *testing.T) {
	items := []OrderItem{
		{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(2500)},
	}

	total := ComputeTotal(items)

	assert.True(t, total.Equal(decimal.NewFromInt(5000)), "got %s", total)
}

func TestComputeTotal_EmptyItems(t *testing.T) {
	total := ComputeTotal(nil)

	assert.True(t, total.IsZero())
}

func TestOrderItem_Subtotal(t *testing.T) {
	item := OrderItem{Quantity: 4, UnitPrice: decimal.NewFromFloat(12.50)}

	assert.True(t, item.Subtotal().Equal(decimal.NewFromInt(50)))
}

func TestConvertToMinorUnits(t *testing.T) {
	rate := decimal.NewFromInt(900)

	tests := []struct {
		name  string
		total decimal.Decimal
		want  int64
	}{
		{"zero", decimal.Zero, 0},
		{"exact", decimal.NewFromInt(9000), 1000},
		{"rounds half up", decimal.NewFromInt(9004), 1000},
		{"rounds up past half", decimal.NewFromInt(9005), 1001},
		{"small total", decimal.NewFromInt(5000), 556},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertToMinorUnits(tt.total, rate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertToMinorUnits_StaysWithinOneMinorUnit(t *testing.T) {
	rate := decimal.NewFromInt(900)

	for _, total := range []int64{1, 449, 450, 899, 900, 12345, 987654} {
		cents := ConvertToMinorUnits(decimal.NewFromInt(total), rate)
		exact := decimal.NewFromInt(total).Div(rate).Mul(decimal.NewFromInt(100))
		diff := decimal.NewFromInt(cents).Sub(exact).Abs()
		assert.True(t, diff.LessThanOrEqual(decimal.NewFromFloat(0.5)), "total %d: diff %s", total, diff)
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.True(t, OrderStatusPaid.Valid())
	assert.True(t, OrderStatusCancelled.Valid())
	assert.True(t, OrderStatusShipped.Valid())
	assert.False(t, OrderStatus("refunded").Valid())
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusPaid))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusPaid.CanTransitionTo(OrderStatusShipped))

	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusPaid))
}

func TestOrderStatus_SameStatusIsNoOp(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusShipped} {
		assert.True(t, s.CanTransitionTo(s), "status %s", s)
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleBuyer.Valid())
	assert.True(t, RoleSeller.Valid())
	assert.True(t, RoleEmployee.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("manager").Valid())
}
