package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPriceEmptyCart(t *testing.T) {
	_, err := Price(nil)
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = Price([]LineItem{})
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestPriceTwoTickets(t *testing.T) {
	// 2 x 35.00 -> subtotal 70.00, fee 1.40, tax (70+1.40)*0.13 = 9.282 -> 9.28
	q, err := Price([]LineItem{{UnitPrice: d("35.00"), Quantity: 2}})
	require.NoError(t, err)

	assert.True(t, q.Subtotal.Equal(d("70.00")), "subtotal = %s", q.Subtotal)
	assert.True(t, q.PlatformFee.Equal(d("1.40")), "fee = %s", q.PlatformFee)
	assert.True(t, q.Tax.Equal(d("9.28")), "tax = %s", q.Tax)
	assert.True(t, q.Total.Equal(d("80.68")), "total = %s", q.Total)
}

func TestPriceTotalIdentity(t *testing.T) {
	carts := [][]LineItem{
		{{UnitPrice: d("150.00"), Quantity: 1}},
		{{UnitPrice: d("19.99"), Quantity: 3}, {UnitPrice: d("45.50"), Quantity: 2}},
		{{UnitPrice: d("0.01"), Quantity: 1}},
		{{UnitPrice: d("12.34"), Quantity: 7}, {UnitPrice: d("0.99"), Quantity: 13}},
	}
	for _, items := range carts {
		q, err := Price(items)
		require.NoError(t, err)
		assert.True(t, q.Total.Equal(q.Subtotal.Add(q.PlatformFee).Add(q.Tax)),
			"total %s != subtotal %s + fee %s + tax %s", q.Total, q.Subtotal, q.PlatformFee, q.Tax)
		assert.True(t, q.PlatformFee.Equal(q.Subtotal.Mul(d("0.02")).Round(2)))
	}
}

func TestPriceManySmallItemsNoDrift(t *testing.T) {
	// 1000 items at 0.10 each: binary floats would drift here, decimals must not.
	items := make([]LineItem, 1000)
	for i := range items {
		items[i] = LineItem{UnitPrice: d("0.10"), Quantity: 1}
	}
	q, err := Price(items)
	require.NoError(t, err)

	assert.True(t, q.Subtotal.Equal(d("100.00")), "subtotal = %s", q.Subtotal)
	assert.True(t, q.PlatformFee.Equal(d("2.00")))
	assert.True(t, q.Tax.Equal(d("13.26")))
	assert.True(t, q.Total.Equal(d("115.26")))
	// cents representation is exact
	assert.Equal(t, int64(11526), Cents(q.Total))
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(3500), Cents(d("35.00")))
	assert.Equal(t, int64(928), Cents(d("9.28")))
	assert.Equal(t, int64(1), Cents(d("0.01")))
	assert.Equal(t, int64(0), Cents(decimal.Zero))
}
