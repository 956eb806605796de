package cart

import (
	"encoding/json"
	"testing"

	"github.com/ariefcatur/go-storefront.git/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotals_NoFloatDrift(t *testing.T) {
	items := []Item{
		{ID: "1", Name: "A", Price: "19.99", Quantity: 2},
		{ID: "2", Name: "B", Price: "19.99", Quantity: 2},
		{ID: "3", Name: "C", Price: "19.99", Quantity: 2},
	}

	sum, err := Totals(items)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(11994), sum.Total)
	assert.Equal(t, "119.94", sum.Total.String())
	assert.Equal(t, 6, sum.Count)
	require.Len(t, sum.Lines, 3)
	assert.Equal(t, money.Cents(3998), sum.Lines[0].Subtotal)
}

func TestTotals_SumOfLines(t *testing.T) {
	items := []Item{
		{ID: "1", Name: "Bronton", Price: "3000", Quantity: 1},
		{ID: "2", Name: "E-BMX", Price: "2000", Quantity: 3},
		{ID: "3", Name: "F-65", Price: "700.10", Quantity: 7},
		{ID: "4", Name: "Bell", Price: "0.10", Quantity: 3},
	}

	sum, err := Totals(items)
	require.NoError(t, err)

	var want money.Cents
	for _, l := range sum.Lines {
		want += l.Subtotal
	}
	assert.Equal(t, want, sum.Total)
	assert.Equal(t, "13901.00", sum.Total.String())
}

func TestTotals_EmptyCart(t *testing.T) {
	sum, err := Totals(nil)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(0), sum.Total)
	assert.Empty(t, sum.Lines)
	assert.NotNil(t, sum.Lines)
}

func TestTotals_MalformedPrice(t *testing.T) {
	_, err := Totals([]Item{
		{ID: "1", Price: "10.00", Quantity: 1},
		{ID: "2", Price: "ten", Quantity: 1},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, "price", verr.Field)
	assert.ErrorIs(t, err, money.ErrMalformed)
}

func TestTotals_InvalidQuantity(t *testing.T) {
	_, err := Totals([]Item{{ID: "1", Price: "10.00", Quantity: 0}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)
}

func TestItemID_AcceptsNumberAndString(t *testing.T) {
	var items []Item
	err := json.Unmarshal([]byte(`[{"id":1,"name":"Bronton","price":"3000","quantity":1},{"id":"sku-2","name":"x","price":"1","quantity":1}]`), &items)
	require.NoError(t, err)
	assert.Equal(t, ItemID("1"), items[0].ID)
	assert.Equal(t, ItemID("sku-2"), items[1].ID)

	b, err := json.Marshal(items[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":1`)
}

func TestPrice_AcceptsNumber(t *testing.T) {
	var items []Item
	err := json.Unmarshal([]byte(`[{"id":1,"name":"A","price":19.99,"quantity":6},{"id":2,"name":"B","price":"700","quantity":1}]`), &items)
	require.NoError(t, err)
	assert.Equal(t, Price("19.99"), items[0].Price)

	sum, err := Totals(items)
	require.NoError(t, err)
	assert.Equal(t, "819.94", sum.Total.String())
}

func TestTotals_Overflow(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		index int
		field string
	}{
		{"price beyond int64 cents", []Item{{ID: "1", Price: "1e20", Quantity: 1}}, 0, "price"},
		{"subtotal wraps", []Item{{ID: "1", Price: "92233720368547758.07", Quantity: 2}}, 0, "subtotal"},
		{"total wraps", []Item{
			{ID: "1", Price: "10.00", Quantity: 1},
			{ID: "2", Price: "92233720368547758.07", Quantity: 1},
		}, 1, "total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, err := Totals(tt.items)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.index, verr.Index)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, money.ErrTooLarge)
			assert.Zero(t, sum.Total)
			assert.ErrorIs(t, Validate(tt.items), money.ErrTooLarge)
		})
	}
}

func TestTotals_LargestTotalFits(t *testing.T) {
	sum, err := Totals([]Item{{ID: "1", Price: "92233720368547758.07", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "92233720368547758.07", sum.Total.String())
}
