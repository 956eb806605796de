package cart

import (
	"fmt"
	"github.com/ariefcatur/go-storefront.git/internal/money"
)

type Line struct {
	Item     Item        `json:"item"`
	Unit     money.Cents `json:"unit_cents"`
	Subtotal money.Cents `json:"subtotal_cents"`
}

type Summary struct {
	Lines []Line      `json:"lines"`
	Count int         `json:"count"` // total quantity
	Total money.Cents `json:"total_cents"`
}

// Totals hitung subtotal per item dan total order dalam cents (tanpa float).
// Prices, subtotals and the total must all fit in int64 cents.
func Totals(items []Item) (Summary, error) {
	sum := Summary{Lines: make([]Line, 0, len(items))}
	for i, it := range items {
		unit, err := it.UnitPrice()
		if err != nil {
			return Summary{}, &ValidationError{Index: i, Field: "price", Err: err}
		}
		if it.Quantity < 1 {
			return Summary{}, &ValidationError{Index: i, Field: "quantity", Err: fmt.Errorf("must be >= 1, got %d", it.Quantity)}
		}
		sub, err := unit.Mul(it.Quantity)
		if err != nil {
			return Summary{}, &ValidationError{Index: i, Field: "subtotal", Err: err}
		}
		total, err := sum.Total.Add(sub)
		if err != nil {
			return Summary{}, &ValidationError{Index: i, Field: "total", Err: err}
		}
		sum.Lines = append(sum.Lines, Line{Item: it, Unit: unit, Subtotal: sub})
		sum.Count += it.Quantity
		sum.Total = total
	}
	return sum, nil
}
