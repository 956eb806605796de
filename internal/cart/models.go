package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-storefront.git/internal/money"
	"strconv"
)

// ItemID menerima id numerik maupun string dari client.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Price keeps the client's decimal text; browsers send it as a number or a string.
type Price string

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Price(n.String())
	return nil
}

type Item struct {
	ID          ItemID `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       Price  `json:"price"`
	Quantity    int    `json:"quantity"`
	Img         string `json:"img,omitempty"`
}

// ValidationError menunjuk item (index) dan field yang tidak valid.
type ValidationError struct {
	Index int
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("item %d: invalid %s: %v", e.Index, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// UnitPrice parses Price into cents.
func (it Item) UnitPrice() (money.Cents, error) {
	return money.Parse(string(it.Price))
}

// Validate rejects carts Totals cannot price, including ones whose total overflows.
func Validate(items []Item) error {
	_, err := Totals(items)
	return err
}
