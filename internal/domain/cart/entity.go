// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Line represents one cart row: a unique product+variant combination and its
// quantity. Name, image and price are snapshots captured at add-time.
type Line struct {
	ID        string    `json:"id"`
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
	Price     int64     `json:"price"` // Unit price in cents at time of add
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Matches reports whether the line shares the (productID, size, color) merge
// key. Two additions with the same key increment the same line.
func (l Line) Matches(productID uint, size, color string) bool {
	return l.ProductID == productID && l.Size == size && l.Color == color
}

// LineTotal returns price * quantity for this line
func (l Line) LineTotal() int64 {
	return l.Price * int64(l.Quantity)
}

// Collection is the full persisted cart for one session. Every mutation
// rewrites the whole collection, never a partial patch.
type Collection struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subtotal returns the sum over lines of price * quantity
func (c *Collection) Subtotal() int64 {
	var subtotal int64
	for _, line := range c.Lines {
		subtotal += line.LineTotal()
	}
	return subtotal
}

// ItemCount returns the sum of line quantities, not the line count
func (c *Collection) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Totals represents calculated cart aggregates
type Totals struct {
	LineCount     int   `json:"line_count"`     // Number of unique lines
	TotalQuantity int   `json:"total_quantity"` // Sum of all quantities
	SubTotal      int64 `json:"sub_total"`      // Total before shipping and discount
}

// CalculateTotals derives the aggregates from the collection
func (c *Collection) CalculateTotals() Totals {
	return Totals{
		LineCount:     len(c.Lines),
		TotalQuantity: c.ItemCount(),
		SubTotal:      c.Subtotal(),
	}
}
