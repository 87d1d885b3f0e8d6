package cart

import (
	"strings"

	"github.com/gaprints/prints-backend/internal/catalog"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// LineItem is one (print, size) selection. Price, title and image are
// snapshots taken when the item was added.
type LineItem struct {
	ID       string  `json:"id"`
	PrintID  string  `json:"printId"`
	Title    string  `json:"title"`
	Slug     string  `json:"slug"`
	Size     string  `json:"size"`
	Price    float64 `json:"price"`
	Qty      int     `json:"qty"`
	ImageURL string  `json:"imageUrl"`
}

// LineItemID derives the composite key that keeps one line per print and size.
func LineItemID(printID, size string) string {
	return printID + "@" + size
}

// NewLineItem builds a line item from a catalog record. Quantities below one
// are raised to one.
func NewLineItem(p catalog.Print, size string, qty int) (LineItem, error) {
	size = strings.TrimSpace(size)
	if !p.IsAvailable {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "print is not available for purchase")
	}
	price, ok := p.PriceFor(size)
	if !ok {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "size not offered for this print").
			WithDetails(map[string]any{"size": size})
	}
	if qty < 1 {
		qty = 1
	}
	return LineItem{
		ID:       LineItemID(p.ID, size),
		PrintID:  p.ID,
		Title:    p.Title,
		Slug:     p.Slug,
		Size:     size,
		Price:    price,
		Qty:      qty,
		ImageURL: p.ImageURL,
	}, nil
}

// LineTotal is price times quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Qty)))
}

// Snapshot is an immutable copy of the cart taken at submission time.
type Snapshot struct {
	items []LineItem
}

// SnapshotOf copies items so later cart mutations cannot leak into it.
func SnapshotOf(items []LineItem) Snapshot {
	cp := make([]LineItem, len(items))
	copy(cp, items)
	return Snapshot{items: cp}
}

// Items returns a copy of the captured line items.
func (s Snapshot) Items() []LineItem {
	cp := make([]LineItem, len(s.items))
	copy(cp, s.items)
	return cp
}

func (s Snapshot) Len() int { return len(s.items) }

// Subtotal sums price times quantity over items. The empty list is zero.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Count sums quantities over items.
func Count(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Qty
	}
	return n
}
