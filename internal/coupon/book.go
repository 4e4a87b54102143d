package coupon

import (
	"strings"

	"restore/internal/model"
)

// MemoryBook implements Book with a map for O(1) lookups.
type MemoryBook struct {
	coupons map[string]model.Coupon
}

// NewBook creates an empty map-backed book.
func NewBook(capacity int) *MemoryBook {
	return &MemoryBook{
		coupons: make(map[string]model.Coupon, capacity),
	}
}

// Lookup finds a coupon by code, ignoring case.
func (b *MemoryBook) Lookup(code string) (model.Coupon, bool) {
	c, ok := b.coupons[normalizeCode(code)]
	return c, ok
}

// Size returns the number of coupons in the book.
func (b *MemoryBook) Size() int {
	return len(b.coupons)
}

// All returns every coupon in unspecified order.
func (b *MemoryBook) All() []model.Coupon {
	out := make([]model.Coupon, 0, len(b.coupons))
	for _, c := range b.coupons {
		out = append(out, c)
	}
	return out
}

// Put adds or replaces a coupon.
func (b *MemoryBook) Put(c model.Coupon) {
	b.coupons[normalizeCode(c.Code)] = c
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
