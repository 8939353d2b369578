package memory

import (
	"context"
	"sync"

	"github.com/quickkart/marketplace/internal/domain/cart"
	"github.com/quickkart/marketplace/internal/domain/product"
)

type CartRepo struct {
	mu    sync.Mutex
	lines map[string][]cart.Line // customer id -> lines in insertion order
}

func NewCartRepo() *CartRepo {
	return &CartRepo{
		lines: make(map[string][]cart.Line),
	}
}

func (r *CartRepo) Contains(_ context.Context, customerID, productName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return indexOf(r.lines[customerID], productName) >= 0, nil
}

func (r *CartRepo) Toggle(_ context.Context, c cart.Customer, p product.Product) (cart.ToggleResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.lines[c.ID]

	if i := indexOf(lines, p.Name); i >= 0 {
		r.lines[c.ID] = append(lines[:i:i], lines[i+1:]...)
		return cart.ToggleResult{InCart: false}, nil
	}

	if !p.Available() {
		return cart.ToggleResult{}, cart.ErrProductUnavailable
	}

	line := cart.NewLine(c, p)
	r.lines[c.ID] = append(lines, line)

	return cart.ToggleResult{InCart: true, Line: &line}, nil
}

func (r *CartRepo) ListForCustomer(_ context.Context, customerID string) ([]cart.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]cart.Line, len(r.lines[customerID]))
	copy(out, r.lines[customerID])
	return out, nil
}

func (r *CartRepo) Clear(_ context.Context, customerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.lines[customerID]))
	delete(r.lines, customerID)
	return n, nil
}

// RemoveDetached drops the line snapshotted from productID once that product is gone.
func (r *CartRepo) RemoveDetached(_ context.Context, customerID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.lines[customerID]
	for i, l := range lines {
		if l.ProductID == nil && l.SourceID == productID {
			r.lines[customerID] = append(lines[:i:i], lines[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// DetachProduct mirrors ON DELETE SET NULL: lines keep their snapshot but lose the product link.
func (r *CartRepo) DetachProduct(productID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for cid, lines := range r.lines {
		for i := range lines {
			if lines[i].ProductID != nil && *lines[i].ProductID == productID {
				lines[i].ProductID = nil
			}
		}
		r.lines[cid] = lines
	}
}

func indexOf(lines []cart.Line, productName string) int {
	for i, l := range lines {
		if l.ProductName == productName {
			return i
		}
	}
	return -1
}
