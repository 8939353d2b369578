package memory

import (
	"context"
	"sync"
	"time"

	"github.com/quickkart/marketplace/internal/domain/product"
)

type ProductsRepo struct {
	mu    sync.RWMutex
	order []string                   // insertion order
	items map[string]product.Product // {"id": product}

	onDelete []func(id string)
}

func NewProductsRepo() *ProductsRepo {
	return &ProductsRepo{
		items: make(map[string]product.Product),
	}
}

func (r *ProductsRepo) Create(_ context.Context, p product.Product) (product.Product, error) {
	r.mu.Lock()
	r.items[p.ID] = p
	r.order = append(r.order, p.ID)
	r.mu.Unlock()

	return p, nil
}

func (r *ProductsRepo) ListAvailable(_ context.Context) ([]product.Product, error) {
	return r.filter(func(p product.Product) bool { return p.Available() }), nil
}

func (r *ProductsRepo) ListBySeller(_ context.Context, ownerID string) ([]product.Product, error) {
	return r.filter(func(p product.Product) bool { return p.OwnerID == ownerID }), nil
}

func (r *ProductsRepo) filter(keep func(product.Product) bool) []product.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.items[id]; ok && keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *ProductsRepo) GetByID(_ context.Context, id string) (product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

// OnDelete registers a hook run after a product is removed.
func (r *ProductsRepo) OnDelete(fn func(id string)) {
	r.mu.Lock()
	r.onDelete = append(r.onDelete, fn)
	r.mu.Unlock()
}

// ownedLocked must be called with r.mu held.
func (r *ProductsRepo) ownedLocked(id, ownerID string) (product.Product, error) {
	p, ok := r.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	if p.OwnerID != ownerID {
		return product.Product{}, product.ErrForbidden
	}
	return p, nil
}

func (r *ProductsRepo) DeleteOwned(_ context.Context, id, ownerID string) error {
	r.mu.Lock()

	if _, err := r.ownedLocked(id, ownerID); err != nil {
		r.mu.Unlock()
		return err
	}

	delete(r.items, id)

	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	hooks := r.onDelete
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(id)
	}

	return nil
}

func (r *ProductsRepo) UpdateQuantity(_ context.Context, id, ownerID string, quantity int) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.ownedLocked(id, ownerID)
	if err != nil {
		return product.Product{}, err
	}

	p.Quantity = quantity
	p.UpdatedAt = time.Now().UTC()
	r.items[id] = p

	return p, nil
}
