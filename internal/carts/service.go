// Package carts implements the customer cart on top of snapshot lines.
package carts

import (
	"context"
	"errors"

	"github.com/quickkart/marketplace/internal/domain/cart"
	"github.com/quickkart/marketplace/internal/domain/product"
	"github.com/quickkart/marketplace/internal/observability"
)

type Store interface {
	Contains(ctx context.Context, customerID, productName string) (bool, error)
	Toggle(ctx context.Context, c cart.Customer, p product.Product) (cart.ToggleResult, error)
	RemoveDetached(ctx context.Context, customerID, productID string) (bool, error)
	ListForCustomer(ctx context.Context, customerID string) ([]cart.Line, error)
	Clear(ctx context.Context, customerID string) (int64, error)
}

type ProductReader interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
}

type Service struct {
	store    Store
	products ProductReader
	prom     *observability.Prom
}

func NewService(store Store, products ProductReader, prom *observability.Prom) *Service {
	return &Service{store: store, products: products, prom: prom}
}

// IsInCart matches on the product name, which is unique within one cart.
func (s *Service) IsInCart(ctx context.Context, customerID, productName string) (bool, error) {
	return s.store.Contains(ctx, customerID, productName)
}

// Toggle adds the product if absent and removes it if present, as one unit.
// Adding a sold out product fails with cart.ErrProductUnavailable.
// A line whose product was deleted can only be removed.
func (s *Service) Toggle(ctx context.Context, c cart.Customer, productID string) (cart.ToggleResult, error) {
	p, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, product.ErrNotFound) {
		return s.removeDetached(ctx, c.ID, productID)
	}
	if err != nil {
		return cart.ToggleResult{}, err
	}

	res, err := s.store.Toggle(ctx, c, p)
	if err != nil {
		return cart.ToggleResult{}, err
	}

	s.prom.IncCartToggle(res.InCart)
	return res, nil
}

func (s *Service) removeDetached(ctx context.Context, customerID, productID string) (cart.ToggleResult, error) {
	removed, err := s.store.RemoveDetached(ctx, customerID, productID)
	if err != nil {
		return cart.ToggleResult{}, err
	}
	if !removed {
		return cart.ToggleResult{}, product.ErrNotFound
	}

	s.prom.IncCartToggle(false)
	return cart.ToggleResult{InCart: false}, nil
}

func (s *Service) List(ctx context.Context, customerID string) ([]cart.Line, error) {
	return s.store.ListForCustomer(ctx, customerID)
}

// Summary returns the lines, count, total and empty/populated state.
func (s *Service) Summary(ctx context.Context, customerID string) (cart.Summary, error) {
	lines, err := s.store.ListForCustomer(ctx, customerID)
	if err != nil {
		return cart.Summary{}, err
	}
	return cart.Summarize(lines), nil
}

// ProductNames is the set of product names currently in the cart.
func (s *Service) ProductNames(ctx context.Context, customerID string) (map[string]bool, error) {
	lines, err := s.store.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(lines))
	for _, l := range lines {
		names[l.ProductName] = true
	}
	return names, nil
}

func (s *Service) Clear(ctx context.Context, customerID string) (int64, error) {
	return s.store.Clear(ctx, customerID)
}
