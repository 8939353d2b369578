package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quickkart/marketplace/internal/config"
	"github.com/quickkart/marketplace/internal/domain/product"
	"github.com/quickkart/marketplace/internal/http/middlewares"
	"golang.org/x/sync/errgroup"
)

type CartNames interface {
	ProductNames(ctx context.Context, customerID string) (map[string]bool, error)
}

type StorefrontHandler struct {
	catalog ProductLister
	carts   CartNames
}

func NewStorefrontHandler(catalog ProductLister, carts CartNames) *StorefrontHandler {
	return &StorefrontHandler{catalog: catalog, carts: carts}
}

type storefrontItem struct {
	product.Product
	InCart bool `json:"inCart"`
}

type storefrontResponse struct {
	Items     []storefrontItem `json:"items"`
	CartCount int              `json:"cartCount"`
}

// Get loads the listing and the caller's cart concurrently; the two reads are independent.
func (h *StorefrontHandler) Get(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	var (
		items []product.Product
		names map[string]bool
	)

	g, gctx := errgroup.WithContext(cctx)

	g.Go(func() error {
		var err error
		items, err = h.catalog.ListAvailable(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		names, err = h.carts.ProductNames(gctx, actor.PrincipalID)
		return err
	})

	if err := g.Wait(); err != nil {
		respondDomainError(ctx, "storefront.get", err)
		return
	}

	out := storefrontResponse{
		Items:     make([]storefrontItem, 0, len(items)),
		CartCount: len(names),
	}

	for _, p := range items {
		out.Items = append(out.Items, storefrontItem{Product: p, InCart: names[p.Name]})
	}

	ctx.JSON(http.StatusOK, out)
}
