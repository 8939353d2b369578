package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quickkart/marketplace/internal/config"
	"github.com/quickkart/marketplace/internal/domain/cart"
	"github.com/quickkart/marketplace/internal/http/middlewares"
	"github.com/quickkart/marketplace/internal/receipt"
)

type CartService interface {
	IsInCart(ctx context.Context, customerID, productName string) (bool, error)
	Toggle(ctx context.Context, c cart.Customer, productID string) (cart.ToggleResult, error)
	Summary(ctx context.Context, customerID string) (cart.Summary, error)
	Clear(ctx context.Context, customerID string) (int64, error)
}

type ReceiptGenerator interface {
	Generate(ctx context.Context, customerID string) (receipt.Receipt, []byte, error)
}

type CartHandler struct {
	carts    CartService
	receipts ReceiptGenerator
}

func NewCartHandler(carts CartService, receipts ReceiptGenerator) *CartHandler {
	return &CartHandler{carts: carts, receipts: receipts}
}

func (h *CartHandler) Get(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	sum, err := h.carts.Summary(cctx, actor.PrincipalID)
	if err != nil {
		respondDomainError(ctx, "cart.summary", err)
		return
	}

	ctx.JSON(http.StatusOK, sum)
}

// Contains serves GET /cart/contains?product=NAME.
func (h *CartHandler) Contains(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	name := strings.TrimSpace(ctx.Query("product"))
	if name == "" {
		RespondBadRequest(ctx, "Invalid query parameters", gin.H{
			"fields": []FieldError{{Field: "product", Rule: "required", Message: "is required"}},
		})
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	in, err := h.carts.IsInCart(cctx, actor.PrincipalID, name)
	if err != nil {
		respondDomainError(ctx, "cart.contains", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"product": name, "inCart": in})
}

func (h *CartHandler) Toggle(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req cart.ToggleRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.carts.Toggle(cctx, cart.Customer{ID: actor.PrincipalID, Email: actor.Email}, req.ProductID)
	if err != nil {
		respondDomainError(ctx, "cart.toggle", err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}

func (h *CartHandler) Clear(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	n, err := h.carts.Clear(cctx, actor.PrincipalID)
	if err != nil {
		respondDomainError(ctx, "cart.clear", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"removed": n})
}

// Receipt renders the current cart as a PDF. The cart is left untouched.
func (h *CartHandler) Receipt(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	r, doc, err := h.receipts.Generate(cctx, actor.PrincipalID)
	if err != nil {
		respondDomainError(ctx, "cart.receipt", err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="receipt-`+r.OrderID+`.pdf"`)
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "application/pdf", doc)
}
