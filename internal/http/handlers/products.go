package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quickkart/marketplace/internal/catalog"
	"github.com/quickkart/marketplace/internal/config"
	"github.com/quickkart/marketplace/internal/domain/product"
	"github.com/quickkart/marketplace/internal/http/middlewares"
)

type ProductLister interface {
	ListAvailable(ctx context.Context) ([]product.Product, error)
	Get(ctx context.Context, id string) (product.Product, error)
}

type SellerCatalog interface {
	ListBySeller(ctx context.Context, ownerID string) ([]product.Product, error)
	AddProduct(ctx context.Context, owner product.Owner, req product.CreateProductRequest, img *catalog.Image) (product.Product, error)
	DeleteProduct(ctx context.Context, id, ownerID string) error
	UpdateQuantity(ctx context.Context, id, ownerID string, quantity int) (product.Product, error)
}

// productIDParam rejects ids that cannot name a product before they reach the store.
func productIDParam(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		RespondNotFound(ctx, "Product not found")
		return "", false
	}
	return id, true
}

type ProductsHandler struct {
	catalog ProductLister
}

func NewProductsHandler(catalog ProductLister) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

type productListResponse struct {
	Items []product.Product `json:"items"`
	Count int               `json:"count"`
}

// ListAvailable serves GET /products: in-stock products in insertion order.
func (h *ProductsHandler) ListAvailable(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.catalog.ListAvailable(cctx)
	if err != nil {
		respondDomainError(ctx, "products.list_available", err)
		return
	}

	respondProducts(ctx, publicListing, productListResponse{Items: items, Count: len(items)})
}

func (h *ProductsHandler) GetProduct(ctx *gin.Context) {
	id, ok := productIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	p, err := h.catalog.Get(cctx, id)
	if err != nil {
		respondDomainError(ctx, "products.get", err)
		return
	}

	respondProducts(ctx, publicListing, p)
}

type SellerProductsHandler struct {
	catalog        SellerCatalog
	accounts       AccountService
	maxUploadBytes int64
}

func NewSellerProductsHandler(catalog SellerCatalog, accounts AccountService, maxUploadBytes int64) *SellerProductsHandler {
	return &SellerProductsHandler{catalog: catalog, accounts: accounts, maxUploadBytes: maxUploadBytes}
}

func (h *SellerProductsHandler) List(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.catalog.ListBySeller(cctx, actor.PrincipalID)
	if err != nil {
		respondDomainError(ctx, "seller_products.list", err)
		return
	}

	respondProducts(ctx, sellerListing(actor.PrincipalID), productListResponse{Items: items, Count: len(items)})
}

// Create handles the multipart add-product form. The image part is optional.
func (h *SellerProductsHandler) Create(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req product.CreateProductRequest
	if !BindForm(ctx, &req) {
		return
	}

	img, ok := h.readImage(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 30*time.Second)
	defer cancel()

	seller, err := h.accounts.Get(cctx, actor.PrincipalID)
	if err != nil {
		respondDomainError(ctx, "seller_products.create.load_seller", err)
		return
	}

	owner := product.Owner{ID: seller.ID, Email: seller.Email}
	if seller.StoreName != nil {
		owner.StoreName = *seller.StoreName
	}

	p, err := h.catalog.AddProduct(cctx, owner, req, img)
	if err != nil {
		respondDomainError(ctx, "seller_products.create", err)
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *SellerProductsHandler) readImage(ctx *gin.Context) (*catalog.Image, bool) {
	fh, err := ctx.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		RespondBadRequest(ctx, "Invalid image upload", gin.H{"reason": err.Error()})
		return nil, false
	}

	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "image_too_large", "Image is too large", nil)
		return nil, false
	}

	f, err := fh.Open()
	if err != nil {
		RespondBadRequest(ctx, "Invalid image upload", gin.H{"reason": err.Error()})
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		RespondBadRequest(ctx, "Invalid image upload", gin.H{"reason": err.Error()})
		return nil, false
	}

	return &catalog.Image{Filename: fh.Filename, Data: data}, true
}

func (h *SellerProductsHandler) Delete(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id, ok := productIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.catalog.DeleteProduct(cctx, id, actor.PrincipalID); err != nil {
		respondDomainError(ctx, "seller_products.delete", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// UpdateQuantity restocks a product or marks it sold out.
func (h *SellerProductsHandler) UpdateQuantity(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id, ok := productIDParam(ctx)
	if !ok {
		return
	}

	var req product.UpdateQuantityRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.catalog.UpdateQuantity(cctx, id, actor.PrincipalID, *req.Quantity)
	if err != nil {
		respondDomainError(ctx, "seller_products.update_quantity", err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}
