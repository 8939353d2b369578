package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickkart/marketplace/internal/catalog"
	"github.com/quickkart/marketplace/internal/domain/cart"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/domain/product"
	"github.com/quickkart/marketplace/internal/objectstore"
)

// respondDomainError maps service errors onto the error envelope.
// Anything unrecognised is treated as the store being unavailable.
func respondDomainError(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, principal.ErrDuplicateEmail):
		RespondConflict(ctx, "email_taken", "Email is already in use.")
	case errors.Is(err, principal.ErrStoreNameRequired),
		errors.Is(err, principal.ErrStoreNameForbidden),
		errors.Is(err, product.ErrInvalid):
		RespondBadRequest(ctx, err.Error(), nil)
	case errors.Is(err, product.ErrNotFound):
		RespondNotFound(ctx, "Product not found")
	case errors.Is(err, principal.ErrNotFound):
		RespondNotFound(ctx, "Account not found")
	case errors.Is(err, product.ErrForbidden):
		RespondForbidden(ctx, "You can only change your own products")
	case errors.Is(err, cart.ErrProductUnavailable):
		RespondConflict(ctx, "product_unavailable", "Product is out of stock")
	case errors.Is(err, objectstore.ErrNotImage), errors.Is(err, objectstore.ErrEmpty):
		RespondError(ctx, http.StatusUnsupportedMediaType, "unsupported_media_type", "Image must be a JPEG, PNG, GIF, WebP, AVIF or BMP file", nil)
	case errors.Is(err, catalog.ErrImageTooLarge):
		RespondError(ctx, http.StatusRequestEntityTooLarge, "image_too_large", "Image is too large", nil)
	case errors.Is(err, objectstore.ErrUploadFailed), errors.Is(err, objectstore.ErrExists):
		slog.ErrorContext(ctx.Request.Context(), "upload_failed", "op", op, "err", err)
		RespondUploadFailed(ctx, "Could not upload image")
	default:
		slog.ErrorContext(ctx.Request.Context(), "store_unavailable", "op", op, "err", err)
		RespondUnavailable(ctx, "Service temporarily unavailable, please retry")
	}
}
