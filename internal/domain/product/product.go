package product

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quickkart/marketplace/internal/domain/money"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrForbidden = errors.New("product is owned by another seller")
	ErrInvalid   = errors.New("invalid product")
)

// Product is a seller-owned catalog row.
type Product struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"ownerId"`
	OwnerEmail  string      `json:"ownerEmail"`
	Name        string      `json:"name"`
	Quantity    int         `json:"quantity"`
	StoreName   string      `json:"storeName"`
	Price       money.Cents `json:"price"`
	Description string      `json:"description"`
	ImageRef    string      `json:"imageRef"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Available reports whether customers may see the product.
func (p Product) Available() bool {
	return p.Quantity > 0
}

// CreateProductRequest is bound from the multipart add-product form.
type CreateProductRequest struct {
	Name        string      `form:"name" json:"name" binding:"required,max=200"`
	Quantity    *int        `form:"quantity" json:"quantity" binding:"required,min=0,max=1000000"`
	StoreName   string      `form:"storeName" json:"storeName" binding:"omitempty,max=120"`
	Price       money.Cents `form:"price" json:"price" binding:"required,gt=0"`
	Description string      `form:"description" json:"description" binding:"required,max=2000"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=1000000"`
}

// Owner identifies the authenticated seller acting on the catalog.
type Owner struct {
	ID        string
	Email     string
	StoreName string
}

func (r CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalid
	}
	if r.Quantity == nil || *r.Quantity < 0 {
		return ErrInvalid
	}
	if r.Price <= 0 {
		return ErrInvalid
	}
	return nil
}

// NewFromCreateRequest builds the row; the store name falls back to the seller's own.
func NewFromCreateRequest(owner Owner, req CreateProductRequest, imageRef string) Product {
	now := time.Now().UTC()

	store := strings.TrimSpace(req.StoreName)
	if store == "" {
		store = owner.StoreName
	}

	qty := 0
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	return Product{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		OwnerEmail:  owner.Email,
		Name:        strings.TrimSpace(req.Name),
		Quantity:    qty,
		StoreName:   store,
		Price:       req.Price,
		Description: strings.TrimSpace(req.Description),
		ImageRef:    imageRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
