// Package catalog manages seller products and the public listing.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quickkart/marketplace/internal/cache"
	"github.com/quickkart/marketplace/internal/domain/product"
	"github.com/quickkart/marketplace/internal/objectstore"
	"github.com/quickkart/marketplace/internal/observability"
	"github.com/quickkart/marketplace/internal/utils"
)

var ErrImageTooLarge = errors.New("image exceeds the upload limit")

type Store interface {
	Create(ctx context.Context, p product.Product) (product.Product, error)
	ListAvailable(ctx context.Context) ([]product.Product, error)
	ListBySeller(ctx context.Context, ownerID string) ([]product.Product, error)
	GetByID(ctx context.Context, id string) (product.Product, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
	UpdateQuantity(ctx context.Context, id, ownerID string, quantity int) (product.Product, error)
}

// Image is an uploaded file as received from the client.
type Image struct {
	Filename string
	Data     []byte
}

type Service struct {
	store         Store
	images        objectstore.Store
	cache         *cache.Cache
	prom          *observability.Prom
	maxImageBytes int64
}

type Options struct {
	Cache         *cache.Cache
	Prom          *observability.Prom
	MaxImageBytes int64
}

func NewService(store Store, images objectstore.Store, opts Options) *Service {
	c := opts.Cache
	if c == nil {
		c = cache.New(0)
	}

	return &Service{
		store:         store,
		images:        images,
		cache:         c,
		prom:          opts.Prom,
		maxImageBytes: opts.MaxImageBytes,
	}
}

// ListAvailable returns every product with quantity > 0 in insertion order.
func (s *Service) ListAvailable(ctx context.Context) ([]product.Product, error) {
	return s.cachedListing(utils.BuildAvailableProductsCacheKey(), func() ([]product.Product, error) {
		return s.store.ListAvailable(ctx)
	})
}

// ListBySeller returns the seller's products whatever their quantity.
func (s *Service) ListBySeller(ctx context.Context, ownerID string) ([]product.Product, error) {
	return s.cachedListing(utils.BuildSellerProductsCacheKey(ownerID), func() ([]product.Product, error) {
		return s.store.ListBySeller(ctx, ownerID)
	})
}

// cachedListing serves key from the cache or loads it. A load that overlapped
// an invalidation is returned to the caller but not cached.
func (s *Service) cachedListing(key string, load func() ([]product.Product, error)) ([]product.Product, error) {
	items, gen, ok := s.cache.Lookup(key)
	if ok {
		return items, nil
	}

	items, err := load()
	if err != nil {
		return nil, err
	}

	s.cache.Put(key, gen, items)
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (product.Product, error) {
	return s.store.GetByID(ctx, id)
}

// AddProduct uploads the optional image and then inserts the product.
// A failed upload aborts before any row is written; a failed insert
// removes the uploaded object again.
func (s *Service) AddProduct(ctx context.Context, owner product.Owner, req product.CreateProductRequest, img *Image) (product.Product, error) {
	if err := req.Validate(); err != nil {
		return product.Product{}, err
	}

	var uploaded *objectstore.Object

	if img != nil {
		obj, err := s.upload(ctx, img)
		if err != nil {
			return product.Product{}, err
		}
		uploaded = &obj
	}

	imageRef := ""
	if uploaded != nil {
		imageRef = uploaded.URL
	}

	p, err := s.store.Create(ctx, product.NewFromCreateRequest(owner, req, imageRef))
	if err != nil {
		if uploaded != nil {
			if derr := s.images.Delete(ctx, uploaded.Key); derr != nil {
				slog.ErrorContext(ctx, "orphaned_image_cleanup_failed", "key", uploaded.Key, "err", derr)
			}
		}
		return product.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.invalidate(owner.ID)
	return p, nil
}

func (s *Service) upload(ctx context.Context, img *Image) (objectstore.Object, error) {
	if s.maxImageBytes > 0 && int64(len(img.Data)) > s.maxImageBytes {
		s.prom.IncImageUpload("too_large")
		return objectstore.Object{}, ErrImageTooLarge
	}

	contentType, err := objectstore.DetectImage(img.Data)
	if err != nil {
		s.prom.IncImageUpload("rejected")
		return objectstore.Object{}, err
	}

	obj, err := s.images.Put(ctx, objectstore.SanitizeKey(img.Filename), contentType, img.Data)
	if err != nil {
		s.prom.IncImageUpload("failed")
		slog.ErrorContext(ctx, "image_upload_failed", "filename", img.Filename, "err", err)

		if errors.Is(err, objectstore.ErrUploadFailed) {
			return objectstore.Object{}, err
		}
		return objectstore.Object{}, errors.Join(objectstore.ErrUploadFailed, err)
	}

	s.prom.IncImageUpload("ok")
	return obj, nil
}

// DeleteProduct removes a product owned by ownerID. Cart lines keep their snapshot.
func (s *Service) DeleteProduct(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteOwned(ctx, id, ownerID); err != nil {
		return err
	}

	s.invalidate(ownerID)
	return nil
}

// UpdateQuantity restocks or sells out a product; quantity 0 hides it from the listing.
func (s *Service) UpdateQuantity(ctx context.Context, id, ownerID string, quantity int) (product.Product, error) {
	if quantity < 0 {
		return product.Product{}, product.ErrInvalid
	}

	p, err := s.store.UpdateQuantity(ctx, id, ownerID, quantity)
	if err != nil {
		return product.Product{}, err
	}

	s.invalidate(ownerID)
	return p, nil
}

func (s *Service) invalidate(ownerID string) {
	s.cache.Invalidate(utils.BuildAvailableProductsCacheKey(), utils.BuildSellerProductsCacheKey(ownerID))
}
