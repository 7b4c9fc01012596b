package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/reelcart/storefront/internal/adapter/storage"
	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/platform/logger"
	"github.com/reelcart/storefront/internal/repository"
)

const (
	IndexPerPage  = 8
	SearchPerPage = 10

	catalogAllKey    = "catalog:all"
	productKeyPrefix = "product:"
)

// allowedImageTypes is the upload whitelist. The type is sniffed from the
// file content, never trusted from the multipart header.
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

type ProductInput struct {
	Title       string
	Description string
	Price       float64

	// ImageData is the raw upload. Empty means no image was submitted,
	// which is an error on create and keeps the stored image on update.
	ImageFilename string
	ImageData     []byte
}

type CatalogService interface {
	// Index is the public landing page listing, paginated and uncached.
	Index(ctx context.Context, page int) (*repository.ListProductsResult, error)
	// ListCatalog returns the full catalog sorted by title, served from
	// cache when possible.
	ListCatalog(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
	Search(ctx context.Context, query string, page int) (*repository.ListProductsResult, error)

	ListByOwner(ctx context.Context, userID string) ([]entity.Product, error)
	CreateProduct(ctx context.Context, userID string, input ProductInput) (string, map[string]string, error)
	UpdateProduct(ctx context.Context, productID string, input ProductInput) (map[string]string, error)
	DeleteProduct(ctx context.Context, productID string) error
}

type catalogService struct {
	productRepo repository.ProductRepository
	cache       repository.CatalogCache
	images      storage.ImageStorage
	listingTTL  time.Duration
	searchTTL   time.Duration
	log         logger.Logger
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	cache repository.CatalogCache,
	images storage.ImageStorage,
	listingTTL, searchTTL time.Duration,
	log logger.Logger,
) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		cache:       cache,
		images:      images,
		listingTTL:  listingTTL,
		searchTTL:   searchTTL,
		log:         log,
	}
}

func (s *catalogService) Index(ctx context.Context, page int) (*repository.ListProductsResult, error) {
	if page < 1 {
		page = 1
	}
	return s.productRepo.List(ctx, repository.ListProductsParams{Page: page, PerPage: IndexPerPage})
}

func (s *catalogService) ListCatalog(ctx context.Context) ([]entity.Product, error) {
	if cached := s.cacheGet(ctx, catalogAllKey); cached != nil {
		var products []entity.Product
		if err := json.Unmarshal(cached, &products); err == nil {
			return products, nil
		}
		s.log.Warnf("Discarding undecodable cache entry %s", catalogAllKey)
	}

	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, catalogAllKey, products, s.listingTTL)
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	key := productKeyPrefix + productID
	if cached := s.cacheGet(ctx, key); cached != nil {
		var product entity.Product
		if err := json.Unmarshal(cached, &product); err == nil {
			return &product, nil
		}
		s.log.Warnf("Discarding undecodable cache entry %s", key)
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, product, s.listingTTL)
	return product, nil
}

func (s *catalogService) Search(ctx context.Context, query string, page int) (*repository.ListProductsResult, error) {
	if page < 1 {
		page = 1
	}

	key := s.searchKey(ctx, query, page)
	if key != "" {
		if cached := s.cacheGet(ctx, key); cached != nil {
			var result repository.ListProductsResult
			if err := json.Unmarshal(cached, &result); err == nil {
				return &result, nil
			}
			s.log.Warnf("Discarding undecodable cache entry %s", key)
		}
	}

	result, err := s.productRepo.List(ctx, repository.ListProductsParams{
		Query:   query,
		Page:    page,
		PerPage: SearchPerPage,
	})
	if err != nil {
		return nil, err
	}
	if key != "" {
		s.cacheSet(ctx, key, result, s.searchTTL)
	}
	return result, nil
}

func (s *catalogService) ListByOwner(ctx context.Context, userID string) ([]entity.Product, error) {
	return s.productRepo.ListByOwner(ctx, userID)
}

func (s *catalogService) CreateProduct(ctx context.Context, userID string, input ProductInput) (string, map[string]string, error) {
	fields := entity.ValidateProductInput(input.Title, input.Description, input.Price)
	if len(input.ImageData) == 0 {
		fields["image"] = "product image is required"
	} else if !isAllowedImage(input.ImageData) {
		fields["image"] = "attached file is not an image"
	}
	if len(fields) > 0 {
		return "", fields, nil
	}

	imageURL, err := s.images.Save(ctx, input.ImageFilename, input.ImageData)
	if err != nil {
		return "", nil, fmt.Errorf("failed to store product image: %w", err)
	}

	productID, err := s.productRepo.Create(ctx, repository.CreateProductParams{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    imageURL,
		UserID:      userID,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx, productID)
	s.log.Infof("Product created: %s", productID)
	return productID, nil, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, productID string, input ProductInput) (map[string]string, error) {
	fields := entity.ValidateProductInput(input.Title, input.Description, input.Price)
	if len(input.ImageData) > 0 && !isAllowedImage(input.ImageData) {
		fields["image"] = "attached file is not an image"
	}
	if len(fields) > 0 {
		return fields, nil
	}

	existing, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	// The old image is removed only after the replacement is stored, so a
	// failed upload never leaves the product without an image.
	var imageURL string
	if len(input.ImageData) > 0 {
		imageURL, err = s.images.Save(ctx, input.ImageFilename, input.ImageData)
		if err != nil {
			return nil, fmt.Errorf("failed to store product image: %w", err)
		}
	}

	err = s.productRepo.Update(ctx, repository.UpdateProductParams{
		ProductID:   productID,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    imageURL,
	})
	if err != nil {
		return nil, err
	}

	if imageURL != "" && existing.ImageURL != "" {
		if err := s.images.Remove(ctx, existing.ImageURL); err != nil {
			s.log.Warnf("Failed to remove replaced image for product %s: %v", productID, err)
		}
	}

	s.invalidate(ctx, productID)
	return nil, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	existing, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	err = s.productRepo.Delete(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if existing.ImageURL != "" {
		if err := s.images.Remove(ctx, existing.ImageURL); err != nil {
			s.log.Warnf("Failed to remove image for deleted product %s: %v", productID, err)
		}
	}

	s.invalidate(ctx, productID)
	s.log.Infof("Product deleted: %s", productID)
	return nil
}

// invalidate is the write-side half of the caching policy: listing and
// detail entries are deleted synchronously, and the catalog version bump
// orphans every search entry built against the previous catalog. Cache
// failures are logged and swallowed; the document store already holds the
// new state.
func (s *catalogService) invalidate(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, catalogAllKey, productKeyPrefix+productID); err != nil {
		s.log.Warnf("Failed to invalidate catalog cache: %v", err)
	}
	if err := s.cache.BumpVersion(ctx); err != nil {
		s.log.Warnf("Failed to bump catalog cache version: %v", err)
	}
}

// searchKey returns the versioned cache key for a search page, or "" when
// the cache is unavailable and caching should be skipped.
func (s *catalogService) searchKey(ctx context.Context, query string, page int) string {
	if s.cache == nil {
		return ""
	}
	version, err := s.cache.Version(ctx)
	if err != nil {
		s.log.Warnf("Failed to read catalog cache version: %v", err)
		return ""
	}
	return fmt.Sprintf("search:v%d:%s:page:%d", version, query, page)
}

func (s *catalogService) cacheGet(ctx context.Context, key string) []byte {
	if s.cache == nil {
		return nil
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warnf("Cache read failed for key %s: %v", key, err)
		}
		return nil
	}
	return value
}

func (s *catalogService) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warnf("Failed to marshal cache entry %s: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.log.Warnf("Cache write failed for key %s: %v", key, err)
	}
}

func isAllowedImage(data []byte) bool {
	return allowedImageTypes[http.DetectContentType(data)]
}
