package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/platform/logger"
	"github.com/reelcart/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// pngBytes is a minimal PNG header; enough for content-type sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func newTestCatalogService(productRepo *MockProductRepository, cache *MockCatalogCache, images *MockImageStorage) CatalogService {
	var c repository.CatalogCache
	if cache != nil {
		c = cache
	}
	return NewCatalogService(productRepo, c, images, time.Hour, 30*time.Minute, logger.NopLogger{})
}

func TestListCatalogCacheHit(t *testing.T) {
	products := []entity.Product{{ID: "p1", Title: "Alpha"}}
	cached, _ := json.Marshal(products)

	productRepo := new(MockProductRepository)
	cache := new(MockCatalogCache)
	cache.On("Get", mock.Anything, "catalog:all").Return(cached, nil)

	svc := newTestCatalogService(productRepo, cache, nil)
	got, err := svc.ListCatalog(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, products, got)
	productRepo.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestListCatalogCacheMissFallsBack(t *testing.T) {
	products := []entity.Product{{ID: "p1", Title: "Alpha"}}

	productRepo := new(MockProductRepository)
	productRepo.On("ListAll", mock.Anything).Return(products, nil)

	cache := new(MockCatalogCache)
	cache.On("Get", mock.Anything, "catalog:all").Return(nil, repository.ErrNotFound)
	cache.On("Set", mock.Anything, "catalog:all", mock.Anything, time.Hour).Return(nil)

	svc := newTestCatalogService(productRepo, cache, nil)
	got, err := svc.ListCatalog(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, products, got)
	cache.AssertExpectations(t)
}

func TestListCatalogCacheErrorIsTreatedAsMiss(t *testing.T) {
	products := []entity.Product{{ID: "p1"}}

	productRepo := new(MockProductRepository)
	productRepo.On("ListAll", mock.Anything).Return(products, nil)

	cache := new(MockCatalogCache)
	cache.On("Get", mock.Anything, "catalog:all").Return(nil, errors.New("connection refused"))
	cache.On("Set", mock.Anything, "catalog:all", mock.Anything, time.Hour).Return(errors.New("connection refused"))

	svc := newTestCatalogService(productRepo, cache, nil)
	got, err := svc.ListCatalog(context.Background())

	// Cache failures never surface to the caller.
	assert.NoError(t, err)
	assert.Equal(t, products, got)
}

func TestGetProductCachesDetail(t *testing.T) {
	product := &entity.Product{ID: "p1", Title: "Alpha"}

	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", mock.Anything, "p1").Return(product, nil)

	cache := new(MockCatalogCache)
	cache.On("Get", mock.Anything, "product:p1").Return(nil, repository.ErrNotFound)
	cache.On("Set", mock.Anything, "product:p1", mock.Anything, time.Hour).Return(nil)

	svc := newTestCatalogService(productRepo, cache, nil)
	got, err := svc.GetProduct(context.Background(), "p1")

	assert.NoError(t, err)
	assert.Equal(t, product, got)
	cache.AssertExpectations(t)
}

func TestSearchUsesVersionedKey(t *testing.T) {
	result := &repository.ListProductsResult{CurrentPage: 2, PerPage: SearchPerPage}

	productRepo := new(MockProductRepository)
	productRepo.On("List", mock.Anything, repository.ListProductsParams{
		Query: "matrix", Page: 2, PerPage: SearchPerPage,
	}).Return(result, nil)

	cache := new(MockCatalogCache)
	cache.On("Version", mock.Anything).Return(int64(7), nil)
	cache.On("Get", mock.Anything, "search:v7:matrix:page:2").Return(nil, repository.ErrNotFound)
	cache.On("Set", mock.Anything, "search:v7:matrix:page:2", mock.Anything, 30*time.Minute).Return(nil)

	svc := newTestCatalogService(productRepo, cache, nil)
	got, err := svc.Search(context.Background(), "matrix", 2)

	assert.NoError(t, err)
	assert.Equal(t, result, got)
	cache.AssertExpectations(t)
}

func TestSearchWorksWithoutCache(t *testing.T) {
	result := &repository.ListProductsResult{}

	productRepo := new(MockProductRepository)
	productRepo.On("List", mock.Anything, mock.Anything).Return(result, nil)

	svc := newTestCatalogService(productRepo, nil, nil)
	got, err := svc.Search(context.Background(), "matrix", 1)

	assert.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestIndexUsesEightPerPage(t *testing.T) {
	result := &repository.ListProductsResult{}

	productRepo := new(MockProductRepository)
	productRepo.On("List", mock.Anything, repository.ListProductsParams{
		Page: 1, PerPage: IndexPerPage,
	}).Return(result, nil)

	svc := newTestCatalogService(productRepo, nil, nil)
	_, err := svc.Index(context.Background(), 0)

	assert.NoError(t, err)
	productRepo.AssertExpectations(t)
}

func TestCreateProductInvalidatesCache(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("Create", mock.Anything, mock.Anything).Return("p1", nil)

	images := new(MockImageStorage)
	images.On("Save", mock.Anything, "cover.png", pngBytes).Return("/images/abc_cover.png", nil)

	cache := new(MockCatalogCache)
	cache.On("Delete", mock.Anything, "catalog:all", "product:p1").Return(nil)
	cache.On("BumpVersion", mock.Anything).Return(nil)

	svc := newTestCatalogService(productRepo, cache, images)
	id, fields, err := svc.CreateProduct(context.Background(), "u1", ProductInput{
		Title:         "A movie",
		Description:   "desc",
		Price:         10,
		ImageFilename: "cover.png",
		ImageData:     pngBytes,
	})

	assert.NoError(t, err)
	assert.Empty(t, fields)
	assert.Equal(t, "p1", id)
	cache.AssertExpectations(t)
}

func TestCreateProductRejectsNonImage(t *testing.T) {
	productRepo := new(MockProductRepository)
	images := new(MockImageStorage)

	svc := newTestCatalogService(productRepo, nil, images)
	_, fields, err := svc.CreateProduct(context.Background(), "u1", ProductInput{
		Title:         "A movie",
		Price:         10,
		ImageFilename: "evil.png",
		ImageData:     []byte("#!/bin/sh\necho hello"),
	})

	assert.NoError(t, err)
	assert.Equal(t, "attached file is not an image", fields["image"])
	images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProductRequiresImage(t *testing.T) {
	svc := newTestCatalogService(new(MockProductRepository), nil, new(MockImageStorage))

	_, fields, err := svc.CreateProduct(context.Background(), "u1", ProductInput{
		Title: "A movie",
		Price: 10,
	})

	assert.NoError(t, err)
	assert.Contains(t, fields, "image")
}

func TestUpdateProductKeepsImageWhenNoneUploaded(t *testing.T) {
	existing := &entity.Product{ID: "p1", ImageURL: "/images/old.png"}

	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", mock.Anything, "p1").Return(existing, nil)
	productRepo.On("Update", mock.Anything, repository.UpdateProductParams{
		ProductID: "p1", Title: "New title", Description: "d", Price: 5, ImageURL: "",
	}).Return(nil)

	images := new(MockImageStorage)
	cache := new(MockCatalogCache)
	cache.On("Delete", mock.Anything, "catalog:all", "product:p1").Return(nil)
	cache.On("BumpVersion", mock.Anything).Return(nil)

	svc := newTestCatalogService(productRepo, cache, images)
	fields, err := svc.UpdateProduct(context.Background(), "p1", ProductInput{
		Title: "New title", Description: "d", Price: 5,
	})

	assert.NoError(t, err)
	assert.Empty(t, fields)
	images.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	productRepo.AssertExpectations(t)
}

func TestUpdateProductReplacesImage(t *testing.T) {
	existing := &entity.Product{ID: "p1", ImageURL: "/images/old.png"}

	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", mock.Anything, "p1").Return(existing, nil)
	productRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	images := new(MockImageStorage)
	images.On("Save", mock.Anything, "new.png", pngBytes).Return("/images/new.png", nil)
	images.On("Remove", mock.Anything, "/images/old.png").Return(nil)

	cache := new(MockCatalogCache)
	cache.On("Delete", mock.Anything, "catalog:all", "product:p1").Return(nil)
	cache.On("BumpVersion", mock.Anything).Return(nil)

	svc := newTestCatalogService(productRepo, cache, images)
	fields, err := svc.UpdateProduct(context.Background(), "p1", ProductInput{
		Title: "New title", Description: "d", Price: 5,
		ImageFilename: "new.png", ImageData: pngBytes,
	})

	assert.NoError(t, err)
	assert.Empty(t, fields)
	images.AssertExpectations(t)
}

func TestDeleteProductIsNoopWhenMissing(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	svc := newTestCatalogService(productRepo, nil, new(MockImageStorage))
	err := svc.DeleteProduct(context.Background(), "missing")

	assert.NoError(t, err)
}

func TestDeleteProductRemovesImageAndInvalidates(t *testing.T) {
	existing := &entity.Product{ID: "p1", ImageURL: "/images/old.png"}

	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", mock.Anything, "p1").Return(existing, nil)
	productRepo.On("Delete", mock.Anything, "p1").Return(nil)

	images := new(MockImageStorage)
	images.On("Remove", mock.Anything, "/images/old.png").Return(nil)

	cache := new(MockCatalogCache)
	cache.On("Delete", mock.Anything, "catalog:all", "product:p1").Return(nil)
	cache.On("BumpVersion", mock.Anything).Return(nil)

	svc := newTestCatalogService(productRepo, cache, images)
	err := svc.DeleteProduct(context.Background(), "p1")

	assert.NoError(t, err)
	images.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestInvalidationFailureDoesNotFailWrite(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("Create", mock.Anything, mock.Anything).Return("p1", nil)

	images := new(MockImageStorage)
	images.On("Save", mock.Anything, mock.Anything, mock.Anything).Return("/images/a.png", nil)

	cache := new(MockCatalogCache)
	cache.On("Delete", mock.Anything, "catalog:all", "product:p1").Return(errors.New("redis down"))
	cache.On("BumpVersion", mock.Anything).Return(errors.New("redis down"))

	svc := newTestCatalogService(productRepo, cache, images)
	id, fields, err := svc.CreateProduct(context.Background(), "u1", ProductInput{
		Title: "A movie", Price: 10,
		ImageFilename: "a.png", ImageData: pngBytes,
	})

	assert.NoError(t, err)
	assert.Empty(t, fields)
	assert.Equal(t, "p1", id)
}
