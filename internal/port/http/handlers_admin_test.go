package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestHandler(t *testing.T, catalog *MockCatalogService) *Handler {
	t.Helper()

	templates, err := newTemplateCache("../../../ui/html")
	if err != nil {
		t.Fatalf("failed to build template cache: %v", err)
	}
	return &Handler{
		catalog:   catalog,
		session:   scs.New(),
		templates: templates,
		log:       logger.NopLogger{},
	}
}

// multipartForm builds a product form body the way a browser submits it.
func multipartForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("failed to write form field %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func asUser(r *http.Request, user *entity.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), contextKeyUser, user))
}

func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serve runs a single handler inside the session middleware, which the flash
// and render helpers depend on.
func serve(h *Handler, handler http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	h.session.LoadAndSave(handler).ServeHTTP(w, r)
}

func TestProductInputRejectsNonNumericPrice(t *testing.T) {
	body, contentType := multipartForm(t, map[string]string{
		"title":       "Alpha",
		"description": "first",
		"price":       "abc",
	})
	r := httptest.NewRequest(http.MethodPost, "/admin/add-product", body)
	r.Header.Set("Content-Type", contentType)

	input, fields, err := (&Handler{}).productInput(r)

	assert.NoError(t, err)
	assert.Equal(t, "price must be a number", fields["price"])
	assert.Zero(t, input.Price)
}

func TestProductInputParsesValidPrice(t *testing.T) {
	body, contentType := multipartForm(t, map[string]string{
		"title":       "Alpha",
		"description": "first",
		"price":       "19.99",
	})
	r := httptest.NewRequest(http.MethodPost, "/admin/add-product", body)
	r.Header.Set("Content-Type", contentType)

	input, fields, err := (&Handler{}).productInput(r)

	assert.NoError(t, err)
	assert.Empty(t, fields)
	assert.Equal(t, "Alpha", input.Title)
	assert.Equal(t, 19.99, input.Price)
}

func TestAddProductNonNumericPriceRerendersForm(t *testing.T) {
	catalog := new(MockCatalogService)
	h := newTestHandler(t, catalog)

	body, contentType := multipartForm(t, map[string]string{
		"title":       "Alpha",
		"description": "first",
		"price":       "abc",
	})
	r := httptest.NewRequest(http.MethodPost, "/admin/add-product", body)
	r.Header.Set("Content-Type", contentType)
	r = asUser(r, &entity.User{ID: "u1", Role: entity.RoleAdmin})

	w := httptest.NewRecorder()
	serve(h, h.addProduct, w, r)

	// The form comes back with a field error; nothing reaches the catalog.
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	catalog.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditProductRejectsNonOwner(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("GetProduct", mock.Anything, "p1").
		Return(&entity.Product{ID: "p1", Title: "Alpha", UserID: "owner"}, nil)
	h := newTestHandler(t, catalog)

	body, contentType := multipartForm(t, map[string]string{
		"productID":   "p1",
		"title":       "Hijacked",
		"description": "changed",
		"price":       "1",
	})
	r := httptest.NewRequest(http.MethodPost, "/admin/edit-product", body)
	r.Header.Set("Content-Type", contentType)
	r = asUser(r, &entity.User{ID: "intruder", Role: entity.RoleAdmin})

	w := httptest.NewRecorder()
	serve(h, h.editProduct, w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/products", w.Header().Get("Location"))
	catalog.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteProductRejectsNonOwner(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("GetProduct", mock.Anything, "p1").
		Return(&entity.Product{ID: "p1", Title: "Alpha", UserID: "owner"}, nil)
	h := newTestHandler(t, catalog)

	r := httptest.NewRequest(http.MethodPost, "/admin/product/p1", nil)
	r = withRouteParam(r, "productID", "p1")
	r = asUser(r, &entity.User{ID: "intruder", Role: entity.RoleAdmin})

	w := httptest.NewRecorder()
	serve(h, h.deleteProduct, w, r)

	// Admin role alone is not enough; the product stays untouched.
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/products", w.Header().Get("Location"))
	catalog.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
}

func TestDeleteProductAllowsOwner(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("GetProduct", mock.Anything, "p1").
		Return(&entity.Product{ID: "p1", Title: "Alpha", UserID: "u1"}, nil)
	catalog.On("DeleteProduct", mock.Anything, "p1").Return(nil)
	h := newTestHandler(t, catalog)

	r := httptest.NewRequest(http.MethodPost, "/admin/product/p1", nil)
	r = withRouteParam(r, "productID", "p1")
	r = asUser(r, &entity.User{ID: "u1", Role: entity.RoleAdmin})

	w := httptest.NewRecorder()
	serve(h, h.deleteProduct, w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	catalog.AssertExpectations(t)
}
