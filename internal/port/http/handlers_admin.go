package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/reelcart/storefront/internal/repository"
	"github.com/reelcart/storefront/internal/service"
)

// maxUploadSize bounds product image uploads.
const maxUploadSize = 10 << 20

func (h *Handler) adminDashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "dashboard.page.tmpl", &templateData{})
}

// adminProducts lists only the acting user's own products; catalog entries
// owned by other admins are not theirs to manage.
func (h *Handler) adminProducts(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	products, err := h.catalog.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "admin-products.page.tmpl", &templateData{Products: products})
}

func (h *Handler) addProductForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "add-product.page.tmpl", &templateData{})
}

// productInput parses the multipart product form shared by create and edit.
// Malformed values that never reach the service, like a non-numeric price,
// come back as field errors for the 422 re-render.
func (h *Handler) productInput(r *http.Request) (service.ProductInput, map[string]string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return service.ProductInput{}, nil, err
	}

	fields := make(map[string]string)
	price, err := strconv.ParseFloat(r.PostForm.Get("price"), 64)
	if err != nil {
		fields["price"] = "price must be a number"
	}
	input := service.ProductInput{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		Price:       price,
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, fields, nil
		}
		return service.ProductInput{}, nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		return service.ProductInput{}, nil, err
	}
	input.ImageFilename = header.Filename
	input.ImageData = data
	return input, fields, nil
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	input, fields, err := h.productInput(r)
	if err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}

	if len(fields) == 0 {
		_, fields, err = h.catalog.CreateProduct(r.Context(), user.ID, input)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
	}
	if len(fields) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "add-product.page.tmpl", &templateData{
			FieldErrors: fields,
			Form:        r.PostForm,
		})
		return
	}

	h.flash(r, "Product added.")
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (h *Handler) editProductForm(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if !h.checkProductOwner(w, r, productID) {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "edit-product.page.tmpl", &templateData{Product: product})
}

func (h *Handler) editProduct(w http.ResponseWriter, r *http.Request) {
	input, fields, err := h.productInput(r)
	if err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}

	productID := r.PostForm.Get("productID")
	if !h.checkProductOwner(w, r, productID) {
		return
	}

	if len(fields) == 0 {
		fields, err = h.catalog.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
				return
			}
			h.serverError(w, r, err)
			return
		}
	}
	if len(fields) > 0 {
		product, prodErr := h.catalog.GetProduct(r.Context(), productID)
		if prodErr != nil {
			h.serverError(w, r, prodErr)
			return
		}
		h.render(w, r, http.StatusUnprocessableEntity, "edit-product.page.tmpl", &templateData{
			FieldErrors: fields,
			Form:        r.PostForm,
			Product:     product,
		})
		return
	}

	h.flash(r, "Product updated.")
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if !h.checkProductOwner(w, r, productID) {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), productID); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.flash(r, "Product deleted.")
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}
