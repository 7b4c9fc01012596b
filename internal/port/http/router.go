package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig points the router at the on-disk asset directories.
type RouterConfig struct {
	StaticDir string
	ImageDir  string
}

func (h *Handler) Routes(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(h.recoverPanic)
	r.Use(h.logRequest)
	r.Use(secureHeaders)

	// Session state, CSRF protection and user resolution wrap every
	// dynamic route.
	r.Group(func(r chi.Router) {
		r.Use(h.session.LoadAndSave)
		r.Use(noSurf)
		r.Use(h.authenticate)

		r.Get("/", h.home)
		r.Get("/products", h.listProducts)
		r.Get("/products/{productID}", h.showProduct)
		r.Get("/search", h.search)

		r.Get("/signup", h.signupForm)
		r.Post("/signup", h.signup)
		r.Get("/login", h.loginForm)
		r.Post("/login", h.login)
		r.Get("/reset", h.resetRequestForm)
		r.Post("/reset", h.resetRequest)
		r.Get("/resetPassword/{token}", h.resetPasswordForm)
		r.Post("/resetPassword/{token}", h.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Post("/logout", h.logout)

			r.Get("/cart", h.showCart)
			r.Post("/cart", h.addToCart)
			r.Post("/cart-delete-item", h.removeFromCart)

			r.Get("/checkout", h.checkoutPage)
			r.Get("/checkout/success", h.checkoutSuccess)
			r.Get("/checkout/cancel", h.checkoutCancel)
			r.Post("/create-order", h.checkoutSuccess)

			r.Get("/orders", h.listOrders)
			r.Get("/orders/{orderID}", h.orderInvoice)

			r.Get("/admin/products", h.adminProducts)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)

				r.Get("/admin/dashboard", h.adminDashboard)
				r.Get("/admin/add-product", h.addProductForm)
				r.Post("/admin/add-product", h.addProduct)
				r.Get("/admin/edit-product/{productID}", h.editProductForm)
				r.Post("/admin/edit-product", h.editProduct)
				r.Post("/admin/product/{productID}", h.deleteProduct)
				r.Delete("/admin/product/{productID}", h.deleteProduct)
			})
		})
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.ImageDir))))

	return r
}
