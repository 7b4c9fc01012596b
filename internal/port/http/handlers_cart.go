package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/reelcart/storefront/internal/repository"
	"github.com/reelcart/storefront/internal/service"
)

func (h *Handler) showCart(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	cart, err := h.cart.GetCart(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "cart.page.tmpl", &templateData{Cart: cart})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}
	user := userFromContext(r.Context())
	productID := r.PostForm.Get("productID")

	err := h.cart.AddItem(r.Context(), user.ID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.flash(r, "That product is no longer available.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.flash(r, "Added to your cart.")
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}
	user := userFromContext(r.Context())

	if err := h.cart.RemoveItem(r.Context(), user.ID, r.PostForm.Get("productID")); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) checkoutPage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	session, cart, err := h.checkout.StartCheckout(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			h.flash(r, "Your cart is empty.")
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "checkout.page.tmpl", &templateData{
		Cart:        cart,
		CheckoutURL: session.URL,
	})
}

// checkoutSuccess places the order for a confirmed checkout session. The
// session ID doubles as the idempotency key, so replaying the redirect is
// harmless.
func (h *Handler) checkoutSuccess(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = r.PostFormValue("session_id")
	}

	_, err := h.checkout.PlaceOrder(r.Context(), user.ID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			http.Redirect(w, r, "/orders", http.StatusSeeOther)
			return
		}
		if errors.Is(err, service.ErrMissingCheckoutSession) {
			h.flash(r, "Your checkout session could not be confirmed. Please try again.")
			http.Redirect(w, r, "/checkout", http.StatusSeeOther)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.flash(r, "Thank you! Your order has been placed.")
	http.Redirect(w, r, "/orders", http.StatusSeeOther)
}

func (h *Handler) checkoutCancel(w http.ResponseWriter, r *http.Request) {
	h.flash(r, "Checkout was cancelled.")
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	orders, err := h.checkout.ListOrders(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "orders.page.tmpl", &templateData{Orders: orders})
}

func (h *Handler) orderInvoice(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")

	pdf, filename, err := h.invoice.GenerateInvoicePDF(r.Context(), orderID, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) || errors.Is(err, repository.ErrNotFound) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	_, _ = w.Write(pdf)
}
