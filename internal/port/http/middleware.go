package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/justinas/nosurf"
	"github.com/reelcart/storefront/internal/repository"
)

func (h *Handler) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.log.Infof("%s - %s %s %s", r.RemoteAddr, r.Proto, r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				h.serverError(w, r, fmt.Errorf("panic: %v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// noSurf wraps state-changing routes with a CSRF token check backed by a
// per-session cookie.
func noSurf(next http.Handler) http.Handler {
	csrfHandler := nosurf.New(next)
	csrfHandler.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return csrfHandler
}

// authenticate resolves the session's user ID to a live user and stores it
// on the request context. A session pointing at a deleted user is cleaned
// up and treated as anonymous.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := h.session.GetString(r.Context(), sessionKeyUserID)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.auth.GetUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				h.session.Remove(r.Context(), sessionKeyUserID)
				next.ServeHTTP(w, r)
				return
			}
			h.serverError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.isAuthenticated(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		// Pages behind authentication must not end up in shared caches.
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		if user == nil || !user.IsAdmin() {
			h.render(w, r, http.StatusForbidden, "forbidden.page.tmpl", &templateData{})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkProductOwner loads the product and verifies the acting user owns it.
// Ownership is a per-product check on the owner ID; the admin role alone
// grants nothing here. Non-owners are redirected away and false returned.
func (h *Handler) checkProductOwner(w http.ResponseWriter, r *http.Request, productID string) bool {
	user := userFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return false
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
			return false
		}
		h.serverError(w, r, err)
		return false
	}

	if product.UserID != user.ID {
		h.flash(r, "You can only manage your own products.")
		http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
		return false
	}
	return true
}
