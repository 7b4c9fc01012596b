package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/repository"
	"github.com/reelcart/storefront/internal/service"
)

func (h *Handler) signupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup.page.tmpl", &templateData{})
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}

	params := service.SignupParams{
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirmPassword"),
		Role:            entity.Role(r.PostForm.Get("role")),
	}

	userID, fields, err := h.auth.Signup(r.Context(), params)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(fields) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "signup.page.tmpl", &templateData{
			FieldErrors: fields,
			Form:        r.PostForm,
		})
		return
	}

	// The session token is renewed on every privilege change.
	if err := h.session.RenewToken(r.Context()); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.session.Put(r.Context(), sessionKeyUserID, userID)
	h.flash(r, "Your account was created. Welcome!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.page.tmpl", &templateData{})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}

	user, err := h.auth.Login(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.render(w, r, http.StatusUnprocessableEntity, "login.page.tmpl", &templateData{
				FieldErrors: map[string]string{"generic": "invalid email or password"},
				Form:        r.PostForm,
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	if err := h.session.RenewToken(r.Context()); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.session.Put(r.Context(), sessionKeyUserID, user.ID)

	if user.IsAdmin() {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.RenewToken(r.Context()); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.session.Remove(r.Context(), sessionKeyUserID)
	h.flash(r, "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) resetRequestForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "reset.page.tmpl", &templateData{})
}

func (h *Handler) resetRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}

	err := h.auth.RequestPasswordReset(r.Context(), r.PostForm.Get("email"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.render(w, r, http.StatusUnprocessableEntity, "reset.page.tmpl", &templateData{
				FieldErrors: map[string]string{"email": "no account found for this email"},
				Form:        r.PostForm,
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.flash(r, "A password reset link has been sent to your email.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) resetPasswordForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		http.Redirect(w, r, "/reset", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "reset-password.page.tmpl", &templateData{
		Form: map[string][]string{"token": {token}},
	})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}

	token := chi.URLParam(r, "token")
	fields, err := h.auth.ResetPassword(r.Context(),
		token,
		r.PostForm.Get("password"),
		r.PostForm.Get("confirmPassword"),
	)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			h.flash(r, "This password reset link is invalid or has expired.")
			http.Redirect(w, r, "/reset", http.StatusSeeOther)
			return
		}
		h.serverError(w, r, err)
		return
	}
	if len(fields) > 0 {
		// The token rides along so the re-rendered form posts back to the
		// same reset URL.
		r.PostForm.Set("token", token)
		h.render(w, r, http.StatusUnprocessableEntity, "reset-password.page.tmpl", &templateData{
			FieldErrors: fields,
			Form:        r.PostForm,
		})
		return
	}

	h.flash(r, "Your password has been updated. Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
