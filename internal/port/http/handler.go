package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/justinas/nosurf"
	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/platform/logger"
	"github.com/reelcart/storefront/internal/service"
)

// Session keys. The user ID is the only authority; role and email are
// re-read from the database on every request.
const (
	sessionKeyUserID = "authenticatedUserID"
	sessionKeyFlash  = "flash"
)

type contextKey string

const contextKeyUser = contextKey("user")

// Handler owns the HTTP surface: routing, sessions, templates and the
// translation between forms and service calls.
type Handler struct {
	auth     service.AuthService
	catalog  service.CatalogService
	cart     service.CartService
	checkout service.CheckoutService
	invoice  service.InvoiceService

	session   *scs.SessionManager
	templates map[string]*template.Template
	log       logger.Logger
}

func NewHandler(
	auth service.AuthService,
	catalog service.CatalogService,
	cart service.CartService,
	checkout service.CheckoutService,
	invoice service.InvoiceService,
	session *scs.SessionManager,
	templateDir string,
	log logger.Logger,
) (*Handler, error) {
	templates, err := newTemplateCache(templateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to build template cache: %w", err)
	}
	return &Handler{
		auth:      auth,
		catalog:   catalog,
		cart:      cart,
		checkout:  checkout,
		invoice:   invoice,
		session:   session,
		templates: templates,
		log:       log,
	}, nil
}

// userFromContext returns the authenticated user loaded by the authenticate
// middleware, or nil for anonymous requests.
func userFromContext(ctx context.Context) *entity.User {
	user, ok := ctx.Value(contextKeyUser).(*entity.User)
	if !ok {
		return nil
	}
	return user
}

func (h *Handler) isAuthenticated(r *http.Request) bool {
	return userFromContext(r.Context()) != nil
}

func (h *Handler) addDefaultData(td *templateData, r *http.Request) *templateData {
	if td == nil {
		td = &templateData{}
	}
	td.CurrentYear = time.Now().Year()
	td.CSRFToken = nosurf.Token(r)
	td.Flash = h.session.PopString(r.Context(), sessionKeyFlash)

	if user := userFromContext(r.Context()); user != nil {
		td.IsAuthenticated = true
		td.IsAdmin = user.IsAdmin()
	}
	return td
}

// render writes a page through the template cache. The template executes
// into a buffer first so a rendering failure becomes a clean 500 instead of
// a half-written page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, td *templateData) {
	ts, ok := h.templates[page]
	if !ok {
		h.serverError(w, r, fmt.Errorf("template %s does not exist", page))
		return
	}

	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, "base", h.addDefaultData(td, r)); err != nil {
		h.serverError(w, r, err)
		return
	}

	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Errorf("Server error handling %s %s: %v", r.Method, r.URL.Path, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) clientError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

func (h *Handler) flash(r *http.Request, message string) {
	h.session.Put(r.Context(), sessionKeyFlash, message)
}
