package http

import (
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"time"

	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/repository"
	"github.com/reelcart/storefront/internal/service"
)

// templateData is the single payload type passed to every page template.
type templateData struct {
	CurrentYear     int
	Flash           string
	IsAuthenticated bool
	IsAdmin         bool
	CSRFToken       string

	// FieldErrors and Form carry validation failures back to the form so
	// the user's input survives a 422 re-render.
	FieldErrors map[string]string
	Form        url.Values

	Products    []entity.Product
	Product     *entity.Product
	Listing     *repository.ListProductsResult
	Cart        *service.CartView
	Orders      []entity.Order
	Order       *entity.Order
	CheckoutURL string
	SearchTerm  string
}

func humanDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("02 Jan 2006 at 15:04")
}

func money(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// pageRange enumerates page numbers for pagination controls.
func pageRange(last int) []int {
	if last < 1 {
		last = 1
	}
	pages := make([]int, last)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

var templateFuncs = template.FuncMap{
	"humanDate": humanDate,
	"money":     money,
	"pageRange": pageRange,
}

// newTemplateCache parses every page template against the base layout and
// partials once at startup. Pages are addressed by their base filename.
func newTemplateCache(dir string) (map[string]*template.Template, error) {
	cache := make(map[string]*template.Template)

	pages, err := filepath.Glob(filepath.Join(dir, "*.page.tmpl"))
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := filepath.Base(page)

		ts, err := template.New(name).Funcs(templateFuncs).ParseFiles(filepath.Join(dir, "base.layout.tmpl"))
		if err != nil {
			return nil, err
		}

		partials, err := filepath.Glob(filepath.Join(dir, "*.partial.tmpl"))
		if err != nil {
			return nil, err
		}
		if len(partials) > 0 {
			ts, err = ts.ParseGlob(filepath.Join(dir, "*.partial.tmpl"))
			if err != nil {
				return nil, err
			}
		}

		ts, err = ts.ParseFiles(page)
		if err != nil {
			return nil, err
		}

		cache[name] = ts
	}

	return cache, nil
}
