// internal/home/home.go
//
// Home pages.
//
// Context
// -------
// The only "controller" in hostview.  Every page is a view in the Home
// group, so each site can override it under Views/<segment>/Home/ or
// Views/<segment>/Shared/, or inherit the global Views/Shared/ copy.
//
//	GET /         → Home/Index
//	GET /privacy  → Home/Privacy
//	GET /error    → Home/Error
//
// Failures render Home/Error with status 500.  If even that view is
// missing the response falls back to plain text.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package home

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/hostview/internal/view"
)

// Group is the view group every page in this package resolves under.
const Group = "Home"

// Renderer is the slice of *view.Engine the handlers need.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, group, name string, model any) error
}

// Routes mounts the pages on a fresh chi router.
func Routes(rv Renderer) chi.Router {
	r := chi.NewRouter()
	r.Get("/", page(rv, "Index"))
	r.Get("/privacy", page(rv, "Privacy"))
	r.Get("/error", func(w http.ResponseWriter, req *http.Request) {
		renderError(rv, w, req)
	})
	return r
}

func page(rv Renderer, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := rv.Render(w, r, Group, name, nil)
		if err == nil {
			return
		}
		if errors.Is(err, view.ErrNotFound) {
			zap.L().Warn("view missing", zap.String("view", name), zap.Error(err))
		} else {
			zap.L().Error("render failed", zap.String("view", name), zap.Error(err))
		}
		renderError(rv, w, r)
	}
}

// renderError writes the Error view with status 500.  Render buffers its
// output, so nothing has been written yet when we get here.
func renderError(rv Renderer, w http.ResponseWriter, r *http.Request) {
	rec := &deferredStatus{ResponseWriter: w, status: http.StatusInternalServerError}
	if err := rv.Render(rec, r, Group, "Error", nil); err != nil {
		zap.L().Error("error view failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// deferredStatus forces status on the first Write so Render's own
// implicit 200 becomes a 500.
type deferredStatus struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (d *deferredStatus) WriteHeader(int) {
	if !d.wrote {
		d.wrote = true
		d.ResponseWriter.WriteHeader(d.status)
	}
}

func (d *deferredStatus) Write(b []byte) (int, error) {
	d.WriteHeader(d.status)
	return d.ResponseWriter.Write(b)
}
