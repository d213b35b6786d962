// internal/server/router.go
//
// Root handler.
//
// Context
// -------
// Middleware order matters:
//
//  1. RequestID, RealIP             – chi stock middleware.
//  2. AccessLog                      – one zap line per request.
//  3. Recoverer                      – panics become a logged 500.
//  4. requestinfo.Enrich             – host, UA, geo into the context.
//  5. ForceHTTPS                     – optional 308 to HTTPS.
//  6. Security                       – response hardening headers.
//  7. annotate.Middleware            – X-Domain-Name + DomainFeature.
//
// AccessLog wraps Recoverer so a panicking request still gets its access
// line.  ForceHTTPS answers before Security and annotation run, so a
// redirect carries neither the hardening headers nor X-Domain-Name; the
// follow-up HTTPS request gets both.
//
// Operational endpoints (/metrics, /healthz, /readyz) are mounted beside
// the site pages and pass through the same chain, so they are annotated
// too.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/hostview/internal/annotate"
	"github.com/yanizio/hostview/internal/home"
	"github.com/yanizio/hostview/internal/middleware"
	"github.com/yanizio/hostview/internal/requestinfo"
)

// Options carries what the router needs from config and main.
type Options struct {
	ForceHTTPS bool
	Log        *zap.Logger
	Views      home.Renderer
}

// Router builds the full handler tree.
func Router(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = zap.L()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)
	r.Use(requestinfo.Enrich)
	r.Use(middleware.ForceHTTPS(opts.ForceHTTPS))
	r.Use(middleware.Security)
	r.Use(annotate.Middleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Mount("/", home.Routes(opts.Views))
	return r
}
