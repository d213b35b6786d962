// internal/view/render.go
//
// Central view engine: location expansion, file lookup, layout wrapping,
// func-map injection, and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - Find           – first existing file for (group, name) on this host.
//   - Render         – render a view inside the layout to w.
//   - RenderToString – same, returned as template.HTML (e-mails, tests).
//
// Lookup
// ------
// Every lookup builds a fresh LocationContext, lets the expander populate
// it, then asks the expander for the patterns to search.  Without an
// expander the engine searches DefaultLocations.  With HostExpander the
// order is site group → site shared → global shared (see locations.go).
// A render performs one lookup for the view and one for the layout.
//
// Templates
// ---------
// A view defines its body with {{ define "content" }}.  The layout
// (`_Layout.html` by default) pulls it in with {{ template "content" . }}.
// When no layout file exists the view's "content" block is executed on
// its own.  Templates receive a *Page; helpers take `.Ctx`.
//
// Caching
// -------
// Only parsed template sets are cached, keyed by the concrete file pair.
// Search patterns and lookup results are recomputed on every request.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/hostview/internal/annotate"
	"github.com/yanizio/hostview/internal/cache"
	"github.com/yanizio/hostview/internal/metrics"
	"github.com/yanizio/hostview/internal/requestinfo"
)

// ErrNotFound is wrapped by every lookup that exhausts its candidates.
var ErrNotFound = errors.New("view not found")

// contentBlock is the template a view must define.
const contentBlock = "content"

//
// engine
//

// Options configures an Engine.
type Options struct {
	FS        fs.FS            // tree containing Views/…
	Expander  LocationExpander // nil searches DefaultLocations
	Layout    string           // layout view name; "" disables layouts
	CacheSize int              // parsed-set LRU capacity; 0 disables it
}

// Engine is safe for concurrent use.
type Engine struct {
	fsys     fs.FS
	expander LocationExpander
	layout   string

	sets *cache.LRU[string, *template.Template]
	sfg  singleflight.Group
}

// New builds an Engine from opts.
func New(opts Options) *Engine {
	e := &Engine{
		fsys:     opts.FS,
		expander: opts.Expander,
		layout:   opts.Layout,
	}
	if opts.CacheSize > 0 {
		e.sets = cache.New[string, *template.Template](opts.CacheSize)
	}
	return e
}

// Context is the per-render view of the request handed to templates.
type Context struct {
	Request   *http.Request
	Host      string
	Segment   string
	Group     string
	Name      string
	Feature   string              // ?feature= as captured by the expander
	Domain    annotate.Annotation // zero value when the middleware did not run
	Info      *requestinfo.RequestInfo
	RequestID string
}

// Page is the root value every template executes against.
type Page struct {
	Ctx   *Context
	Model any
}

//
// public helpers
//

// Find returns the FS path of the first candidate that exists for
// (group, name) on the request's host.
func (e *Engine) Find(r *http.Request, group, name string) (string, error) {
	p, _, err := e.find(r, group, name)
	return p, err
}

// Render executes the view inside the layout and writes it to w.  Output
// is buffered so a template error never leaves a half-written page.
func (e *Engine) Render(w http.ResponseWriter, r *http.Request, group, name string, model any) error {
	var buf bytes.Buffer
	if err := e.render(&buf, r, group, name, model); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// RenderToString mirrors Render but returns the HTML.
func (e *Engine) RenderToString(r *http.Request, group, name string, model any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := e.render(&buf, r, group, name, model); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

//
// internal: lookup
//

// find resolves a required view; a miss is counted and wrapped in
// ErrNotFound with every searched path.
func (e *Engine) find(r *http.Request, group, name string) (string, *LocationContext, error) {
	p, lc, searched := e.lookup(r, group, name)
	if p != "" {
		return p, lc, nil
	}
	metrics.ViewNotFound.Inc()
	return "", lc, fmt.Errorf("%w: %q for host %q (searched %s)",
		ErrNotFound, name, lc.Host, strings.Join(searched, ", "))
}

// lookup runs one expander pass and checks each candidate in order.  It
// returns "" and the searched list when nothing exists.
func (e *Engine) lookup(r *http.Request, group, name string) (string, *LocationContext, []string) {
	lc := &LocationContext{
		Request: r,
		Host:    requestinfo.Hostname(r),
		Group:   group,
		Name:    name,
		Values:  make(map[string]string, 1),
	}

	locations := DefaultLocations
	if e.expander != nil {
		e.expander.PopulateValues(lc)
		locations = e.expander.ExpandLocations(lc, locations)
	}
	metrics.ViewLookups.WithLabelValues(Segment(lc.Host)).Inc()

	searched := make([]string, 0, len(locations))
	for _, pattern := range locations {
		p := strings.TrimPrefix(Expand(pattern, name, group), "/")
		searched = append(searched, "/"+p)
		if fi, err := fs.Stat(e.fsys, p); err == nil && !fi.IsDir() {
			zap.L().Debug("view resolved",
				zap.String("host", lc.Host),
				zap.String("view", group+"/"+name),
				zap.String("path", p))
			return p, lc, searched
		}
	}
	return "", lc, searched
}

//
// internal: render
//

func (e *Engine) render(buf *bytes.Buffer, r *http.Request, group, name string, model any) error {
	viewPath, lc, err := e.find(r, group, name)
	if err != nil {
		return err
	}

	var layoutPath string
	if e.layout != "" {
		// The layout is optional, so a miss is not counted as not-found.
		lp, _, searched := e.lookup(r, group, e.layout)
		if lp == "" {
			zap.L().Debug("no layout, rendering bare view",
				zap.String("view", viewPath),
				zap.Strings("searched", searched))
		}
		layoutPath = lp
	}

	t, err := e.load(layoutPath, viewPath)
	if err != nil {
		return err
	}

	root := contentBlock
	if layoutPath != "" {
		root = path.Base(layoutPath)
	} else if t.Lookup(contentBlock) == nil {
		root = path.Base(viewPath)
	}

	page := &Page{Ctx: newContext(r, lc), Model: model}
	if err := t.ExecuteTemplate(buf, root, page); err != nil {
		return fmt.Errorf("execute %s: %w", viewPath, err)
	}
	return nil
}

// load returns the parsed set for (layout, view), parsing at most once
// per key even under concurrent misses.
func (e *Engine) load(layoutPath, viewPath string) (*template.Template, error) {
	key := layoutPath + "::" + viewPath
	if e.sets != nil {
		if t, ok := e.sets.Get(key); ok {
			return t, nil
		}
	}

	v, err, _ := e.sfg.Do(key, func() (any, error) {
		// A flight that finished between our miss and Do already cached it.
		if e.sets != nil {
			if t, ok := e.sets.Get(key); ok {
				return t, nil
			}
		}

		files := make([]string, 0, 2)
		if layoutPath != "" {
			files = append(files, layoutPath)
		}
		files = append(files, viewPath)

		t, err := template.New(path.Base(files[0])).Funcs(FuncMap()).ParseFS(e.fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", strings.Join(files, ", "), err)
		}
		metrics.TemplateParse.Inc()
		if e.sets != nil {
			e.sets.Add(key, t)
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*template.Template), nil
}

func newContext(r *http.Request, lc *LocationContext) *Context {
	c := &Context{
		Request:   r,
		Host:      lc.Host,
		Segment:   Segment(lc.Host),
		Group:     lc.Group,
		Name:      lc.Name,
		Feature:   lc.Values[FeatureKey],
		Info:      requestinfo.FromContext(r.Context()),
		RequestID: middleware.GetReqID(r.Context()),
	}
	if a, ok := annotate.FromContext(r.Context()); ok {
		c.Domain = a
	}
	return c
}
