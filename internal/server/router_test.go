// internal/server/router_test.go
//
// End-to-end tests through the full middleware chain with the embedded
// view tree.

package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/hostview/internal/view"
	"github.com/yanizio/hostview/web"
)

// recordingExpander wraps HostExpander and keeps every candidate list
// the engine asked for.
type recordingExpander struct {
	view.HostExpander
	seen [][]string
}

func (e *recordingExpander) ExpandLocations(lc *view.LocationContext, locs []string) []string {
	out := e.HostExpander.ExpandLocations(lc, locs)
	expanded := make([]string, len(out))
	for i, p := range out {
		expanded[i] = view.Expand(p, lc.Name, lc.Group)
	}
	e.seen = append(e.seen, expanded)
	return out
}

func newRouter(exp view.LocationExpander) http.Handler {
	eng := view.New(view.Options{FS: web.FS, Expander: exp, Layout: "_Layout", CacheSize: 16})
	return Router(Options{Log: zap.NewNop(), Views: eng})
}

func get(h http.Handler, host, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Host = host
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_XyzHomeIndex(t *testing.T) {
	exp := &recordingExpander{}
	rr := get(newRouter(exp), "xyz.com", "/")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "XYZ Domain", rr.Header().Get("X-Domain-Name"))
	assert.Contains(t, rr.Body.String(), "The xyz.com home page")
	assert.Contains(t, rr.Body.String(), "FeatureForXyz")

	require.NotEmpty(t, exp.seen)
	assert.Equal(t, []string{
		"/Views/xyz_com/Home/Index.html",
		"/Views/xyz_com/Shared/Index.html",
		"/Views/Shared/Index.html",
	}, exp.seen[0])
}

func TestRouter_PerHostPages(t *testing.T) {
	h := newRouter(view.HostExpander{})

	cases := []struct {
		host, path, header, body string
	}{
		{"abc.com", "/", "ABC Domain", "The abc.com home page"},
		{"abc.com:8080", "/", "ABC Domain", `class="abc"`},
		{"abc.net", "/", "Default Domain", "Welcome"},
		{"abc.net", "/privacy", "Default Domain", "Privacy at abc.net"},
		{"xyz.com", "/privacy", "XYZ Domain", "XYZ Privacy"},
		{"abc.com", "/privacy", "ABC Domain", "Privacy Policy"},
		{"example.org", "/", "Default Domain", "Local development"},
	}
	for _, tc := range cases {
		rr := get(h, tc.host, tc.path)
		require.Equal(t, http.StatusOK, rr.Code, "%s%s", tc.host, tc.path)
		assert.Equal(t, tc.header, rr.Header().Get("X-Domain-Name"), "%s%s", tc.host, tc.path)
		assert.Contains(t, rr.Body.String(), tc.body, "%s%s", tc.host, tc.path)
	}
}

func TestRouter_FeatureFlagDoesNotChangeView(t *testing.T) {
	h := newRouter(view.HostExpander{})

	rr := get(h, "xyz.com", "/?feature=beta")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "The xyz.com home page (feature beta)")
}

func TestRouter_ErrorPage(t *testing.T) {
	rr := get(newRouter(view.HostExpander{}), "abc.net", "/error")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "An error occurred while processing your request.")
	assert.Contains(t, rr.Body.String(), "Request ID:")
	assert.Equal(t, "Default Domain", rr.Header().Get("X-Domain-Name"))
}

func TestRouter_OpsEndpoints(t *testing.T) {
	h := newRouter(view.HostExpander{})

	rr := get(h, "localhost", "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	rr = get(h, "localhost", "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "hostview_domain_annotations_total"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

type panicRenderer struct{}

func (panicRenderer) Render(http.ResponseWriter, *http.Request, string, string, any) error {
	panic("template blew up")
}

func TestRouter_PanicIsRecoveredAndLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Router(Options{Log: zap.New(core), Views: panicRenderer{}})

	rr := get(h, "abc.com", "/")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, http.StatusInternalServerError, entries[0].ContextMap()["status"])
	assert.Equal(t, "abc.com", entries[0].ContextMap()["host"])
}

func TestRouter_ForceHTTPS(t *testing.T) {
	eng := view.New(view.Options{FS: web.FS, Expander: view.HostExpander{}, Layout: "_Layout"})
	h := Router(Options{ForceHTTPS: true, Log: zap.NewNop(), Views: eng})

	rr := get(h, "abc.com", "/privacy?x=1")
	assert.Equal(t, http.StatusPermanentRedirect, rr.Code)
	assert.Equal(t, "https://abc.com/privacy?x=1", rr.Header().Get("Location"))
	assert.Empty(t, rr.Header().Get("X-Domain-Name"), "redirect short-circuits annotation")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "abc.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ABC Domain", rr.Header().Get("X-Domain-Name"))

	rr = get(h, "localhost:8080", "/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Default Domain", rr.Header().Get("X-Domain-Name"))
}

func TestRouter_LocalPageShowsClientInfo(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "localhost"
	req.RemoteAddr = "192.0.2.10:51234"
	rr := httptest.NewRecorder()
	newRouter(view.HostExpander{}).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Client IP: 192.0.2.10")
	assert.Contains(t, rr.Body.String(), "Country: unknown")
	assert.NotContains(t, rr.Body.String(), "Crawler detected")
}
