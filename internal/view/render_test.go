// internal/view/render_test.go
//
// Engine tests against an in-memory view tree.  The tree mirrors the
// production layout:
//
//	Views/Shared/_Layout.html
//	Views/Shared/Index.html
//	Views/Shared/Privacy.html
//	Views/xyz_com/Home/Index.html
//	Views/abc_com/Shared/Index.html
//	Views/abc_com/Shared/_Layout.html

package view

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/hostview/internal/annotate"
	"github.com/yanizio/hostview/internal/metrics"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"Views/Shared/_Layout.html":         file(`<main data-layout="global">{{ template "content" . }}</main>`),
		"Views/Shared/Index.html":           file(`{{ define "content" }}global-index{{ end }}`),
		"Views/Shared/Privacy.html":         file(`{{ define "content" }}privacy {{ domainName .Ctx }}{{ end }}`),
		"Views/Shared/Bare.html":            file(`bare {{ .Model }}`),
		"Views/xyz_com/Home/Index.html":     file(`{{ define "content" }}xyz-home {{ domainFeature .Ctx }} {{ .Ctx.Feature }}{{ end }}`),
		"Views/abc_com/Shared/Index.html":   file(`{{ define "content" }}abc-shared{{ end }}`),
		"Views/abc_com/Shared/_Layout.html": file(`<main data-layout="abc">{{ template "content" . }}</main>`),
	}
}

func newTestEngine(cacheSize int) *Engine {
	return New(Options{
		FS:        testFS(),
		Expander:  HostExpander{},
		Layout:    "_Layout",
		CacheSize: cacheSize,
	})
}

func request(host, target string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.Host = host
	return r
}

func TestFind_PriorityOrder(t *testing.T) {
	e := newTestEngine(0)

	cases := []struct {
		host, group, name, want string
	}{
		{"xyz.com", "Home", "Index", "Views/xyz_com/Home/Index.html"},
		{"abc.com", "Home", "Index", "Views/abc_com/Shared/Index.html"},
		{"abc.net", "Home", "Index", "Views/Shared/Index.html"},
		{"localhost", "Home", "Index", "Views/Shared/Index.html"},
		{"xyz.com", "Home", "Privacy", "Views/Shared/Privacy.html"},
	}
	for _, tc := range cases {
		got, err := e.Find(request(tc.host, "/"), tc.group, tc.name)
		require.NoError(t, err, "%s %s/%s", tc.host, tc.group, tc.name)
		assert.Equal(t, tc.want, got, "%s %s/%s", tc.host, tc.group, tc.name)
	}
}

func TestFind_NotFoundListsCandidatesInOrder(t *testing.T) {
	e := newTestEngine(0)

	_, err := e.Find(request("xyz.com", "/"), "Home", "Missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	msg := err.Error()
	first := strings.Index(msg, "/Views/xyz_com/Home/Missing.html")
	second := strings.Index(msg, "/Views/xyz_com/Shared/Missing.html")
	third := strings.Index(msg, "/Views/Shared/Missing.html")
	require.True(t, first >= 0 && second > first && third > second, msg)
}

func TestFind_WithoutExpanderUsesDefaults(t *testing.T) {
	e := New(Options{FS: testFS()})

	got, err := e.Find(request("xyz.com", "/"), "Home", "Index")
	require.NoError(t, err)
	assert.Equal(t, "Views/Shared/Index.html", got, "site folders are ignored")
}

func TestRender_LayoutFollowsHost(t *testing.T) {
	e := newTestEngine(8)

	rr := httptest.NewRecorder()
	require.NoError(t, e.Render(rr, request("abc.com", "/"), "Home", "Index", nil))
	assert.Equal(t, `<main data-layout="abc">abc-shared</main>`, rr.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	rr = httptest.NewRecorder()
	require.NoError(t, e.Render(rr, request("abc.net", "/"), "Home", "Index", nil))
	assert.Equal(t, `<main data-layout="global">global-index</main>`, rr.Body.String())
}

func TestRender_ExposesAnnotationAndFeature(t *testing.T) {
	e := newTestEngine(8)

	r := request("xyz.com", "/?feature=beta")
	r = r.WithContext(annotate.WithAnnotation(r.Context(), annotate.Annotate("xyz.com")))

	html, err := e.RenderToString(r, "Home", "Index", nil)
	require.NoError(t, err)
	assert.Equal(t, `<main data-layout="global">xyz-home FeatureForXyz beta</main>`, string(html))
}

func TestRender_WithoutLayoutFile(t *testing.T) {
	e := New(Options{FS: testFS(), Expander: HostExpander{}, Layout: "NoSuchLayout"})

	html, err := e.RenderToString(request("xyz.com", "/"), "Home", "Index", nil)
	require.NoError(t, err)
	assert.Equal(t, "xyz-home  ", string(html))

	html, err = e.RenderToString(request("xyz.com", "/"), "Home", "Bare", "model")
	require.NoError(t, err)
	assert.Equal(t, "bare model", string(html))
}

func TestRender_LayoutMissIsNotCountedAsNotFound(t *testing.T) {
	e := New(Options{FS: testFS(), Expander: HostExpander{}, Layout: "NoSuchLayout"})

	before := testutil.ToFloat64(metrics.ViewNotFound)
	_, err := e.RenderToString(request("xyz.com", "/"), "Home", "Index", nil)
	require.NoError(t, err)
	assert.Equal(t, before, testutil.ToFloat64(metrics.ViewNotFound))

	_, err = e.RenderToString(request("xyz.com", "/"), "Home", "Missing", nil)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ViewNotFound))
}

func TestRender_MissingViewWritesNothing(t *testing.T) {
	e := newTestEngine(8)

	rr := httptest.NewRecorder()
	err := e.Render(rr, request("xyz.com", "/"), "Home", "Missing", nil)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, rr.Body.Len())
}

func TestRender_CacheReusesParsedSet(t *testing.T) {
	e := newTestEngine(8)

	for i := 0; i < 3; i++ {
		_, err := e.RenderToString(request("xyz.com", "/"), "Home", "Index", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, e.sets.Len())
}

func TestRender_Concurrent(t *testing.T) {
	want := map[string]string{
		"abc.com":     `<main data-layout="abc">abc-shared</main>`,
		"abc.net":     `<main data-layout="global">global-index</main>`,
		"xyz.com":     `<main data-layout="global">xyz-home  </main>`,
		"example.org": `<main data-layout="global">global-index</main>`,
	}
	// abc.net and example.org share the global (layout, view) pair.
	const distinctSets = 3
	const workers = 32

	for _, size := range []int{0, 1, 8} {
		t.Run(fmt.Sprintf("cache=%d", size), func(t *testing.T) {
			e := newTestEngine(size)
			before := testutil.ToFloat64(metrics.TemplateParse)

			var wg sync.WaitGroup
			errs := make(chan error, workers*len(want))
			for i := 0; i < workers; i++ {
				for host, body := range want {
					wg.Add(1)
					go func(host, body string) {
						defer wg.Done()
						rr := httptest.NewRecorder()
						if err := e.Render(rr, request(host, "/"), "Home", "Index", nil); err != nil {
							errs <- fmt.Errorf("%s: %w", host, err)
							return
						}
						if got := rr.Body.String(); got != body {
							errs <- fmt.Errorf("%s: got %q, want %q", host, got, body)
						}
					}(host, body)
				}
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Error(err)
			}

			if size >= distinctSets {
				parsed := testutil.ToFloat64(metrics.TemplateParse) - before
				assert.LessOrEqual(t, parsed, float64(distinctSets))
				assert.Equal(t, distinctSets, e.sets.Len())
			}
		})
	}
}
