// internal/annotate/annotate.go
//
// Domain annotation middleware.
//
// Context
// -------
// Early in the chain every request is labelled with the site it was
// addressed to.  The label is sent back as the `X-Domain-Name` response
// header and, for some sites, a feature name is attached to the request
// context for later handlers and templates:
//
//	abc.com → "ABC Domain",     DomainFeature=FeatureForAbc
//	xyz.com → "XYZ Domain",     DomainFeature=FeatureForXyz
//	*       → "Default Domain", no entry
//
// This table is kept apart from the view segment table in internal/view.
// The two overlap but do not agree: abc.net has its own view folder yet
// is labelled "Default Domain" here.  That asymmetry is deliberate.
//
// Notes
// -----
// • The middleware never rejects a request.  It annotates and forwards.
// • Oxford commas, two spaces after periods.

package annotate

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/hostview/internal/metrics"
	"github.com/yanizio/hostview/internal/requestinfo"
)

// HeaderName is the response header carrying Annotation.Header.
const HeaderName = "X-Domain-Name"

// FeatureKey is the context entry key used by the enumerated domains.
const FeatureKey = "DomainFeature"

// DefaultHeader labels every host missing from the table.
const DefaultHeader = "Default Domain"

// Entry is a request-scoped key/value fact.
type Entry struct {
	Key   string
	Value string
}

// Annotation is what a host resolves to.  Entry is nil for hosts that
// carry no context fact.
type Annotation struct {
	Header string
	Entry  *Entry
}

// annotations is written once here and only read afterwards.  Entries
// are shared between requests and must not be modified.
var annotations = map[string]Annotation{
	"abc.com": {Header: "ABC Domain", Entry: &Entry{Key: FeatureKey, Value: "FeatureForAbc"}},
	"xyz.com": {Header: "XYZ Domain", Entry: &Entry{Key: FeatureKey, Value: "FeatureForXyz"}},
}

// Annotate returns the annotation for host.  Unknown hosts, including "",
// get DefaultHeader and no entry.
func Annotate(host string) Annotation {
	if a, ok := annotations[host]; ok {
		return a
	}
	return Annotation{Header: DefaultHeader}
}

//
// context access
//

type ctxKey struct{}

// WithAnnotation returns a copy of ctx carrying a.
func WithAnnotation(ctx context.Context, a Annotation) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the annotation stored by Middleware.
func FromContext(ctx context.Context) (Annotation, bool) {
	a, ok := ctx.Value(ctxKey{}).(Annotation)
	return a, ok
}

// Item looks up a context entry by key, e.g. Item(ctx, FeatureKey).
func Item(ctx context.Context, key string) (string, bool) {
	a, ok := FromContext(ctx)
	if !ok || a.Entry == nil || a.Entry.Key != key {
		return "", false
	}
	return a.Entry.Value, true
}

//
// middleware
//

// Middleware sets X-Domain-Name, stores the annotation in the request
// context, and always calls next.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := requestinfo.Hostname(r)
		a := Annotate(host)

		w.Header().Set(HeaderName, a.Header)
		metrics.DomainAnnotations.WithLabelValues(a.Header).Inc()

		if ce := zap.L().Check(zap.DebugLevel, "domain annotated"); ce != nil {
			fields := []zap.Field{zap.String("host", host), zap.String("header", a.Header)}
			if a.Entry != nil {
				fields = append(fields, zap.String(a.Entry.Key, a.Entry.Value))
			}
			ce.Write(fields...)
		}

		next.ServeHTTP(w, r.WithContext(WithAnnotation(r.Context(), a)))
	})
}
