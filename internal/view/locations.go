// internal/view/locations.go
//
// Host-based view location resolution.
//
// Context
// -------
// One process serves several sites.  Each site may override any view by
// dropping a file under its own folder; anything it does not override
// falls through to the site's shared folder and then to the global shared
// folder.  The site folder (the *segment*) is chosen from the request's
// hostname through a fixed table:
//
//	abc.com → abc_com
//	abc.net → abc_net
//	xyz.com → xyz_com
//	*       → localhost
//
// Search order (first existing file wins, see Engine.Find):
//
//  1. /Views/<segment>/<group>/<name>.html
//  2. /Views/<segment>/Shared/<name>.html
//  3. /Views/Shared/<name>.html
//
// Patterns carry two positional placeholders, {0} for the view name and
// {1} for the group (controller) name; Expand fills them in.
//
// Notes
// -----
// • The table is matched exactly.  Hosts are not lower-cased or trimmed;
//   "ABC.com" falls back to localhost like any unknown host.
// • Nothing here is cached.  Every lookup builds a fresh slice.
// • Oxford commas, two spaces after periods.

package view

import (
	"net/http"
	"strings"
)

// Ext is the file extension every view template carries.
const Ext = ".html"

// FallbackSegment is used for any host missing from the segment table.
const FallbackSegment = "localhost"

// FeatureKey is the query parameter, and LocationContext.Values key, that
// carries the optional feature flag.
const FeatureKey = "feature"

// segments is written once here and only read afterwards.
var segments = map[string]string{
	"abc.com": "abc_com",
	"abc.net": "abc_net",
	"xyz.com": "xyz_com",
}

// DefaultLocations are the patterns an Engine searches when no expander
// is installed.
var DefaultLocations = []string{
	"/Views/{1}/{0}" + Ext,
	"/Views/Shared/{0}" + Ext,
}

// Segment returns the folder identifier for host, or FallbackSegment.
func Segment(host string) string {
	if s, ok := segments[host]; ok {
		return s
	}
	return FallbackSegment
}

// Resolve returns the three search patterns for host, most specific first.
//
// base is what the engine would otherwise have searched.  It is replaced,
// not extended, and never modified.  feature is accepted so callers can
// pass it through; it does not change the result.
func Resolve(host, feature string, base []string) []string {
	seg := Segment(host)
	return []string{
		"/Views/" + seg + "/{1}/{0}" + Ext,
		"/Views/" + seg + "/Shared/{0}" + Ext,
		"/Views/Shared/{0}" + Ext,
	}
}

// Expand substitutes name for {0} and group for {1}.
func Expand(pattern, name, group string) string {
	return strings.NewReplacer("{0}", name, "{1}", group).Replace(pattern)
}

//
// expander hook
//

// LocationContext is built by the Engine once per lookup.  Values is a
// scratch map expanders may fill in PopulateValues; it lives only as long
// as the lookup.
type LocationContext struct {
	Request *http.Request
	Host    string
	Group   string
	Name    string
	Values  map[string]string
}

// LocationExpander lets callers rewrite the engine's search patterns.
// PopulateValues runs first and may record request facts in Values;
// ExpandLocations then returns the patterns to search, in order.
type LocationExpander interface {
	PopulateValues(lc *LocationContext)
	ExpandLocations(lc *LocationContext, locations []string) []string
}

// HostExpander is the LocationExpander that applies Resolve.
type HostExpander struct{}

// PopulateValues copies the ?feature= query parameter into Values.  An
// absent parameter is recorded as "".
func (HostExpander) PopulateValues(lc *LocationContext) {
	feature := ""
	if lc.Request != nil {
		feature = lc.Request.URL.Query().Get(FeatureKey)
	}
	if lc.Values == nil {
		lc.Values = make(map[string]string, 1)
	}
	lc.Values[FeatureKey] = feature
}

// ExpandLocations ignores locations and returns Resolve(lc.Host, …).
func (HostExpander) ExpandLocations(lc *LocationContext, locations []string) []string {
	return Resolve(lc.Host, lc.Values[FeatureKey], locations)
}
