package routes

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Component names rendered by the client application.
const (
	Home           = "Home"
	CategoryPage   = "CategoryPage"
	StudentLessons = "StudentLessons"
	LessonList     = "LessonList"
	NotFound       = "NotFound"
)

// Reserved first path segments are served by the site itself and never
// reach the page table.
var Reserved = []string{"api", "assets", "metrics", "__tutor"}

// IsReserved reports whether segment is one of the Reserved names.
func IsReserved(segment string) bool {
	return slices.Contains(Reserved, segment)
}

// Params holds the raw text captured by parameter segments.
type Params map[string]string

// Props are the values handed to a page component.
type Props map[string]any

// PropsFunc derives component props from matched parameters.
type PropsFunc func(Params) Props

// Route binds a path pattern to the component that renders it.
type Route struct {
	Name    string
	Pattern Pattern
	Props   PropsFunc
}

// NewRoute parses the template and panics if it is invalid.
func NewRoute(template, name string, props PropsFunc) Route {
	return Route{
		Name:    name,
		Pattern: MustParsePattern(template),
		Props:   props,
	}
}

// ChiPattern is the route's pattern in chi syntax.
func (r Route) ChiPattern() string {
	return r.Pattern.ChiPattern()
}

// Resolve builds the match for already captured parameters.
func (r Route) Resolve(params Params) Match {
	if params == nil {
		params = Params{}
	}
	m := Match{Route: r, Params: params}
	if r.Props != nil {
		m.Props = r.Props(params)
	}
	return m
}

// Match is the outcome of resolving a URL path against a Table.
type Match struct {
	Route  Route
	Params Params
	Props  Props
}

// Component returns the name of the matched component.
func (m Match) Component() string {
	return m.Route.Name
}

// Table is an ordered route list. The first matching route wins.
type Table []Route

// Match resolves path against the table in listed order.
func (t Table) Match(path string) (Match, bool) {
	if before, _, ok := strings.Cut(path, "?"); ok {
		path = before
	}
	parts := splitPath(path)
	if len(parts) > 0 {
		if first, err := url.PathUnescape(parts[0]); err != nil || IsReserved(first) {
			return Match{}, false
		}
	}

	for _, route := range t {
		params, ok := route.Pattern.match(parts)
		if !ok {
			continue
		}
		return route.Resolve(params), true
	}

	return Match{}, false
}

// ManifestEntry describes a route to the client router.
type ManifestEntry struct {
	Path      string `json:"path"`
	Component string `json:"component"`
	HasProps  bool   `json:"hasProps,omitempty"`
}

// Manifest lists the table in order for the browser bundle.
func (t Table) Manifest() []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(t))
	for _, route := range t {
		entries = append(entries, ManifestEntry{
			Path:      route.Pattern.String(),
			Component: route.Name,
			HasProps:  route.Props != nil,
		})
	}
	return entries
}

// Default is the tutor application's page table.
func Default() Table {
	return Table{
		NewRoute("/", Home, nil),
		NewRoute("/:category", CategoryPage, nil),
		NewRoute("/:category/:studentId", StudentLessons, nil),
		NewRoute("/:category/:studentId/lessons", LessonList, lessonListProps),
	}
}

func lessonListProps(params Params) Props {
	// nil keeps the key so the component receives an explicit null
	return Props{"studentId": ParseID(params["studentId"])}
}

// ParseID coerces a path parameter the way a browser's Number() does:
// decimal with optional fraction and exponent, or an unsigned 0x/0o/0b
// integer. Whole values come back as int64, everything else finite as
// float64. Empty, NaN and infinite results yield nil.
func ParseID(text string) any {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsRune(text, '_') {
		return nil
	}

	if len(text) > 2 && text[0] == '0' && strings.ContainsRune("xXoObB", rune(text[1])) {
		n, err := strconv.ParseUint(text, 0, 64)
		if err != nil || n > math.MaxInt64 {
			return nil
		}
		return int64(n)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	// ParseFloat also takes hex floats and spelled-out infinities
	if lower := strings.ToLower(text); strings.Contains(lower, "x") || strings.Contains(lower, "n") {
		return nil
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return f
}

// ParseIntID narrows ParseID to whole identifiers, as used by stored records.
func ParseIntID(text string) *int64 {
	if n, ok := ParseID(text).(int64); ok {
		return &n
	}
	return nil
}
