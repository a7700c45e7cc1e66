package routes

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidPattern indicates a route template could not be parsed
	ErrInvalidPattern = errors.New("invalid route pattern")
)

// Segment is a single path element of a Pattern.
type Segment struct {
	// Literal is the exact text to match when Param is empty
	Literal string
	// Param is the parameter name (without the leading ':')
	Param string
}

// IsParam reports whether the segment captures a named parameter.
func (s Segment) IsParam() bool {
	return s.Param != ""
}

// Pattern is a parsed URL path template such as /:category/:studentId.
type Pattern struct {
	template string
	segments []Segment
}

// ParsePattern parses a path template. Parameter segments are prefixed with ':'.
func ParsePattern(template string) (Pattern, error) {
	if !strings.HasPrefix(template, "/") {
		return Pattern{}, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, template)
	}

	seen := map[string]bool{}
	segments := []Segment{}

	for _, part := range splitPath(template) {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			if name == "" {
				return Pattern{}, fmt.Errorf("%w: %q has an empty parameter name", ErrInvalidPattern, template)
			}
			if seen[name] {
				return Pattern{}, fmt.Errorf("%w: %q repeats parameter %q", ErrInvalidPattern, template, name)
			}
			seen[name] = true
			segments = append(segments, Segment{Param: name})
			continue
		}
		segments = append(segments, Segment{Literal: part})
	}

	return Pattern{template: template, segments: segments}, nil
}

// MustParsePattern is like ParsePattern but panics on error. Used for static tables.
func MustParsePattern(template string) Pattern {
	p, err := ParsePattern(template)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the template the pattern was parsed from.
func (p Pattern) String() string {
	return p.template
}

// Segments returns a copy of the parsed segments.
func (p Pattern) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// ParamNames returns the parameter names in path order.
func (p Pattern) ParamNames() []string {
	var names []string
	for _, seg := range p.segments {
		if seg.IsParam() {
			names = append(names, seg.Param)
		}
	}
	return names
}

// ChiPattern renders the pattern using chi's {name} placeholder syntax.
func (p Pattern) ChiPattern() string {
	if len(p.segments) == 0 {
		return "/"
	}

	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		if seg.IsParam() {
			b.WriteString("{" + seg.Param + "}")
		} else {
			b.WriteString(seg.Literal)
		}
	}
	return b.String()
}

// match tests already split path segments against the pattern.
func (p Pattern) match(parts []string) (Params, bool) {
	if len(parts) != len(p.segments) {
		return nil, false
	}

	params := Params{}
	for i, seg := range p.segments {
		if !seg.IsParam() {
			if parts[i] != seg.Literal {
				return nil, false
			}
			continue
		}

		value, err := url.PathUnescape(parts[i])
		if err != nil {
			return nil, false
		}
		params[seg.Param] = value
	}

	return params, true
}

// splitPath collapses duplicate slashes and drops the trailing slash.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}
