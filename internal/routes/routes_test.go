package routes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{name: "simple number", input: "42", expected: int64(42)},
		{name: "zero", input: "0", expected: int64(0)},
		{name: "negative", input: "-7", expected: int64(-7)},
		{name: "surrounding whitespace", input: " 15 ", expected: int64(15)},
		{name: "fraction", input: "4.5", expected: 4.5},
		{name: "exponent", input: "1e3", expected: int64(1000)},
		{name: "whole fraction", input: "42.0", expected: int64(42)},
		{name: "leading dot", input: ".5", expected: 0.5},
		{name: "hex", input: "0x1f", expected: int64(31)},
		{name: "beyond int64", input: "99999999999999999999", expected: 1e20},
		{name: "letters", input: "abc", expected: nil},
		{name: "mixed", input: "42abc", expected: nil},
		{name: "empty", input: "", expected: nil},
		{name: "whitespace only", input: "   ", expected: nil},
		{name: "infinity", input: "Infinity", expected: nil},
		{name: "nan", input: "NaN", expected: nil},
		{name: "out of range", input: "1e400", expected: nil},
		{name: "signed hex", input: "-0x1f", expected: nil},
		{name: "hex float", input: "0x1p4", expected: nil},
		{name: "underscore", input: "1_000", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseID(tt.input))
		})
	}
}

func TestParseIntID(t *testing.T) {
	require.Equal(t, ptr(42), ParseIntID("42"))
	require.Equal(t, ptr(1000), ParseIntID("1e3"))
	require.Nil(t, ParseIntID("4.5"))
	require.Nil(t, ParseIntID("abc"))
}

func TestDefaultTable_Match(t *testing.T) {
	table := Default()

	t.Run("root selects Home", func(t *testing.T) {
		m, ok := table.Match("/")
		require.True(t, ok)
		require.Equal(t, Home, m.Component())
		require.Empty(t, m.Params)
		require.Nil(t, m.Props)
	})

	t.Run("one segment selects CategoryPage", func(t *testing.T) {
		m, ok := table.Match("/math")
		require.True(t, ok)
		require.Equal(t, CategoryPage, m.Component())
		require.Equal(t, Params{"category": "math"}, m.Params)
	})

	t.Run("two segments select StudentLessons", func(t *testing.T) {
		m, ok := table.Match("/math/42")
		require.True(t, ok)
		require.Equal(t, StudentLessons, m.Component())
		require.Equal(t, Params{"category": "math", "studentId": "42"}, m.Params)
		require.Nil(t, m.Props)
	})

	t.Run("lessons selects LessonList with numeric prop", func(t *testing.T) {
		m, ok := table.Match("/math/42/lessons")
		require.True(t, ok)
		require.Equal(t, LessonList, m.Component())
		require.Equal(t, Props{"studentId": int64(42)}, m.Props)
	})

	t.Run("fractional student id is kept as a number", func(t *testing.T) {
		m, ok := table.Match("/math/4.5/lessons")
		require.True(t, ok)
		require.Equal(t, Props{"studentId": 4.5}, m.Props)
	})

	t.Run("non numeric student id yields null prop", func(t *testing.T) {
		m, ok := table.Match("/math/abc/lessons")
		require.True(t, ok)
		require.Equal(t, LessonList, m.Component())
		require.Contains(t, m.Props, "studentId")
		require.Nil(t, m.Props["studentId"])
	})

	t.Run("trailing and duplicate slashes are ignored", func(t *testing.T) {
		m, ok := table.Match("//math///42/")
		require.True(t, ok)
		require.Equal(t, StudentLessons, m.Component())
	})

	t.Run("query string is ignored", func(t *testing.T) {
		m, ok := table.Match("/math?tab=2")
		require.True(t, ok)
		require.Equal(t, Params{"category": "math"}, m.Params)
	})

	t.Run("escaped parameters are decoded", func(t *testing.T) {
		m, ok := table.Match("/%D0%BC%D0%B0%D1%82%D0%B5%D0%BC%D0%B0%D1%82%D0%B8%D0%BA%D0%B0")
		require.True(t, ok)
		require.Equal(t, "математика", m.Params["category"])
	})

	t.Run("reserved first segments do not match", func(t *testing.T) {
		for _, path := range []string{"/api", "/assets", "/metrics", "/__tutor/reload", "/api/42/lessons", "/%61pi"} {
			_, ok := table.Match(path)
			require.False(t, ok, path)
		}

		m, ok := table.Match("/math/api")
		require.True(t, ok)
		require.Equal(t, StudentLessons, m.Component())
	})

	t.Run("unknown shape does not match", func(t *testing.T) {
		_, ok := table.Match("/math/42/homework")
		require.False(t, ok)

		_, ok = table.Match("/a/b/lessons/c")
		require.False(t, ok)
	})
}

func TestTable_MatchFirstWins(t *testing.T) {
	table := Table{
		NewRoute("/:category/new", "First", nil),
		NewRoute("/:category/:studentId", "Second", nil),
	}

	m, ok := table.Match("/math/new")
	require.True(t, ok)
	require.Equal(t, "First", m.Component())

	reordered := Table{table[1], table[0]}
	m, ok = reordered.Match("/math/new")
	require.True(t, ok)
	require.Equal(t, "Second", m.Component())
}

func TestParsePattern(t *testing.T) {
	t.Run("root has no segments", func(t *testing.T) {
		p, err := ParsePattern("/")
		require.NoError(t, err)
		require.Empty(t, p.Segments())
		require.Equal(t, "/", p.ChiPattern())
	})

	t.Run("mixed segments", func(t *testing.T) {
		p, err := ParsePattern("/:category/:studentId/lessons")
		require.NoError(t, err)
		require.Equal(t, []string{"category", "studentId"}, p.ParamNames())
		require.Equal(t, "/{category}/{studentId}/lessons", p.ChiPattern())
		require.Equal(t, "/:category/:studentId/lessons", p.String())
	})

	t.Run("invalid templates", func(t *testing.T) {
		for _, tmpl := range []string{"", "math", "/:", "/:a/:a"} {
			_, err := ParsePattern(tmpl)
			require.ErrorIs(t, err, ErrInvalidPattern, tmpl)
		}
	})

	t.Run("must parse panics", func(t *testing.T) {
		require.Panics(t, func() { MustParsePattern("nope") })
	})
}

func TestTable_Manifest(t *testing.T) {
	manifest := Default().Manifest()
	require.Equal(t, []ManifestEntry{
		{Path: "/", Component: Home},
		{Path: "/:category", Component: CategoryPage},
		{Path: "/:category/:studentId", Component: StudentLessons},
		{Path: "/:category/:studentId/lessons", Component: LessonList, HasProps: true},
	}, manifest)
}

func ptr(n int64) *int64 {
	return &n
}
