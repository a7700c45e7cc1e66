package models

import (
	"strings"

	"github.com/gosimple/slug"
)

// Category groups students by subject area and is addressed by slug in page URLs.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// EnsureSlug derives the slug from the name when none was given.
func (c *Category) EnsureSlug() {
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
}

// Goal is a learning goal that applies to one or more categories.
type Goal struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	CategoryIDs []int64 `json:"category_ids"`
}

// LessonType classifies lessons, e.g. "practice" or "exam prep".
type LessonType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Topic is studied by a set of students.
type Topic struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	StudentIDs []int64 `json:"students"`
}

var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
	'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts",
	'ч': "ch", 'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu",
	'я': "ya", ' ': "-", '_': "-",
}

// Slugify transliterates Cyrillic text to Latin and normalises it to a URL slug.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if latin, ok := cyrillicToLatin[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return slug.Make(b.String())
}
