package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "latin", input: "Math", expected: "math"},
		{name: "spaces", input: "Exam Prep", expected: "exam-prep"},
		{name: "underscore", input: "exam_prep", expected: "exam-prep"},
		{name: "cyrillic", input: "Математика", expected: "matematika"},
		{name: "cyrillic digraphs", input: "Химия и жизнь", expected: "khimiya-i-zhizn"},
		{name: "punctuation", input: "Physics!", expected: "physics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestCategory_EnsureSlug(t *testing.T) {
	c := Category{Name: "Русский язык"}
	c.EnsureSlug()
	require.Equal(t, "russkiy-yazyk", c.Slug)

	c = Category{Name: "Math", Slug: "custom"}
	c.EnsureSlug()
	require.Equal(t, "custom", c.Slug)
}

func TestHomeworkResult_ComputePercentage(t *testing.T) {
	r := HomeworkResult{CorrectCount: 3, TotalCount: 4}
	r.ComputePercentage()
	require.InDelta(t, 75.0, r.Percentage, 0.0001)

	r = HomeworkResult{CorrectCount: 3, TotalCount: 0, Percentage: 50}
	r.ComputePercentage()
	require.Zero(t, r.Percentage)
}

func TestDifficulty_Valid(t *testing.T) {
	require.True(t, DifficultyEasy.Valid())
	require.True(t, DifficultyHard.Valid())
	require.False(t, Difficulty("easy").Valid())
	require.False(t, Difficulty("").Valid())
}
