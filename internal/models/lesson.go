package models

import "time"

// Lesson is a single session a student attended.
type Lesson struct {
	ID           int64     `json:"id"`
	StudentID    int64     `json:"student_id"`
	LessonTypeID int64     `json:"lesson_type_id"`
	TopicID      int64     `json:"topic_id"`
	Date         time.Time `json:"date"`
	Comment      *string   `json:"comment"`
}

// Difficulty of a homework exercise set.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Homework is assigned after a lesson and covers a set of topics.
type Homework struct {
	ID        int64            `json:"id"`
	LessonID  int64            `json:"lesson_id"`
	TopicIDs  []int64          `json:"topic_ids"`
	CreatedAt time.Time        `json:"created_at"`
	Results   []HomeworkResult `json:"results"`
}

// HomeworkResult records how a student did on one topic at one difficulty.
type HomeworkResult struct {
	ID           int64      `json:"id"`
	HomeworkID   int64      `json:"homework_id"`
	TopicID      int64      `json:"topic_id"`
	Difficulty   Difficulty `json:"difficulty"`
	CorrectCount int        `json:"correct_count"`
	TotalCount   int        `json:"total_count"`
	Percentage   float64    `json:"percentage"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ComputePercentage sets Percentage from the counts; zero total gives zero.
func (r *HomeworkResult) ComputePercentage() {
	if r.TotalCount > 0 {
		r.Percentage = float64(r.CorrectCount) / float64(r.TotalCount) * 100
		return
	}
	r.Percentage = 0
}
