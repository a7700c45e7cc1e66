package models

import "time"

// JournalEntry is a progress report written for a student.
type JournalEntry struct {
	ID                   int64     `json:"id"`
	StudentID            int64     `json:"student_id"`
	CreatedAt            time.Time `json:"created_at"`
	GoodResults          string    `json:"good_results"`
	BadResults           string    `json:"bad_results"`
	CoveredTopics        string    `json:"covered_topics"`
	WorkingOn            string    `json:"working_on"`
	RecommendedLessons   int       `json:"recommended_lessons"`
	RecommendationReason string    `json:"recommendation_reason"`
}
