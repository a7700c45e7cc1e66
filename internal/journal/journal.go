// Package journal writes progress reports from a student's recent homework results.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
	"github.com/wolfeidau/tutorcontrol/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultLessonsCount is used when the caller does not ask for a specific window.
const DefaultLessonsCount = 5

// ErrNoLessons is returned when the student has no lessons to report on.
var ErrNoLessons = errors.New("no lessons found for this student")

// ErrStudentNotFound is returned when the student being reported on does not exist.
var ErrStudentNotFound = errors.New("student not found")

// Outcome is the latest result for one topic at one difficulty.
type Outcome struct {
	TopicID    int64
	TopicName  string
	Difficulty models.Difficulty
	Percentage float64
}

// Good reports whether the topic was fully mastered.
func (o Outcome) Good() bool {
	return o.Percentage >= 100
}

func (o Outcome) String() string {
	return fmt.Sprintf("%s (%s level)", o.TopicName, strings.ToLower(string(o.Difficulty)))
}

// Generate builds and stores a journal entry for the student from the
// homework of their last lessonsCount lessons.
func Generate(ctx context.Context, st store.Store, studentID int64, lessonsCount int) (*models.JournalEntry, error) {
	if lessonsCount <= 0 {
		lessonsCount = DefaultLessonsCount
	}

	if _, err := st.GetStudent(ctx, studentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("student %d: %w: %w", studentID, ErrStudentNotFound, err)
		}
		return nil, fmt.Errorf("student %d: %w", studentID, err)
	}

	lessons, err := st.ListLessons(ctx, store.ListLessonsOptions{StudentID: &studentID, Limit: lessonsCount})
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, ErrNoLessons
	}

	outcomes, err := latestOutcomes(ctx, st, lessons)
	if err != nil {
		return nil, err
	}

	entry := Compose(studentID, outcomes)
	if err := st.CreateJournalEntry(ctx, entry); err != nil {
		return nil, err
	}

	m := telemetry.GetMetrics()
	attrs := metric.WithAttributes(attribute.Int("lessons", len(lessons)))
	m.JournalGeneratedTotal.Add(ctx, 1, attrs)
	m.JournalRecommendedTotal.Add(ctx, int64(entry.RecommendedLessons), attrs)

	zerolog.Ctx(ctx).Info().
		Int64("student_id", studentID).
		Int64("journal_id", entry.ID).
		Int("lessons", len(lessons)).
		Int("outcomes", len(outcomes)).
		Msg("Generated journal entry")

	return entry, nil
}

// latestOutcomes keeps only the newest result per (topic, difficulty).
func latestOutcomes(ctx context.Context, st store.Store, lessons []*models.Lesson) ([]Outcome, error) {
	lessonIDs := make([]int64, len(lessons))
	for i, l := range lessons {
		lessonIDs[i] = l.ID
	}

	homework, err := st.ListHomework(ctx, store.ListHomeworkOptions{LessonIDs: lessonIDs})
	if err != nil {
		return nil, err
	}
	homeworkIDs := make([]int64, len(homework))
	for i, h := range homework {
		homeworkIDs[i] = h.ID
	}

	// ordered by topic, difficulty, newest first
	results, err := st.ListResults(ctx, store.ListResultsOptions{HomeworkIDs: homeworkIDs})
	if err != nil {
		return nil, err
	}

	type key struct {
		topic      int64
		difficulty models.Difficulty
	}
	seen := make(map[key]bool)
	topicNames := make(map[int64]string)

	var outcomes []Outcome
	for _, r := range results {
		k := key{r.TopicID, r.Difficulty}
		if seen[k] {
			continue
		}
		seen[k] = true

		name, ok := topicNames[r.TopicID]
		if !ok {
			topic, err := st.GetTopic(ctx, r.TopicID)
			if err != nil {
				return nil, fmt.Errorf("topic %d: %w", r.TopicID, err)
			}
			name = topic.Name
			topicNames[r.TopicID] = name
		}

		outcomes = append(outcomes, Outcome{
			TopicID:    r.TopicID,
			TopicName:  name,
			Difficulty: r.Difficulty,
			Percentage: r.Percentage,
		})
	}
	return outcomes, nil
}

// Compose turns outcomes into the report texts and the lesson recommendation.
func Compose(studentID int64, outcomes []Outcome) *models.JournalEntry {
	var good, bad, covered []string
	for _, o := range outcomes {
		covered = append(covered, o.String())
		if o.Good() {
			good = append(good, o.String())
		} else {
			bad = append(bad, o.String())
		}
	}

	entry := &models.JournalEntry{
		StudentID:          studentID,
		RecommendedLessons: max(1, len(bad)),
	}

	switch {
	case len(good) > 0 && len(bad) > 0:
		entry.GoodResults = "The student has mastered the following topics: " + strings.Join(good, ", ") + "."
	case len(good) > 0:
		entry.GoodResults = "The student has mastered all of the following topics: " + strings.Join(good, ", ") + "."
	case len(bad) > 0:
		entry.GoodResults = "The student has not yet mastered any of the covered topics."
	default:
		entry.GoodResults = "The student has no homework results yet."
	}

	if len(bad) > 0 {
		entry.BadResults = "The student still struggles with the following topics: " + strings.Join(bad, ", ") + "."
		entry.WorkingOn = "We continue working on: " + strings.Join(bad, ", ") + "."
		entry.RecommendationReason = "I recommend this number of lessons because the student has not yet mastered " +
			strings.Join(bad, ", ") + "."
	} else {
		entry.BadResults = "There are no problem topics."
		entry.WorkingOn = "All topics are mastered at 100%."
		entry.RecommendationReason = "I recommend this number of lessons to maintain the current level of knowledge."
	}

	if len(covered) > 0 {
		entry.CoveredTopics = "The lessons covered the following topics: " + strings.Join(covered, ", ") + "."
	} else {
		entry.CoveredTopics = "No topics were covered in the lessons."
	}

	return entry
}
