package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

// CreateJournalEntry stores a journal entry for an existing student.
func (s *Store) CreateJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[entry.StudentID]; !ok {
		return store.ErrInvalidReference
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	entry.ID = s.nextID()
	s.journal[entry.ID] = shallow(entry)
	return nil
}

// GetJournalEntry retrieves a journal entry by id.
func (s *Store) GetJournalEntry(ctx context.Context, id int64) (*models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.journal[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return shallow(entry), nil
}

// ListJournalEntries returns entries newest first, optionally for one student.
func (s *Store) ListJournalEntries(ctx context.Context, studentID *int64) ([]*models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.JournalEntry{}
	for _, entry := range s.journal {
		if studentID != nil && entry.StudentID != *studentID {
			continue
		}
		result = append(result, shallow(entry))
	}

	slices.SortFunc(result, func(a, b *models.JournalEntry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return result, nil
}
