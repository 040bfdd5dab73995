// Package memory provides a map-based storage backend, used for tests and
// for running without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"subjcal/internal/storage"
)

// Store implements storage.Store using in-memory maps.
type Store struct {
	mu       sync.RWMutex
	events   map[string]storage.Event
	subjects map[string]storage.Subject
	now      func() time.Time
}

// New creates an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		events:   make(map[string]storage.Event),
		subjects: make(map[string]storage.Subject),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// checkID mirrors the identifier validity check a real backend performs
// before touching the collection.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &storage.Error{
			Type:    storage.ErrInvalidID,
			Message: "malformed identifier: " + id,
			Err:     err,
		}
	}
	return nil
}

// Event operations

func (s *Store) ListEvents(_ context.Context) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]storage.Event, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

func (s *Store) InsertEvent(_ context.Context, fields storage.EventFields) (storage.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ev := storage.Event{
		ID:          uuid.NewString(),
		Created:     now,
		Modified:    now,
		EventFields: fields,
	}
	s.events[ev.ID] = ev
	return ev, nil
}

func (s *Store) ReplaceEvent(_ context.Context, id string, fields storage.EventFields) (storage.Event, error) {
	if err := checkID(id); err != nil {
		return storage.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.events[id]
	if !ok {
		return storage.Event{}, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "event not found: " + id,
		}
	}

	ev := storage.Event{
		ID:          id,
		Created:     prev.Created,
		Modified:    s.now(),
		EventFields: fields,
	}
	s.events[id] = ev
	return ev, nil
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "event not found: " + id,
		}
	}
	delete(s.events, id)
	return nil
}

func (s *Store) DeleteEventsEndedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, ev := range s.events {
		if ev.End.Before(cutoff) {
			delete(s.events, id)
			count++
		}
	}
	return count, nil
}

// Subject operations

func (s *Store) ListSubjects(_ context.Context) ([]storage.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subjects := make([]storage.Subject, 0, len(s.subjects))
	for _, subj := range s.subjects {
		subjects = append(subjects, subj)
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Name != subjects[j].Name {
			return subjects[i].Name < subjects[j].Name
		}
		return subjects[i].ID < subjects[j].ID
	})
	return subjects, nil
}

func (s *Store) InsertSubject(_ context.Context, fields storage.SubjectFields) (storage.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	subj := storage.Subject{
		ID:            uuid.NewString(),
		Created:       now,
		Modified:      now,
		SubjectFields: fields,
	}
	s.subjects[subj.ID] = subj
	return subj, nil
}

func (s *Store) ReplaceSubject(_ context.Context, id string, fields storage.SubjectFields) (storage.Subject, error) {
	if err := checkID(id); err != nil {
		return storage.Subject{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.subjects[id]
	if !ok {
		return storage.Subject{}, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "subject not found: " + id,
		}
	}

	subj := storage.Subject{
		ID:            id,
		Created:       prev.Created,
		Modified:      s.now(),
		SubjectFields: fields,
	}
	s.subjects[id] = subj
	return subj, nil
}

// DeleteSubject removes the subject if present. A well-formed id that no
// longer exists is treated as success.
func (s *Store) DeleteSubject(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subjects, id)
	return nil
}
