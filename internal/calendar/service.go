// Package calendar holds the application core: saving events (including
// weekly recurrence expansion), the subject registry, and the visibility
// filter. It performs no logging of its own; every failure is returned to
// the caller.
package calendar

import (
	"context"
	"time"

	"subjcal/internal/recurrence"
	"subjcal/internal/storage"
)

const (
	// DefaultEventColor is used when neither the form nor a subject
	// provides a color.
	DefaultEventColor = "#A855F7"

	// PlaceholderTitle is the display title of an event saved with a blank
	// title and no resolvable subject.
	PlaceholderTitle = "(no title)"

	// purgeAge is how far past an event's end instant must lie before the
	// bulk purge removes it.
	purgeAge = 24 * time.Hour
)

// Service wires the stores, the recurrence engine, and the subject registry
// together behind the operations the UI layer consumes.
type Service struct {
	store  storage.Store
	engine *recurrence.Engine
	loc    *time.Location
	now    func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLocation sets the location in which form dates and times are
// interpreted. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service on top of the given store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		engine: recurrence.NewEngine(),
		loc:    time.Local,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListEvents returns every stored event.
func (s *Service) ListEvents(ctx context.Context) ([]storage.Event, error) {
	return s.store.ListEvents(ctx)
}

// CreateEvent persists an event from already-computed fields, filling in
// the default color when none is set. The title, start, and end are
// required.
func (s *Service) CreateEvent(ctx context.Context, fields storage.EventFields) (storage.Event, error) {
	if fields.Title == "" || fields.Start.IsZero() || fields.End.IsZero() {
		return storage.Event{}, errEventRequiredFieldsMiss
	}
	if fields.End.Before(fields.Start) {
		return storage.Event{}, errEndBeforeStart
	}
	if fields.Color == "" {
		fields.Color = DefaultEventColor
	}
	return s.store.InsertEvent(ctx, fields)
}

// UpdateEvent replaces all mutable fields of the event with the given id.
func (s *Service) UpdateEvent(ctx context.Context, id string, fields storage.EventFields) (storage.Event, error) {
	if fields.Title == "" || fields.Start.IsZero() || fields.End.IsZero() {
		return storage.Event{}, errEventRequiredFieldsMiss
	}
	if fields.End.Before(fields.Start) {
		return storage.Event{}, errEndBeforeStart
	}
	if fields.Color == "" {
		fields.Color = DefaultEventColor
	}
	return s.store.ReplaceEvent(ctx, id, fields)
}

// DeleteEvent removes a single event.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	return s.store.DeleteEvent(ctx, id)
}

// PurgeOldEvents bulk-deletes events that ended more than a day ago and
// returns how many were removed. It runs on demand; periodic execution is
// the caller's concern.
func (s *Service) PurgeOldEvents(ctx context.Context) (int64, error) {
	return s.store.DeleteEventsEndedBefore(ctx, s.now().Add(-purgeAge))
}
