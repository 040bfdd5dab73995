package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorType classifies store failures so callers can react to each kind
// distinctly. Invalid identifiers are deliberately not folded into
// not_found: a malformed id is a caller bug, a missing id is normal churn.
type ErrorType string

const (
	ErrNotFound     ErrorType = "not_found"
	ErrInvalidID    ErrorType = "invalid_id"
	ErrInvalidInput ErrorType = "invalid_input"
	ErrUnavailable  ErrorType = "unavailable"
)

// Error represents a storage-related error.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsType reports whether err is a storage Error of the given type.
func IsType(err error, t ErrorType) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == t
}

// EventFields holds the mutable fields of an event, everything except the
// identifier and the server-assigned timestamps.
type EventFields struct {
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Start       time.Time `json:"start" yaml:"start"`
	End         time.Time `json:"end" yaml:"end"`
	AllDay      bool      `json:"allDay" yaml:"all_day"`
	Location    string    `json:"location,omitempty" yaml:"location,omitempty"`
	Color       string    `json:"color" yaml:"color"`
	// Subject is the identifier of the owning subject, empty when the
	// event is uncategorized. The store never interprets it.
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

// Event is an EventFields record as persisted, with its store-assigned
// identifier and timestamps.
type Event struct {
	ID       string    `json:"id"`
	Created  time.Time `json:"createdAt,omitempty"`
	Modified time.Time `json:"updatedAt,omitempty"`
	EventFields
}

// SubjectFields holds the mutable fields of a subject.
type SubjectFields struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
	// Active controls default visibility only; inactive subjects still
	// exist and still own events.
	Active bool `json:"isActive" yaml:"active"`
}

// Subject is a SubjectFields record as persisted.
type Subject struct {
	ID       string    `json:"id"`
	Created  time.Time `json:"createdAt,omitempty"`
	Modified time.Time `json:"updatedAt,omitempty"`
	SubjectFields
}

// EventStore is the persistence contract for events. Identifiers are opaque
// strings assigned by the store on insert; implementations must report a
// malformed identifier as ErrInvalidID, never as ErrNotFound.
type EventStore interface {
	// ListEvents returns every stored event.
	ListEvents(ctx context.Context) ([]Event, error)
	// InsertEvent persists a new event and returns it with its assigned id.
	InsertEvent(ctx context.Context, fields EventFields) (Event, error)
	// ReplaceEvent replaces all mutable fields of the event with the given
	// id. The previous fields are not merged.
	ReplaceEvent(ctx context.Context, id string, fields EventFields) (Event, error)
	// DeleteEvent removes a single event by id.
	DeleteEvent(ctx context.Context, id string) error
	// DeleteEventsEndedBefore removes every event whose end instant lies
	// before cutoff and returns how many were removed.
	DeleteEventsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SubjectStore is the persistence contract for subjects. Deleting a subject
// never touches events that reference it; deleting an id that is already
// gone is not an error.
type SubjectStore interface {
	ListSubjects(ctx context.Context) ([]Subject, error)
	InsertSubject(ctx context.Context, fields SubjectFields) (Subject, error)
	ReplaceSubject(ctx context.Context, id string, fields SubjectFields) (Subject, error)
	DeleteSubject(ctx context.Context, id string) error
}

// Store combines both collections behind one backend.
type Store interface {
	EventStore
	SubjectStore
}
