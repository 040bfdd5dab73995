package calendar

import (
	"context"
	"strings"

	"subjcal/internal/storage"
)

// OtherSubjectName is the fallback subject adopted by events saved without
// a subject reference.
const OtherSubjectName = "Other"

// DefaultSubjectColor is the color given to subjects created without one,
// including the auto-created "Other" subject.
const DefaultSubjectColor = DefaultEventColor

// ListSubjects returns every registered subject.
func (s *Service) ListSubjects(ctx context.Context) ([]storage.Subject, error) {
	return s.store.ListSubjects(ctx)
}

// CreateSubject registers a new subject. The name is required; a missing
// color falls back to the default.
func (s *Service) CreateSubject(ctx context.Context, fields storage.SubjectFields) (storage.Subject, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return storage.Subject{}, errSubjectNameRequired
	}
	if fields.Color == "" {
		fields.Color = DefaultSubjectColor
	}
	return s.store.InsertSubject(ctx, fields)
}

// UpdateSubject replaces a subject's fields in place. Events referencing it
// keep whatever color was persisted on them; the drift is accepted until
// their next save.
func (s *Service) UpdateSubject(ctx context.Context, id string, fields storage.SubjectFields) (storage.Subject, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return storage.Subject{}, errSubjectNameRequired
	}
	if fields.Color == "" {
		fields.Color = DefaultSubjectColor
	}
	return s.store.ReplaceSubject(ctx, id, fields)
}

// EnsureSubject returns the subject with exactly the given name, creating
// it with the default color and active=true when absent. Calling it twice
// with the same name never creates two subjects.
func (s *Service) EnsureSubject(ctx context.Context, name string) (storage.Subject, error) {
	if strings.TrimSpace(name) == "" {
		return storage.Subject{}, errSubjectNameRequired
	}

	subjects, err := s.store.ListSubjects(ctx)
	if err != nil {
		return storage.Subject{}, err
	}
	for _, subject := range subjects {
		if subject.Name == name {
			return subject, nil
		}
	}

	return s.store.InsertSubject(ctx, storage.SubjectFields{
		Name:   name,
		Color:  DefaultSubjectColor,
		Active: true,
	})
}

// DeleteSubject removes a subject from the registry. Events referencing it
// are left untouched.
func (s *Service) DeleteSubject(ctx context.Context, id string) error {
	return s.store.DeleteSubject(ctx, id)
}
