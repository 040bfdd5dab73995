package storage

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockStore implements the Store interface for testing.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListEvents(ctx context.Context) ([]Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Event), args.Error(1)
}

func (m *MockStore) InsertEvent(ctx context.Context, fields EventFields) (Event, error) {
	args := m.Called(ctx, fields)
	return args.Get(0).(Event), args.Error(1)
}

func (m *MockStore) ReplaceEvent(ctx context.Context, id string, fields EventFields) (Event, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(Event), args.Error(1)
}

func (m *MockStore) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) DeleteEventsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListSubjects(ctx context.Context) ([]Subject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Subject), args.Error(1)
}

func (m *MockStore) InsertSubject(ctx context.Context, fields SubjectFields) (Subject, error) {
	args := m.Called(ctx, fields)
	return args.Get(0).(Subject), args.Error(1)
}

func (m *MockStore) ReplaceSubject(ctx context.Context, id string, fields SubjectFields) (Subject, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(Subject), args.Error(1)
}

func (m *MockStore) DeleteSubject(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
