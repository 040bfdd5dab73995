package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"subjcal/internal/storage"
	"subjcal/internal/storage/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewService(store, WithLocation(time.UTC))
	return svc, store
}

func TestSaveEvent_ValidationRejectsWithoutStoreCall(t *testing.T) {
	// A mock with no expectations fails the test on any store access, so
	// these cases also prove validation happens before any write.
	tests := []struct {
		name    string
		form    EventForm
		message string
	}{
		{
			name: "end before start",
			form: EventForm{
				Title:     "Standup",
				StartDate: "2024-01-01",
				StartTime: "10:00",
				EndDate:   "2024-01-01",
				EndTime:   "09:00",
			},
			message: "end date cannot be before start date",
		},
		{
			name: "recurring without weekdays",
			form: EventForm{
				Title:           "Standup",
				StartDate:       "2024-01-01",
				StartTime:       "10:00",
				Recurring:       true,
				DurationMinutes: 30,
				RecurrenceEnd:   "2024-01-15",
			},
			message: "select at least one day for recurring events",
		},
		{
			name: "recurring without end date",
			form: EventForm{
				Title:           "Standup",
				StartDate:       "2024-01-01",
				StartTime:       "10:00",
				Recurring:       true,
				DurationMinutes: 30,
				Weekdays:        []int{1},
			},
			message: "select an end date for recurring events",
		},
		{
			name: "recurrence end before start",
			form: EventForm{
				Title:           "Standup",
				StartDate:       "2024-01-10",
				StartTime:       "10:00",
				Recurring:       true,
				DurationMinutes: 30,
				Weekdays:        []int{1},
				RecurrenceEnd:   "2024-01-05",
			},
			message: "recurrence end date must be after start date",
		},
		{
			name:    "missing start date",
			form:    EventForm{Title: "Standup"},
			message: "start date is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(storage.MockStore)
			svc := NewService(store, WithLocation(time.UTC))

			events, err := svc.SaveEvent(context.Background(), tt.form)
			assert.Nil(t, events)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.message, ve.Message)
			store.AssertExpectations(t)
		})
	}
}

func TestSaveEvent_SingleCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	events, err := svc.SaveEvent(ctx, EventForm{
		Title:     "Lecture",
		StartDate: "2024-03-04",
		StartTime: "09:15",
		EndDate:   "2024-03-04",
		EndTime:   "10:45",
		Location:  "Room 12",
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "Lecture", ev.Title)
	assert.Equal(t, time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC), ev.Start)
	assert.Equal(t, time.Date(2024, 3, 4, 10, 45, 0, 0, time.UTC), ev.End)
	assert.Equal(t, "Room 12", ev.Location)

	// No subject on the form: the save resolves to the auto-created
	// "Other" subject and adopts its identifier and color.
	subjects, err := svc.ListSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, OtherSubjectName, subjects[0].Name)
	assert.True(t, subjects[0].Active)
	assert.Equal(t, subjects[0].ID, ev.Subject)
	assert.Equal(t, subjects[0].Color, ev.Color)
}

func TestSaveEvent_OtherSubjectCreatedOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	form := EventForm{
		Title:     "One",
		StartDate: "2024-03-04",
		StartTime: "09:00",
		EndTime:   "10:00",
	}
	_, err := svc.SaveEvent(ctx, form)
	require.NoError(t, err)
	form.Title = "Two"
	_, err = svc.SaveEvent(ctx, form)
	require.NoError(t, err)

	subjects, err := svc.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Len(t, subjects, 1)
}

func TestSaveEvent_AllDayNormalization(t *testing.T) {
	svc, _ := newTestService(t)

	events, err := svc.SaveEvent(context.Background(), EventForm{
		Title:     "Holiday",
		StartDate: "2024-06-01",
		EndDate:   "2024-06-01",
		AllDay:    true,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), events[0].Start)
	assert.Equal(t, time.Date(2024, 6, 1, 23, 59, 59, 999_000_000, time.UTC), events[0].End)
	assert.True(t, events[0].AllDay)
}

func TestSaveEvent_SubjectColorAuthoritative(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	subject, err := svc.CreateSubject(ctx, storage.SubjectFields{
		Name:   "Math",
		Color:  "#112233",
		Active: true,
	})
	require.NoError(t, err)

	events, err := svc.SaveEvent(ctx, EventForm{
		StartDate: "2024-03-04",
		StartTime: "09:00",
		EndTime:   "10:00",
		Subject:   subject.ID,
		Color:     "#FFFFFF", // stale form value, must lose
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "#112233", events[0].Color)
	assert.Equal(t, subject.ID, events[0].Subject)
	// Blank title falls back to the subject name.
	assert.Equal(t, "Math", events[0].Title)
}

func TestSaveEvent_DeletedSubjectReferenceKeepsFormColor(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	subject, err := svc.CreateSubject(ctx, storage.SubjectFields{Name: "Gone", Color: "#0000FF", Active: true})
	require.NoError(t, err)
	require.NoError(t, store.DeleteSubject(ctx, subject.ID))

	events, err := svc.SaveEvent(ctx, EventForm{
		StartDate: "2024-03-04",
		StartTime: "09:00",
		EndTime:   "10:00",
		Subject:   subject.ID,
		Color:     "#ABCDEF",
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "#ABCDEF", events[0].Color)
	assert.Equal(t, subject.ID, events[0].Subject)
	assert.Equal(t, PlaceholderTitle, events[0].Title)
}

func TestSaveEvent_UpdateReplacesAllFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.SaveEvent(ctx, EventForm{
		Title:       "Before",
		Description: "old",
		StartDate:   "2024-03-04",
		StartTime:   "09:00",
		EndTime:     "10:00",
	})
	require.NoError(t, err)

	updated, err := svc.SaveEvent(ctx, EventForm{
		ID:        created[0].ID,
		Title:     "After",
		StartDate: "2024-03-05",
		StartTime: "11:00",
		EndDate:   "2024-03-05",
		EndTime:   "12:00",
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)

	assert.Equal(t, created[0].ID, updated[0].ID)
	assert.Equal(t, "After", updated[0].Title)
	// Full replacement, not a merge: the old description is gone.
	assert.Empty(t, updated[0].Description)
	assert.Equal(t, time.Date(2024, 3, 5, 11, 0, 0, 0, time.UTC), updated[0].Start)

	all, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveEvent_RecurringCreatesIndependentEvents(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	events, err := svc.SaveEvent(ctx, EventForm{
		Title:           "Gym",
		StartDate:       "2024-01-01", // Monday
		StartTime:       "09:00",
		Recurring:       true,
		DurationMinutes: 60,
		Weekdays:        []int{1, 3},
		RecurrenceEnd:   "2024-01-15",
	})
	require.NoError(t, err)
	require.Len(t, events, 5)

	days := make([]int, 0, len(events))
	for _, ev := range events {
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, "Gym", ev.Title)
		assert.Equal(t, time.Hour, ev.End.Sub(ev.Start))
		days = append(days, ev.Start.Day())
	}
	assert.Equal(t, []int{1, 3, 8, 10, 15}, days)
}

func TestSaveEvent_RecurringIgnoresExistingID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	existing, err := svc.SaveEvent(ctx, EventForm{
		Title:     "Original",
		StartDate: "2024-01-01",
		StartTime: "08:00",
		EndTime:   "09:00",
	})
	require.NoError(t, err)

	// There is no series linkage: a recurring save while editing an
	// existing event only generates new occurrences.
	created, err := svc.SaveEvent(ctx, EventForm{
		ID:              existing[0].ID,
		Title:           "Original",
		StartDate:       "2024-01-01",
		StartTime:       "08:00",
		Recurring:       true,
		DurationMinutes: 30,
		Weekdays:        []int{1},
		RecurrenceEnd:   "2024-01-08",
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	all, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveEvent_PartialBatchFailure(t *testing.T) {
	store := new(storage.MockStore)
	svc := NewService(store, WithLocation(time.UTC))
	ctx := context.Background()

	subject := storage.Subject{
		ID:            "subj-1",
		SubjectFields: storage.SubjectFields{Name: "Math", Color: "#112233", Active: true},
	}
	store.On("ListSubjects", mock.Anything).Return([]storage.Subject{subject}, nil)

	inserted := storage.Event{ID: "ev-1"}
	writeErr := &storage.Error{Type: storage.ErrUnavailable, Message: "write failed"}
	store.On("InsertEvent", mock.Anything, mock.Anything).Return(inserted, nil).Twice()
	store.On("InsertEvent", mock.Anything, mock.Anything).Return(storage.Event{}, writeErr).Once()

	events, err := svc.SaveEvent(ctx, EventForm{
		Title:           "Gym",
		Subject:         "subj-1",
		StartDate:       "2024-01-01",
		StartTime:       "09:00",
		Recurring:       true,
		DurationMinutes: 60,
		Weekdays:        []int{1, 3},
		RecurrenceEnd:   "2024-01-15", // would expand to 5 occurrences
	})

	// The two successful writes stay persisted and are reported.
	assert.Len(t, events, 2)

	var pse *PartialSaveError
	require.ErrorAs(t, err, &pse)
	assert.Equal(t, 2, pse.Written)
	assert.Equal(t, 5, pse.Total)
	assert.ErrorIs(t, pse, writeErr)
	store.AssertExpectations(t)
}

func TestSaveEvent_EnsureSubjectBeforeEventWrite(t *testing.T) {
	store := new(storage.MockStore)
	svc := NewService(store, WithLocation(time.UTC))
	ctx := context.Background()

	other := storage.Subject{
		ID:            "other-1",
		SubjectFields: storage.SubjectFields{Name: OtherSubjectName, Color: DefaultSubjectColor, Active: true},
	}

	var subjectCreated bool
	store.On("ListSubjects", mock.Anything).Return([]storage.Subject{}, nil).Once()
	store.On("InsertSubject", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		subjectCreated = true
	}).Return(other, nil).Once()
	store.On("InsertEvent", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		// The subject write must have completed before any event write so
		// the event never references a subject that does not exist.
		assert.True(t, subjectCreated)
		fields := args.Get(1).(storage.EventFields)
		assert.Equal(t, "other-1", fields.Subject)
	}).Return(storage.Event{ID: "ev-1"}, nil).Once()

	_, err := svc.SaveEvent(ctx, EventForm{
		Title:     "Errand",
		StartDate: "2024-03-04",
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestPurgeOldEvents(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	store := memory.New()
	svc := NewService(store, WithLocation(time.UTC), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	old := storage.EventFields{
		Title: "Old",
		Start: now.Add(-72 * time.Hour),
		End:   now.Add(-48 * time.Hour),
		Color: "#111111",
	}
	recent := storage.EventFields{
		Title: "Recent",
		Start: now.Add(-12 * time.Hour),
		End:   now.Add(-6 * time.Hour),
		Color: "#222222",
	}
	_, err := store.InsertEvent(ctx, old)
	require.NoError(t, err)
	_, err = store.InsertEvent(ctx, recent)
	require.NoError(t, err)

	count, err := svc.PurgeOldEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	remaining, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Recent", remaining[0].Title)
}

func TestCreateEvent_RequiredFields(t *testing.T) {
	store := new(storage.MockStore)
	svc := NewService(store, WithLocation(time.UTC))

	_, err := svc.CreateEvent(context.Background(), storage.EventFields{
		Start: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	store.AssertExpectations(t)
}

func TestCreateEvent_EndBeforeStartRejected(t *testing.T) {
	store := new(storage.MockStore)
	svc := NewService(store, WithLocation(time.UTC))

	_, err := svc.CreateEvent(context.Background(), storage.EventFields{
		Title: "Backwards",
		Start: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "end date cannot be before start date", ve.Message)
	store.AssertExpectations(t)
}

func TestDeleteEvent_NotFoundSurfaced(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.DeleteEvent(context.Background(), "71b4f3cf-1f09-4e2f-b392-1074c02a4fbe")
	assert.True(t, storage.IsType(err, storage.ErrNotFound))
}

func TestDeleteEvent_InvalidIDDistinctFromNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.DeleteEvent(context.Background(), "not-a-valid-id")
	assert.True(t, storage.IsType(err, storage.ErrInvalidID))
	assert.False(t, storage.IsType(err, storage.ErrNotFound))
}

func TestSaveEvent_StoreErrorPassedThrough(t *testing.T) {
	store := new(storage.MockStore)
	svc := NewService(store, WithLocation(time.UTC))

	listErr := errors.New("connection refused")
	store.On("ListSubjects", mock.Anything).Return(nil, &storage.Error{
		Type: storage.ErrUnavailable, Message: "list subjects", Err: listErr,
	})

	_, err := svc.SaveEvent(context.Background(), EventForm{
		StartDate: "2024-03-04",
		StartTime: "09:00",
		EndTime:   "10:00",
		Subject:   "subj-1",
	})
	assert.True(t, storage.IsType(err, storage.ErrUnavailable))
	store.AssertExpectations(t)
}
