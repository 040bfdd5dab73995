package calendar

import (
	"context"
	"strings"
	"time"

	"github.com/samber/mo"

	"subjcal/internal/recurrence"
	"subjcal/internal/storage"
)

const (
	formDateLayout = "2006-01-02"
	formTimeLayout = "15:04"
)

// EventForm is a save request as submitted by the event dialog. Dates and
// times arrive as separate fields; the effective start and end instants are
// computed here, not by the client.
type EventForm struct {
	// ID is the identifier of an existing event being edited, or blank for
	// a new event.
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Color       string `json:"color"`
	// Subject references a registry subject by id; blank means
	// uncategorized, which resolves to the fallback "Other" subject.
	Subject string `json:"subject"`

	StartDate string `json:"startDate"` // 2006-01-02
	EndDate   string `json:"endDate"`
	StartTime string `json:"startTime"` // 15:04
	EndTime   string `json:"endTime"`
	AllDay    bool   `json:"allDay"`

	Recurring       bool   `json:"recurring"`
	DurationMinutes int    `json:"durationMinutes"`
	Weekdays        []int  `json:"weekdays"` // 0=Sunday .. 6=Saturday
	RecurrenceEnd   string `json:"recurrenceEnd"`
}

// SaveEvent validates the form, resolves the effective subject and color,
// and persists either a single event or, for a recurring save, one event
// per expanded occurrence. Validation is fail-fast: the first violated rule
// is returned and nothing is written.
//
// Recurring saves are never "edit the series": occurrences carry no link to
// each other, so a recurring save always inserts fresh events even when the
// form carries an existing id. Occurrence inserts are independent writes;
// on failure the already-written prefix stays persisted and the error
// reports how many made it (*PartialSaveError).
func (s *Service) SaveEvent(ctx context.Context, form EventForm) ([]storage.Event, error) {
	start, end, err := s.computeWindow(form)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, errEndBeforeStart
	}

	var until time.Time
	if form.Recurring {
		if len(form.Weekdays) == 0 {
			return nil, errNoWeekdays
		}
		if form.RecurrenceEnd == "" {
			return nil, errNoRecurrenceEnd
		}
		until, err = time.ParseInLocation(formDateLayout, form.RecurrenceEnd, s.loc)
		if err != nil {
			return nil, &ValidationError{Message: "invalid recurrence end date: " + form.RecurrenceEnd}
		}
		startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.loc)
		if until.Before(startDay) {
			return nil, errRecurrenceEndTooEarly
		}
		if form.DurationMinutes <= 0 {
			return nil, errInvalidDuration
		}
	}

	// Subject auto-creation must complete before any event write so no
	// event ever references a subject that does not exist yet.
	resolved, err := s.resolveSubject(ctx, form.Subject)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(form.Title)
	color := form.Color
	subjectID := form.Subject
	if subject, ok := resolved.Get(); ok {
		subjectID = subject.ID
		color = subject.Color
		if title == "" {
			title = subject.Name
		}
	}
	if title == "" {
		title = PlaceholderTitle
	}
	if color == "" {
		color = DefaultEventColor
	}

	if !form.Recurring {
		fields := storage.EventFields{
			Title:       title,
			Description: form.Description,
			Start:       start,
			End:         end,
			AllDay:      form.AllDay,
			Location:    form.Location,
			Color:       color,
			Subject:     subjectID,
		}

		var ev storage.Event
		if form.ID == "" {
			ev, err = s.store.InsertEvent(ctx, fields)
		} else {
			ev, err = s.store.ReplaceEvent(ctx, form.ID, fields)
		}
		if err != nil {
			return nil, err
		}
		return []storage.Event{ev}, nil
	}

	weekdays := make([]time.Weekday, 0, len(form.Weekdays))
	for _, wd := range form.Weekdays {
		if wd < 0 || wd > 6 {
			return nil, &ValidationError{Message: "weekday index out of range"}
		}
		weekdays = append(weekdays, time.Weekday(wd))
	}

	occurrences, err := s.engine.Expand(start, recurrence.Rule{
		Weekdays:        weekdays,
		Until:           until,
		DurationMinutes: form.DurationMinutes,
	}, recurrence.Template{
		Title:       title,
		Description: form.Description,
		Location:    form.Location,
		Color:       color,
		Subject:     subjectID,
	})
	if err != nil {
		return nil, err
	}

	events := make([]storage.Event, 0, len(occurrences))
	for i, fields := range occurrences {
		ev, err := s.store.InsertEvent(ctx, fields)
		if err != nil {
			return events, &PartialSaveError{Written: i, Total: len(occurrences), Err: err}
		}
		events = append(events, ev)
	}
	return events, nil
}

// computeWindow derives the effective start and end instants from the form's
// date and time fields.
func (s *Service) computeWindow(form EventForm) (start, end time.Time, err error) {
	if form.StartDate == "" {
		return start, end, errMissingStartDate
	}
	startDay, err := time.ParseInLocation(formDateLayout, form.StartDate, s.loc)
	if err != nil {
		return start, end, &ValidationError{Message: "invalid start date: " + form.StartDate}
	}
	endDay := startDay
	if form.EndDate != "" {
		endDay, err = time.ParseInLocation(formDateLayout, form.EndDate, s.loc)
		if err != nil {
			return start, end, &ValidationError{Message: "invalid end date: " + form.EndDate}
		}
	}

	if form.AllDay {
		// Local-day boundaries: 00:00:00.000 through 23:59:59.999.
		start = startDay
		end = time.Date(endDay.Year(), endDay.Month(), endDay.Day(),
			23, 59, 59, 999_000_000, s.loc)
		return start, end, nil
	}

	startHour, startMin, err := parseClock(form.StartTime)
	if err != nil {
		return start, end, &ValidationError{Message: "invalid start time: " + form.StartTime}
	}
	start = time.Date(startDay.Year(), startDay.Month(), startDay.Day(),
		startHour, startMin, 0, 0, s.loc)

	if form.Recurring {
		// Recurring saves describe each occurrence by duration; validated
		// and applied during expansion. The base end exists only for the
		// ordering check.
		if form.DurationMinutes <= 0 {
			return start, end, errInvalidDuration
		}
		end = time.Date(start.Year(), start.Month(), start.Day(),
			start.Hour(), start.Minute()+form.DurationMinutes, 0, 0, s.loc)
		return start, end, nil
	}

	endHour, endMin, err := parseClock(form.EndTime)
	if err != nil {
		return start, end, &ValidationError{Message: "invalid end time: " + form.EndTime}
	}
	end = time.Date(endDay.Year(), endDay.Month(), endDay.Day(),
		endHour, endMin, 0, 0, s.loc)
	return start, end, nil
}

func parseClock(value string) (hour, minute int, err error) {
	t, err := time.Parse(formTimeLayout, value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// resolveSubject maps the form's subject reference to the registry subject
// that governs this save. A blank reference resolves to the "Other"
// subject, creating it on first use. A reference to a subject that has
// since been deleted resolves to none; the form's own color and title
// fallbacks then apply, matching how events outlive their subject.
func (s *Service) resolveSubject(ctx context.Context, subjectID string) (mo.Option[storage.Subject], error) {
	if subjectID == "" {
		subject, err := s.EnsureSubject(ctx, OtherSubjectName)
		if err != nil {
			return mo.None[storage.Subject](), err
		}
		return mo.Some(subject), nil
	}

	subjects, err := s.store.ListSubjects(ctx)
	if err != nil {
		return mo.None[storage.Subject](), err
	}
	for _, subject := range subjects {
		if subject.ID == subjectID {
			return mo.Some(subject), nil
		}
	}
	return mo.None[storage.Subject](), nil
}
