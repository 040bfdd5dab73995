// Package recurrence turns a weekly repeat rule into the concrete event
// instances it stands for. The rule itself is never persisted: each produced
// instance is an independent record with no link back to its siblings.
package recurrence

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"subjcal/internal/storage"
)

var (
	// ErrNoWeekdays is returned when the weekday set is empty.
	ErrNoWeekdays = errors.New("recurrence: weekday set is empty")
	// ErrInvalidDuration is returned for a non-positive occurrence duration.
	ErrInvalidDuration = errors.New("recurrence: duration must be positive")
	// ErrUntilBeforeStart is returned when the inclusive end date precedes
	// the start date.
	ErrUntilBeforeStart = errors.New("recurrence: end date precedes start date")
)

// rruleWeekdays maps weekday indices (0=Sunday..6=Saturday) to rrule values.
var rruleWeekdays = [...]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// Template carries the fields shared by every produced occurrence.
type Template struct {
	Title       string
	Description string
	Location    string
	Color       string
	Subject     string
}

// Rule describes a weekly repeat: which weekdays occur, the last
// calendar day that may still produce an occurrence, and how long each
// occurrence lasts.
type Rule struct {
	Weekdays        []time.Weekday
	Until           time.Time
	DurationMinutes int
}

// Engine expands weekly recurrence rules.
type Engine struct{}

// NewEngine creates a new recurrence engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Expand produces one event per calendar day in [start's day, rule.Until]
// whose weekday is in rule.Weekdays, ordered by time. Each occurrence keeps
// the start's wall-clock time of day (seconds zeroed) in start's location,
// so a range crossing a DST transition keeps the entered hour rather than a
// fixed UTC offset. The whole sequence is materialized eagerly; callers
// need the count before issuing writes.
func (e *Engine) Expand(start time.Time, rule Rule, tmpl Template) ([]storage.EventFields, error) {
	if len(rule.Weekdays) == 0 {
		return nil, ErrNoWeekdays
	}
	if rule.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	loc := start.Location()
	start = time.Date(start.Year(), start.Month(), start.Day(),
		start.Hour(), start.Minute(), 0, 0, loc)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	untilDay := time.Date(rule.Until.Year(), rule.Until.Month(), rule.Until.Day(), 0, 0, 0, 0, loc)
	if untilDay.Before(startDay) {
		return nil, ErrUntilBeforeStart
	}

	byweekday := make([]rrule.Weekday, 0, len(rule.Weekdays))
	seen := make(map[time.Weekday]bool, len(rule.Weekdays))
	for _, wd := range rule.Weekdays {
		if wd < time.Sunday || wd > time.Saturday || seen[wd] {
			continue
		}
		seen[wd] = true
		byweekday = append(byweekday, rruleWeekdays[wd])
	}
	if len(byweekday) == 0 {
		return nil, ErrNoWeekdays
	}

	// Until is inclusive at day granularity, so bound the rule at the end
	// of that day rather than at the start's time of day.
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   start,
		Until:     time.Date(untilDay.Year(), untilDay.Month(), untilDay.Day(), 23, 59, 59, 0, loc),
		Byweekday: byweekday,
	})
	if err != nil {
		return nil, err
	}

	starts := r.All()
	occurrences := make([]storage.EventFields, 0, len(starts))
	for _, occStart := range starts {
		// Wall-clock minute addition, matching how the entered duration is
		// understood on a transition day.
		occEnd := time.Date(occStart.Year(), occStart.Month(), occStart.Day(),
			occStart.Hour(), occStart.Minute()+rule.DurationMinutes, 0, 0, loc)

		occurrences = append(occurrences, storage.EventFields{
			Title:       tmpl.Title,
			Description: tmpl.Description,
			Start:       occStart,
			End:         occEnd,
			AllDay:      false,
			Location:    tmpl.Location,
			Color:       tmpl.Color,
			Subject:     tmpl.Subject,
		})
	}
	return occurrences, nil
}
