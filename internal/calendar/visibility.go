package calendar

import (
	"sort"
	"sync"
	"time"

	"subjcal/internal/storage"
)

// ViewState is the per-session calendar view: the date being looked at, the
// loaded subjects, and which colors are currently toggled on. It lives for
// one session, is reset whenever the subjects are reloaded, and is never
// persisted.
type ViewState struct {
	mu          sync.Mutex
	currentDate time.Time
	subjects    []storage.Subject
	visible     map[string]struct{}
}

// NewViewState creates a view positioned at the given date with no subjects
// loaded yet.
func NewViewState(currentDate time.Time) *ViewState {
	return &ViewState{
		currentDate: currentDate,
		visible:     make(map[string]struct{}),
	}
}

// CurrentDate returns the date the view is positioned at.
func (v *ViewState) CurrentDate() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentDate
}

// SetCurrentDate moves the view to the given date.
func (v *ViewState) SetCurrentDate(date time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.currentDate = date
}

// Subjects returns the loaded subjects.
func (v *ViewState) Subjects() []storage.Subject {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]storage.Subject, len(v.subjects))
	copy(out, v.subjects)
	return out
}

// SetSubjects replaces the loaded subjects and resets the visible color set
// to the colors of the subjects marked active. Manual toggles do not
// survive a reload.
func (v *ViewState) SetSubjects(subjects []storage.Subject) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.subjects = make([]storage.Subject, len(subjects))
	copy(v.subjects, subjects)

	v.visible = make(map[string]struct{})
	for _, subject := range subjects {
		if subject.Active {
			v.visible[subject.Color] = struct{}{}
		}
	}
}

// ToggleColor flips the visibility of a color: present becomes absent,
// absent becomes present.
func (v *ViewState) ToggleColor(color string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.visible[color]; ok {
		delete(v.visible, color)
	} else {
		v.visible[color] = struct{}{}
	}
}

// ColorVisible reports whether events of the given color are shown. Events
// without a color are always shown; that is the default-show policy for
// uncolored events, not an oversight.
func (v *ViewState) ColorVisible(color string) bool {
	if color == "" {
		return true
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.visible[color]
	return ok
}

// VisibleColors returns the toggled-on colors, sorted for stable output.
func (v *ViewState) VisibleColors() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	colors := make([]string, 0, len(v.visible))
	for color := range v.visible {
		colors = append(colors, color)
	}
	sort.Strings(colors)
	return colors
}

// FilterVisible returns the subsequence of events whose color is toggled on
// or absent, preserving order.
func (v *ViewState) FilterVisible(events []storage.Event) []storage.Event {
	visible := make([]storage.Event, 0, len(events))
	for _, ev := range events {
		if v.ColorVisible(ev.Color) {
			visible = append(visible, ev)
		}
	}
	return visible
}
