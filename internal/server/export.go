package server

import (
	"bytes"
	"net/http"

	"github.com/emersion/go-ical"
)

// stubVCalendar is served when there are no events, so clients always get a
// valid feed.
const stubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//subjcal//Calendar//EN\r\nEND:VCALENDAR\r\n"

// handleExport serializes all stored events into a single iCalendar feed.
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) {
	events, err := r.svc.ListEvents(req.Context())
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, "-//subjcal//Calendar//EN")
	cal.Props.SetText(ical.PropVersion, "2.0")

	now := r.now().UTC()
	for _, ev := range events {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, ev.ID)
		event.Props.SetText(ical.PropSummary, ev.Title)
		if ev.Description != "" {
			event.Props.SetText(ical.PropDescription, ev.Description)
		}
		if ev.Location != "" {
			event.Props.SetText(ical.PropLocation, ev.Location)
		}
		if ev.Color != "" {
			event.Props.SetText(ical.PropColor, ev.Color)
		}
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)

		if ev.AllDay {
			startProp := ical.NewProp(ical.PropDateTimeStart)
			startProp.SetDate(ev.Start)
			event.Props.Set(startProp)

			endProp := ical.NewProp(ical.PropDateTimeEnd)
			endProp.SetDate(ev.End)
			event.Props.Set(endProp)
		} else {
			event.Props.SetDateTime(ical.PropDateTimeStart, ev.Start)
			event.Props.SetDateTime(ical.PropDateTimeEnd, ev.End)
		}

		cal.Children = append(cal.Children, event.Component)
	}

	w.Header().Set(HeaderContentType, MimeTypeCalendar)
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)

	if len(cal.Children) == 0 {
		if _, err := w.Write([]byte(stubVCalendar)); err != nil {
			r.logger.Error("failed to write calendar stub", "error", err)
		}
		return
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		r.logger.Error("failed to encode calendar", "error", err)
		r.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to encode calendar"})
		return
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		r.logger.Error("failed to write calendar", "error", err)
	}
}
