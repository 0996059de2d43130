package export

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

// CalendarEvent is a single all-day entry in an iCalendar feed. End is inclusive.
type CalendarEvent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Tentative   bool
	Stamp       time.Time
}

// ICSContentType is the MIME type of RenderCalendar output.
const ICSContentType = "text/calendar; charset=utf-8"

// RenderCalendar serializes events into a VCALENDAR document.
func RenderCalendar(name string, events []CalendarEvent) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//edu-fleet-api//reservations//EN")
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, ev := range events {
		vevent := cal.AddEvent(ev.UID)
		stamp := ev.Stamp
		if stamp.IsZero() {
			stamp = time.Now().UTC()
		}
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(ev.Summary)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}
		vevent.SetAllDayStartAt(ev.Start)
		// DTEND of an all-day event is exclusive.
		vevent.SetAllDayEndAt(ev.End.AddDate(0, 0, 1))
		if ev.Tentative {
			vevent.SetStatus(ics.ObjectStatusTentative)
		} else {
			vevent.SetStatus(ics.ObjectStatusConfirmed)
		}
	}

	return []byte(cal.Serialize())
}
