package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
)

const icsProdID = "-//Explore Stoneham//Community Calendar//EN"

// GenerateICS renders a consolidated event list as an iCalendar document
// suitable for subscription by external calendar apps.
func GenerateICS(events []event.Event, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProdID)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName("Explore Stoneham Events")

	for _, evt := range events {
		ve := cal.AddEvent(fmt.Sprintf("%s@explorestoneham.org", evt.ID))
		ve.SetDtStampTime(now.UTC())
		ve.SetStartAt(evt.StartDate.UTC())
		ve.SetEndAt(evt.EndDate.UTC())
		ve.SetSummary(evt.Title)
		if evt.Location != "" {
			ve.SetLocation(evt.Location)
		}
		if evt.Description != "" {
			ve.SetDescription(evt.Description)
		}
		if evt.URL != "" {
			ve.SetURL(evt.URL)
		}
		ve.SetStatus(ics.ObjectStatusConfirmed)
	}

	// RFC 5545 requires CRLF line endings regardless of platform.
	return cal.Serialize(ics.WithNewLineWindows)
}
