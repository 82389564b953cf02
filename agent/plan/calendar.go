package plan

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

const calendarProductID = "-//Chative//Travel Planner//EN"

// Calendar renders the trip as a single all-day iCalendar event. DTEND is exclusive,
// so the event ends the day after the return date.
func Calendar(sessionID string, slots statex.SlotState, now time.Time) (string, error) {
	if slots.DepartureDate == nil || slots.ReturnDate == nil || slots.Destination == "" {
		return "", fmt.Errorf("%w: calendar needs destination and both dates", contractx.ErrIncompleteSlots)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	event := cal.AddEvent(fmt.Sprintf("%s-%s@travel-planner", sessionID, slots.DepartureDate.Format("20060102")))
	event.SetCreatedTime(now.UTC())
	event.SetDtStampTime(now.UTC())
	event.SetSummary("Trip to " + slots.Destination)
	event.SetLocation(slots.Destination)
	event.SetDescription(calendarDescription(slots))
	event.SetAllDayStartAt(*slots.DepartureDate)
	event.SetAllDayEndAt(slots.ReturnDate.AddDate(0, 0, 1))

	return cal.Serialize(), nil
}

func calendarDescription(slots statex.SlotState) string {
	parts := []string{}
	if slots.Source != "" {
		parts = append(parts, fmt.Sprintf("From %s to %s", slots.Source, slots.Destination))
	}
	if slots.TravelTheme != "" {
		parts = append(parts, "Style: "+string(slots.TravelTheme))
	}
	if slots.Budget != "" {
		parts = append(parts, "Budget: "+string(slots.Budget))
	}
	if len(slots.Activities) > 0 {
		parts = append(parts, "Activities: "+strings.Join(slots.Activities, ", "))
	}
	return strings.Join(parts, "; ")
}
