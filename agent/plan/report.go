package plan

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

const (
	noFlightsNotice = "No flight data available at the moment. Please check popular flight booking websites."
	closingLine     = "I hope you like your travel plan! Is there anything specific about the itinerary you'd like me to explain or modify?"
)

type reportInput struct {
	slots     statex.SlotState
	flights   []contractx.Flight
	currency  string
	lodging   string
	itinerary string
}

func renderReport(in reportInput) string {
	s := in.slots
	var b strings.Builder

	fmt.Fprintf(&b, "## 🎉 Your Travel Plan to %s is ready!\n\n", s.Destination)
	b.WriteString("### Travel Details:\n")
	fmt.Fprintf(&b, "- **From:** %s to %s\n", s.Source, s.Destination)
	fmt.Fprintf(&b, "- **Dates:** %s to %s (%d days)\n",
		s.DepartureDate.Format(time.DateOnly), s.ReturnDate.Format(time.DateOnly), s.TripDays())
	fmt.Fprintf(&b, "- **Style:** %s\n", s.TravelTheme.Decorated())
	fmt.Fprintf(&b, "- **Budget:** %s\n\n", s.Budget)

	b.WriteString("**✈️ Best Flight Options:**\n\n")
	if len(in.flights) == 0 {
		b.WriteString(noFlightsNotice + "\n\n")
	}
	for i, f := range in.flights {
		fmt.Fprintf(&b, "**Option %d:**\n%s\n\n", i+1, FormatFlight(f, in.currency))
	}

	b.WriteString("### 🏨 Accommodation & Dining Recommendations:\n")
	b.WriteString(strings.TrimSpace(in.lodging))
	b.WriteString("\n\n### 🗓️ Your Itinerary:\n")
	b.WriteString(strings.TrimSpace(in.itinerary))
	b.WriteString("\n\n---\n")
	b.WriteString(closingLine)
	return b.String()
}
