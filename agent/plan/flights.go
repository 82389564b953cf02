package plan

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	serpapix "github.com/tanpawarit/Chative-Travel-Planner/pkg/serpapi"
)

const (
	serpTimeLayout    = "2006-01-02 15:04"
	displayTimeLayout = "Jan-02, 2006 | 03:04 PM"
	maxFlightOptions  = 3
)

// SerpFlights adapts the SerpAPI google_flights engine to FlightSearcher.
type SerpFlights struct {
	client *serpapix.Client
}

var _ contractx.FlightSearcher = (*SerpFlights)(nil)

func NewSerpFlights(client *serpapix.Client) *SerpFlights {
	return &SerpFlights{client: client}
}

func (s *SerpFlights) SearchFlights(ctx context.Context, q contractx.FlightQuery) (contractx.FlightResults, error) {
	resp, err := s.client.SearchFlights(ctx, serpapix.FlightQuery{
		DepartureID:  q.Source,
		ArrivalID:    q.Destination,
		OutboundDate: q.DepartureDate.Format(time.DateOnly),
		ReturnDate:   q.ReturnDate.Format(time.DateOnly),
	})
	if err != nil {
		return contractx.FlightResults{}, fmt.Errorf("%w: %v", contractx.ErrSearchUnavailable, err)
	}

	out := contractx.FlightResults{BestFlights: make([]contractx.Flight, 0, len(resp.BestFlights))}
	for _, f := range resp.BestFlights {
		flight := contractx.Flight{
			Airline:       f.Airline,
			AirlineLogo:   f.AirlineLogo,
			Price:         f.Price,
			TotalDuration: f.TotalDuration,
		}
		for _, leg := range f.Flights {
			flight.Legs = append(flight.Legs, contractx.FlightLeg{
				Airline:          leg.Airline,
				FlightNumber:     leg.FlightNumber,
				DepartureAirport: contractx.Airport(leg.DepartureAirport),
				ArrivalAirport:   contractx.Airport(leg.ArrivalAirport),
				Duration:         leg.Duration,
			})
		}
		out.BestFlights = append(out.BestFlights, flight)
	}
	return out, nil
}

// RankFlights returns up to limit flights by ascending price. The sort is stable and
// flights without a price go last. The input is not modified.
func RankFlights(flights []contractx.Flight, limit int) []contractx.Flight {
	ranked := slices.Clone(flights)
	slices.SortStableFunc(ranked, func(a, b contractx.Flight) int {
		switch {
		case a.Price == nil && b.Price == nil:
			return 0
		case a.Price == nil:
			return 1
		case b.Price == nil:
			return -1
		}
		return cmp.Compare(*a.Price, *b.Price)
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// FormatFlight renders one flight with the fixed report template.
func FormatFlight(f contractx.Flight, currency string) string {
	airline := strings.TrimSpace(f.Airline)
	if airline == "" && len(f.Legs) > 0 {
		airline = strings.TrimSpace(f.Legs[0].Airline)
	}
	if airline == "" {
		airline = "Unknown Airline"
	}

	price := "Not Available"
	if f.Price != nil {
		price = strconv.FormatFloat(*f.Price, 'f', -1, 64)
		if currency != "" {
			price += " " + currency
		}
	}

	duration := "N/A"
	if f.TotalDuration > 0 {
		duration = strconv.Itoa(f.TotalDuration)
	}

	departure, arrival := "N/A", "N/A"
	if len(f.Legs) > 0 {
		departure = formatFlightTime(f.Legs[0].DepartureAirport.Time)
		arrival = formatFlightTime(f.Legs[len(f.Legs)-1].ArrivalAirport.Time)
	}

	return fmt.Sprintf("**Flight**: %s\n**Price**: %s\n**Departure**: %s\n**Arrival**: %s\n**Duration**: %s minutes",
		airline, price, departure, arrival, duration)
}

func formatFlightTime(raw string) string {
	t, err := time.Parse(serpTimeLayout, strings.TrimSpace(raw))
	if err != nil {
		return "N/A"
	}
	return t.Format(displayTimeLayout)
}
