package contract

import (
	"time"

	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

type AgentType string

const (
	AgentTypeConversation AgentType = "conversation"
	AgentTypeExtractor    AgentType = "extractor"
	AgentTypeResearcher   AgentType = "researcher"
	AgentTypePlanner      AgentType = "planner"
	AgentTypeFinder       AgentType = "finder"
)

type ExtractRequest struct {
	Fields []statex.Field
	Text   string
	Log    statex.ConversationLog
	// ApplyDefaults fills requested fields that nothing matched with configured defaults.
	ApplyDefaults bool
	Now           time.Time
	// KnownReturn is the return date already held by the session, if any.
	KnownReturn *time.Time
}

type FlightQuery struct {
	Source        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    time.Time
	Currency      string
}

type FlightResults struct {
	BestFlights []Flight `json:"best_flights"`
}

type Flight struct {
	Airline       string      `json:"airline,omitempty"`
	AirlineLogo   string      `json:"airline_logo,omitempty"`
	Price         *float64    `json:"price,omitempty"`
	TotalDuration int         `json:"total_duration,omitempty"`
	Legs          []FlightLeg `json:"flights,omitempty"`
}

type FlightLeg struct {
	Airline          string  `json:"airline,omitempty"`
	FlightNumber     string  `json:"flight_number,omitempty"`
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
	Duration         int     `json:"duration,omitempty"`
}

type Airport struct {
	Name string `json:"name,omitempty"`
	ID   string `json:"id,omitempty"`
	Time string `json:"time,omitempty"`
}

type Snippet struct {
	Title   string `json:"title"`
	Link    string `json:"link,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

type Place struct {
	Name        string  `json:"name"`
	Address     string  `json:"address,omitempty"`
	Rating      float32 `json:"rating,omitempty"`
	RatingCount int     `json:"rating_count,omitempty"`
	PlaceID     string  `json:"place_id,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type PlanRecord struct {
	SessionID   string           `json:"session_id"`
	Slots       statex.SlotState `json:"slots"`
	Report      string           `json:"report"`
	GeneratedAt time.Time        `json:"generated_at"`
}
