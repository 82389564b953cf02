package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	promptx "github.com/tanpawarit/Chative-Travel-Planner/agent/prompt"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

const (
	ResponderTemplate       = "template"
	ResponderConversational = "conversational"
)

// ReplyContext is everything a responder may phrase a reply from.
type ReplyContext struct {
	Decision Decision
	Slots    statex.SlotState
	Log      statex.ConversationLog
}

// Responder phrases the single assistant utterance of a turn.
type Responder interface {
	Respond(ctx context.Context, rc ReplyContext) (string, error)
}

var fieldDescriptions = map[statex.Field]string{
	statex.FieldSource:        "departure city or airport",
	statex.FieldDestination:   "destination",
	statex.FieldDepartureDate: "departure date",
	statex.FieldReturnDate:    "return date",
	statex.FieldTravelTheme:   "travel style (family, couple, adventure, or solo)",
	statex.FieldBudget:        "budget preference (economy, standard, or luxury)",
	statex.FieldActivities:    "activities you're interested in",
}

var fieldQuestions = map[statex.Field]string{
	statex.FieldSource:        "Where will you be flying from? Please include the airport code, for example Delhi (DEL).",
	statex.FieldDestination:   "Where would you like to go? Please include the airport code, for example Mumbai (BOM).",
	statex.FieldDepartureDate: "When would you like to leave? Please use DD/MM/YYYY.",
	statex.FieldReturnDate:    "When will you come back? Please use DD/MM/YYYY.",
	statex.FieldTravelTheme:   "What kind of trip is this: family, couple, adventure, or solo?",
	statex.FieldBudget:        "What's your budget preference: economy, standard, or luxury?",
	statex.FieldActivities:    "Which activities interest you? For example beaches, temples, museums, hiking, or food.",
}

const datesQuestion = "When are you travelling? Please share your departure and return dates as DD/MM/YYYY."

func Describe(f statex.Field) string {
	return fieldDescriptions[f]
}

// KnownValues lists the collected fields as "Label: value" lines in canonical order.
func KnownValues(s statex.SlotState) []string {
	var out []string
	add := func(label, value string) {
		if value != "" {
			out = append(out, label+": "+value)
		}
	}
	add("Departure", s.Source)
	add("Destination", s.Destination)
	if s.DepartureDate != nil {
		add("Departure date", s.DepartureDate.Format(time.DateOnly))
	}
	if s.ReturnDate != nil {
		add("Return date", s.ReturnDate.Format(time.DateOnly))
	}
	if s.TravelTheme != "" {
		add("Travel style", s.TravelTheme.Decorated())
	}
	add("Budget", string(s.Budget))
	add("Activities", strings.Join(s.Activities, ", "))
	return out
}

// TemplateResponder phrases replies from fixed templates without any external call.
type TemplateResponder struct{}

var _ Responder = TemplateResponder{}

func (TemplateResponder) Respond(_ context.Context, rc ReplyContext) (string, error) {
	switch rc.Decision.Move {
	case MoveGenerate:
		return fmt.Sprintf("Perfect! I have everything I need. Putting together your %d-day travel plan to %s now, this may take a moment...",
			rc.Slots.TripDays(), rc.Slots.Destination), nil
	case MoveConfirm:
		return confirmationSummary(rc.Slots), nil
	case MoveFollowUp:
		return "Your travel plan is ready above. Ask me anything about it, or say \"new trip\" to plan another one.", nil
	default:
		return askQuestion(rc), nil
	}
}

func askQuestion(rc ReplyContext) string {
	ask := rc.Decision.Ask
	if len(ask) == 0 {
		ask = rc.Slots.MissingFields()
	}
	if len(ask) == 0 {
		return confirmationSummary(rc.Slots)
	}

	var b strings.Builder
	switch {
	case rc.Decision.Reprompt:
		b.WriteString("Sorry, I couldn't catch that. ")
	case len(KnownValues(rc.Slots)) > 0:
		b.WriteString("Got it! ")
	}

	if lo.Contains(ask, statex.FieldDepartureDate) && lo.Contains(ask, statex.FieldReturnDate) {
		b.WriteString(datesQuestion)
		ask = lo.Without(ask, statex.FieldDepartureDate, statex.FieldReturnDate)
	} else {
		b.WriteString(fieldQuestions[ask[0]])
		ask = ask[1:]
	}
	if len(ask) > 0 {
		descs := lo.Map(ask, func(f statex.Field, _ int) string { return Describe(f) })
		fmt.Fprintf(&b, " I'll also need your %s.", strings.Join(descs, " and "))
	}
	return b.String()
}

func confirmationSummary(s statex.SlotState) string {
	var b strings.Builder
	b.WriteString("Here's what I have for your trip:\n")
	for _, line := range KnownValues(s) {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\nShall I generate your detailed travel plan? Say \"yes\" to proceed, or tell me what you'd like to change.")
	return b.String()
}

// ConversationalResponder phrases replies with the conversation completer.
type ConversationalResponder struct {
	completer contractx.Completer
	prompts   promptx.PromptSet
}

var _ Responder = (*ConversationalResponder)(nil)

func NewConversationalResponder(completer contractx.Completer) (*ConversationalResponder, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: conversation completer is required", contractx.ErrValidation)
	}
	return &ConversationalResponder{completer: completer, prompts: promptx.LoadPromptSet()}, nil
}

func (r *ConversationalResponder) Respond(ctx context.Context, rc ReplyContext) (string, error) {
	stage := rc.Slots.Stage
	if rc.Decision.Move == MoveGenerate {
		stage = statex.StageConfirmation
	}
	prompt, err := r.prompts.Render(ctx, promptx.Converse, map[string]any{
		"stage":        string(stage),
		"known":        KnownValues(rc.Slots),
		"missing":      lo.Map(rc.Slots.MissingFields(), func(f statex.Field, _ int) string { return Describe(f) }),
		"conversation": rc.Log.RenderLast(statex.PromptTurns),
	})
	if err != nil {
		return "", err
	}
	reply, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func NewResponder(kind string, conversation contractx.Completer) (Responder, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", ResponderTemplate:
		return TemplateResponder{}, nil
	case ResponderConversational:
		return NewConversationalResponder(conversation)
	default:
		return nil, fmt.Errorf("%w: unknown responder %q", contractx.ErrValidation, kind)
	}
}
