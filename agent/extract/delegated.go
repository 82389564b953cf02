package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	promptx "github.com/tanpawarit/Chative-Travel-Planner/agent/prompt"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

type fieldAsk struct {
	description string
	format      string
}

var fieldAsks = map[statex.Field]fieldAsk{
	statex.FieldSource: {
		description: "departure airport",
		format:      "Answer with the 3-letter uppercase IATA airport code only, for example DEL.",
	},
	statex.FieldDestination: {
		description: "destination airport",
		format:      "Answer with the 3-letter uppercase IATA airport code only, for example BOM.",
	},
	statex.FieldDepartureDate: {
		description: "departure and return dates",
		format:      "Answer with two dates in YYYY-MM-DD format separated by a space: departure then return. Use None for a date that is not given.",
	},
	statex.FieldTravelTheme: {
		description: "travel style",
		format:      "Answer with one of: Family Vacation, Couple Getaway, Adventure Trip, Solo Exploration.",
	},
	statex.FieldBudget: {
		description: "budget preference",
		format:      "Answer with one of: Economy, Standard, Luxury.",
	},
	statex.FieldActivities: {
		description: "activities the traveler is interested in",
		format:      "Answer with a comma-separated list of short activity names.",
	},
}

func init() {
	fieldAsks[statex.FieldReturnDate] = fieldAsks[statex.FieldDepartureDate]
}

// Delegated extracts fields by sending a templated instruction to a completion model.
type Delegated struct {
	completer contractx.Completer
	prompts   promptx.PromptSet
	defaults  Defaults
}

var _ contractx.Extractor = (*Delegated)(nil)

func NewDelegated(completer contractx.Completer, defaults Defaults) (*Delegated, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: extractor completer is required", contractx.ErrValidation)
	}
	return &Delegated{
		completer: completer,
		prompts:   promptx.LoadPromptSet(),
		defaults:  defaults.normalized(),
	}, nil
}

// Extract makes exactly one completion call. Unreadable replies yield empty updates;
// only a failed call is returned as an error.
func (d *Delegated) Extract(ctx context.Context, req contractx.ExtractRequest) (statex.Updates, error) {
	fields := FieldsFor(req.Fields...)
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	single, isSingle := singleField(fields)

	var (
		prompt string
		err    error
	)
	if isSingle {
		ask := fieldAsks[single]
		prompt, err = d.prompts.Render(ctx, promptx.ExtractField, map[string]any{
			"today":       now.Format(isoDate),
			"description": ask.description,
			"format":      ask.format,
			"text":        req.Text,
		})
	} else {
		conversation := req.Log.RenderLast(statex.PromptTurns)
		if conversation == "" {
			conversation = "user: " + req.Text
		}
		prompt, err = d.prompts.Render(ctx, promptx.ExtractAll, map[string]any{
			"today":        now.Format(isoDate),
			"conversation": conversation,
		})
	}
	if err != nil {
		return statex.Updates{}, err
	}

	reply, err := d.completer.Complete(ctx, prompt)
	if err != nil {
		return statex.Updates{}, fmt.Errorf("%w: extraction: %v", contractx.ErrModelInvoke, err)
	}

	var u statex.Updates
	if isSingle {
		u = parseField(single, reply)
	} else if u, err = parseObject(reply); err != nil {
		log.Debug().Err(err).Msg("extraction reply unreadable")
		u = statex.Updates{}
	}
	u = keepRequested(u, fields)

	req.Fields = fields
	req.Now = now
	d.defaults.complete(req, &u)
	return u, nil
}

// singleField reports whether the request targets one field; the date pair counts as one.
func singleField(fields []statex.Field) (statex.Field, bool) {
	switch {
	case len(fields) == 1:
		return fields[0], true
	case len(fields) == 2 && lo.Every(fields, []statex.Field{statex.FieldDepartureDate, statex.FieldReturnDate}):
		return statex.FieldDepartureDate, true
	}
	return "", false
}

func keepRequested(u statex.Updates, fields []statex.Field) statex.Updates {
	has := func(f statex.Field) bool { return lo.Contains(fields, f) }
	if !has(statex.FieldSource) {
		u.Source = ""
	}
	if !has(statex.FieldDestination) {
		u.Destination = ""
	}
	if !has(statex.FieldDepartureDate) {
		u.DepartureDate = nil
	}
	if !has(statex.FieldReturnDate) {
		u.ReturnDate = nil
	}
	if !has(statex.FieldTravelTheme) {
		u.TravelTheme = ""
	}
	if !has(statex.FieldBudget) {
		u.Budget = ""
	}
	if !has(statex.FieldActivities) {
		u.Activities = nil
	}
	return u
}
