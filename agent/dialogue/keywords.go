package dialogue

import (
	"strings"

	"github.com/samber/lo"
)

const (
	Greeting = "Hi there! I'm your AI Travel Assistant. Whether you're planning a quick getaway or an extended vacation, " +
		"I'm here to help. Just tell me a bit about what kind of trip you're thinking about, and we can start planning together!"
	ResetConfirmation = "I've reset your trip planning. Let's start fresh! Where would you like to go?"
	GenericError      = "Sorry, something went wrong while handling your message. Please try again."
)

// Matching is a case-insensitive substring test, so "plans" and "yesterday" also match.
var (
	resetKeywords   = []string{"start over", "reset", "start again", "new trip", "different trip", "new plan"}
	triggerKeywords = []string{"plan", "itinerary", "schedule", "generate", "create", "show me", "let's go", "sounds good", "yes", "proceed"}
)

func IsResetRequest(text string) bool {
	return containsAny(text, resetKeywords)
}

func HasPlanTrigger(text string) bool {
	return containsAny(text, triggerKeywords)
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	return lo.SomeBy(keywords, func(kw string) bool {
		return strings.Contains(lower, kw)
	})
}
