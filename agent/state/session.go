package state

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrNilSession     = errors.New("session is nil")
	ErrInvalidSession = errors.New("session id is empty")
	ErrInvalidSlots   = errors.New("slot state invalid")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ConversationLog is append-only; resetting the trip never shrinks it.
type ConversationLog struct {
	Turns []Turn `json:"turns,omitempty"`
}

func (l *ConversationLog) Append(role Role, text string, now time.Time) {
	l.Turns = append(l.Turns, Turn{Role: role, Text: text, At: now.UTC()})
}

func (l ConversationLog) Len() int {
	return len(l.Turns)
}

// PromptTurns caps how much of the log a prompt sees. Earlier values already live in the slots.
const PromptTurns = 24

// RenderLast formats the most recent n turns as "role: text" lines for prompts.
func (l ConversationLog) RenderLast(n int) string {
	var b strings.Builder
	for i, t := range l.Last(n) {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Text)
	}
	return b.String()
}

// Last returns the most recent n turns.
func (l ConversationLog) Last(n int) []Turn {
	if n <= 0 || n >= len(l.Turns) {
		return l.Turns
	}
	return l.Turns[len(l.Turns)-n:]
}

// Session owns one conversation's slots and log.
type Session struct {
	ID        string          `json:"id"`
	Policy    string          `json:"policy"`
	Slots     SlotState       `json:"slots"`
	Log       ConversationLog `json:"log"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewSession(id, policy string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Policy:    policy,
		Slots:     NewSlotState(),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Clone returns a deep copy so a turn can be applied and discarded on failure.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Slots = s.Slots.Clone()
	out.Log.Turns = slices.Clone(s.Log.Turns)
	return &out
}

func (s *Session) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.ID) == "" {
		return ErrInvalidSession
	}
	if err := s.Slots.Validate(); err != nil {
		return fmt.Errorf("session=%s: %w", s.ID, err)
	}
	return nil
}
