package plan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

func TestCalendarAllDayEvent(t *testing.T) {
	t.Parallel()

	out, err := Calendar("s1", completeSlots(), time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"SUMMARY:Trip to BOM",
		"20251210",
		"20251216",
		"END:VEVENT",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("Calendar() missing %q:\n%s", want, out)
		}
	}
}

func TestCalendarNeedsDates(t *testing.T) {
	t.Parallel()

	slots := statex.NewSlotState()
	slots.Merge(statex.Updates{Destination: "BOM"})
	if _, err := Calendar("s1", slots, time.Now()); !errors.Is(err, contractx.ErrIncompleteSlots) {
		t.Fatalf("Calendar() error = %v, want ErrIncompleteSlots", err)
	}
}

type fakePublisher struct {
	destination string
	body        any
	err         error
}

func (f *fakePublisher) Publish(_ context.Context, destination string, body any) (string, error) {
	f.destination, f.body = destination, body
	return "msg_1", f.err
}

func TestQStashSinkPublish(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	sink, err := NewQStashSink(pub, " plans ")
	if err != nil {
		t.Fatalf("NewQStashSink() error = %v", err)
	}
	rec := contractx.PlanRecord{SessionID: "s1", Report: "report"}
	if err := sink.Publish(context.Background(), rec); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if pub.destination != "plans" {
		t.Fatalf("destination = %q", pub.destination)
	}
	if got, ok := pub.body.(contractx.PlanRecord); !ok || got.SessionID != "s1" {
		t.Fatalf("body = %#v", pub.body)
	}
}

func TestNewQStashSinkValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewQStashSink(&fakePublisher{}, ""); err == nil {
		t.Fatal("NewQStashSink() error = nil, want error")
	}
}
