package plan

import (
	"context"
	"errors"
	"strings"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
)

type publisher interface {
	Publish(ctx context.Context, destination string, body any) (string, error)
}

// QStashSink forwards generated plans to a QStash destination.
type QStashSink struct {
	client      publisher
	destination string
}

var _ contractx.PlanSink = (*QStashSink)(nil)

func NewQStashSink(client publisher, destination string) (*QStashSink, error) {
	if client == nil {
		return nil, errors.New("qstash client is required")
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, errors.New("qstash destination is required")
	}
	return &QStashSink{client: client, destination: destination}, nil
}

func (s *QStashSink) Publish(ctx context.Context, rec contractx.PlanRecord) error {
	_, err := s.client.Publish(ctx, s.destination, rec)
	return err
}
