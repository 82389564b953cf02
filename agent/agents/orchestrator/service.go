package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	dialoguex "github.com/tanpawarit/Chative-Travel-Planner/agent/dialogue"
	nodex "github.com/tanpawarit/Chative-Travel-Planner/agent/nodes"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
	metricsx "github.com/tanpawarit/Chative-Travel-Planner/pkg/metrics"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

type Config struct {
	DefaultPolicy string
	PostPlan      dialoguex.PostPlan
	// Strategy labels extraction metrics.
	Strategy string
}

type Option func(*Orchestrator)

func WithSinks(sinks ...contractx.PlanSink) Option {
	return func(o *Orchestrator) {
		o.sinks = append(o.sinks, sinks...)
	}
}

func WithMetrics(m *metricsx.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// TurnResult is what a caller shows after one user message.
type TurnResult struct {
	SessionID string           `json:"session_id"`
	Replies   []string         `json:"replies"`
	Slots     statex.SlotState `json:"slots"`
	Stage     statex.Stage     `json:"stage"`
	Failed    bool             `json:"failed,omitempty"`
}

type Orchestrator struct {
	store     statex.Store
	extractor contractx.Extractor
	responder dialoguex.Responder
	assembler contractx.Assembler
	sinks     []contractx.PlanSink
	metrics   *metricsx.Metrics

	policies      map[string]dialoguex.Policy
	defaultPolicy string
	strategy      string

	locks       *xsync.MapOf[string, *sync.Mutex]
	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now   func() time.Time
	newID func() string
}

func New(
	store statex.Store,
	extractor contractx.Extractor,
	responder dialoguex.Responder,
	assembler contractx.Assembler,
	cfg Config,
	opts ...Option,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if extractor == nil {
		return nil, errors.New("field extractor is required")
	}
	if responder == nil {
		return nil, errors.New("responder is required")
	}
	if assembler == nil {
		return nil, errors.New("plan assembler is required")
	}

	policies := make(map[string]dialoguex.Policy, 2)
	for _, name := range []string{dialoguex.PolicyOpportunistic, dialoguex.PolicyStrict} {
		p, err := dialoguex.NewPolicy(name, cfg.PostPlan)
		if err != nil {
			return nil, err
		}
		policies[name] = p
	}

	defaultPolicy := strings.ToLower(strings.TrimSpace(cfg.DefaultPolicy))
	if defaultPolicy == "" {
		defaultPolicy = dialoguex.PolicyOpportunistic
	}
	if _, ok := policies[defaultPolicy]; !ok {
		return nil, fmt.Errorf("%w: unknown dialogue policy %q", contractx.ErrValidation, cfg.DefaultPolicy)
	}
	strategy := strings.TrimSpace(cfg.Strategy)
	if strategy == "" {
		strategy = "unknown"
	}

	o := &Orchestrator{
		store:         store,
		extractor:     extractor,
		responder:     responder,
		assembler:     assembler,
		policies:      policies,
		defaultPolicy: defaultPolicy,
		strategy:      strategy,
		locks:         xsync.NewMapOf[string, *sync.Mutex](),
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// StartSession creates a session under policy (empty means the default) and returns it with the greeting logged.
func (o *Orchestrator) StartSession(ctx context.Context, policy string) (*statex.Session, error) {
	name := strings.ToLower(strings.TrimSpace(policy))
	if name == "" {
		name = o.defaultPolicy
	}
	if _, err := o.policy(name); err != nil {
		return nil, err
	}

	now := o.now().UTC()
	sess := statex.NewSession(o.newID(), name, now)
	sess.Log.Append(statex.RoleAssistant, dialoguex.Greeting, now)
	if err := o.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	log.Info().Str("session_id", sess.ID).Str("policy", name).Msg("session started")
	return sess, nil
}

// HandleMessage runs one turn. Turns for the same session are serialized. A failing turn
// logs the message with a generic apology and leaves the slots as they were.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (TurnResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID != "" {
		mu, _ := o.locks.LoadOrCompute(sessionID, func() *sync.Mutex { return &sync.Mutex{} })
		mu.Lock()
		defer mu.Unlock()
	}

	start := o.now()
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) || errors.Is(err, ErrInvalidSession) {
			return TurnResult{}, err
		}
		return o.failTurn(ctx, sessionID, text, start, err)
	}

	sess := out.Session
	outcome := "ok"
	switch {
	case out.Planned:
		outcome = "planned"
		o.metrics.PlanGenerated(sess.Policy)
		o.publish(ctx, contractx.PlanRecord{
			SessionID:   sess.ID,
			Slots:       out.PlannedSlots,
			Report:      out.Replies[len(out.Replies)-1],
			GeneratedAt: o.now().UTC(),
		})
	case dialoguex.IsResetRequest(text):
		outcome = "reset"
	}
	o.metrics.ObserveTurn(sess.Policy, outcome, o.now().Sub(start))

	log.Info().
		Str("session_id", sess.ID).
		Str("policy", sess.Policy).
		Str("stage", string(sess.Slots.Stage)).
		Str("outcome", outcome).
		Msg("turn handled")

	return TurnResult{
		SessionID: sess.ID,
		Replies:   out.Replies,
		Slots:     sess.Slots,
		Stage:     sess.Slots.Stage,
	}, nil
}

func (o *Orchestrator) Session(ctx context.Context, sessionID string) (*statex.Session, error) {
	return o.store.Load(ctx, strings.TrimSpace(sessionID))
}

func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	o.locks.Delete(sessionID)
	return o.store.Delete(ctx, sessionID)
}

func (o *Orchestrator) policy(name string) (dialoguex.Policy, error) {
	p, ok := o.policies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown dialogue policy %q", contractx.ErrValidation, name)
	}
	return p, nil
}

func (o *Orchestrator) failTurn(ctx context.Context, sessionID, text string, start time.Time, cause error) (TurnResult, error) {
	now := o.now().UTC()
	sess, err := o.store.Load(ctx, sessionID)
	switch {
	case errors.Is(err, statex.ErrStateNotFound):
		sess = statex.NewSession(sessionID, o.defaultPolicy, now)
	case err != nil:
		return TurnResult{}, errors.Join(cause, err)
	}

	log.Error().Err(cause).Str("session_id", sessionID).Str("policy", sess.Policy).Msg("turn failed")
	o.metrics.ObserveTurn(sess.Policy, "error", o.now().Sub(start))

	sess.Log.Append(statex.RoleUser, strings.TrimSpace(text), now)
	sess.Log.Append(statex.RoleAssistant, dialoguex.GenericError, now)
	sess.Touch(now)
	if err := o.store.Save(ctx, sess); err != nil {
		return TurnResult{}, errors.Join(cause, err)
	}

	return TurnResult{
		SessionID: sess.ID,
		Replies:   []string{dialoguex.GenericError},
		Slots:     sess.Slots,
		Stage:     sess.Slots.Stage,
		Failed:    true,
	}, nil
}

func (o *Orchestrator) publish(ctx context.Context, rec contractx.PlanRecord) {
	for _, sink := range o.sinks {
		if err := sink.Publish(ctx, rec); err != nil {
			o.metrics.ExternalError("plan_sink")
			log.Warn().Err(err).Str("session_id", rec.SessionID).Msgf("plan sink %T failed", sink)
		}
	}
}
