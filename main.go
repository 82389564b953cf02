package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/Chative-Travel-Planner/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Travel-Planner/agent/agents/specialist"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	dialoguex "github.com/tanpawarit/Chative-Travel-Planner/agent/dialogue"
	extractx "github.com/tanpawarit/Chative-Travel-Planner/agent/extract"
	llmx "github.com/tanpawarit/Chative-Travel-Planner/agent/llm"
	planx "github.com/tanpawarit/Chative-Travel-Planner/agent/plan"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
	toolx "github.com/tanpawarit/Chative-Travel-Planner/agent/tool"
	transportx "github.com/tanpawarit/Chative-Travel-Planner/agent/transport"
	configx "github.com/tanpawarit/Chative-Travel-Planner/pkg/config"
	logx "github.com/tanpawarit/Chative-Travel-Planner/pkg/logger"
	metricsx "github.com/tanpawarit/Chative-Travel-Planner/pkg/metrics"
	placesx "github.com/tanpawarit/Chative-Travel-Planner/pkg/places"
	qstashx "github.com/tanpawarit/Chative-Travel-Planner/pkg/qstash"
	serpapix "github.com/tanpawarit/Chative-Travel-Planner/pkg/serpapi"
)

type AppConfig struct {
	Policy     string        `envconfig:"POLICY" default:"opportunistic"`
	PostPlan   string        `envconfig:"POST_PLAN" split_words:"true"`
	Responder  string        `envconfig:"RESPONDER" default:"template"`
	Store      string        `envconfig:"STORE" default:"memory"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" split_words:"true" default:"24h"`
	HTTPAddr   string        `envconfig:"HTTP_ADDR" split_words:"true" default:":8080"`
}

// Flags must be registered before the first configx load, which parses the command line.
var (
	serveFlag  = flag.Bool("serve", false, "serve the HTTP API instead of the interactive console")
	addrFlag   = flag.String("addr", "", "HTTP listen address, overrides APP_HTTP_ADDR")
	policyFlag = flag.String("policy", "", "dialogue policy for new sessions: opportunistic or strict")
)

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	appCfg := configx.MustNew[AppConfig]("APP")
	if v := strings.TrimSpace(*policyFlag); v != "" {
		appCfg.Policy = v
	}
	if v := strings.TrimSpace(*addrFlag); v != "" {
		appCfg.HTTPAddr = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := metricsx.New()

	store, err := newStore(*appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session store")
	}

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	registry, err := specialist.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize llm registry")
	}
	if closer, ok := registry.(io.Closer); ok {
		defer closer.Close()
	}

	extractCfg := configx.MustNew[extractx.Config]("EXTRACT")
	extractor, err := newExtractor(*extractCfg, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize field extractor")
	}

	responder, err := dialoguex.NewResponder(appCfg.Responder, registry.Conversation())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize responder")
	}

	assembler, err := newAssembler(registry, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize plan assembler")
	}

	postPlan, err := dialoguex.ParsePostPlan(appCfg.PostPlan)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid post-plan mode")
	}

	sinks, closeSinks := newSinks(ctx)
	defer closeSinks()

	orch, err := orchestratorx.New(store, extractor, responder, assembler, orchestratorx.Config{
		DefaultPolicy: appCfg.Policy,
		PostPlan:      postPlan,
		Strategy:      extractCfg.Strategy,
	},
		orchestratorx.WithSinks(sinks...),
		orchestratorx.WithMetrics(metrics),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize orchestrator")
	}

	if *serveFlag {
		if err := serve(ctx, appCfg.HTTPAddr, transportx.NewRouter(orch, metrics.Registry)); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
		return
	}
	if err := runConsole(ctx, orch, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("console session failed")
	}
}

func newStore(cfg AppConfig) (statex.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", "memory":
		return statex.NewMemoryStore(cfg.SessionTTL), nil
	case "upstash":
		upstashCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		return statex.NewUpstashRedisStore(*upstashCfg, statex.WithTTL(cfg.SessionTTL))
	case "redis":
		redisCfg := configx.MustNew[statex.RedisConfig]("REDIS")
		return statex.NewRedisStore(*redisCfg)
	default:
		return nil, fmt.Errorf("%w: unknown session store %q", contractx.ErrValidation, cfg.Store)
	}
}

func newExtractor(cfg extractx.Config, registry contractx.Registry) (contractx.Extractor, error) {
	defaults, err := cfg.Defaults()
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Strategy)) {
	case "", "heuristic":
		return extractx.NewHeuristic(defaults), nil
	case "delegated":
		return extractx.NewDelegated(registry.Extractor(), defaults)
	default:
		return nil, fmt.Errorf("%w: unknown extraction strategy %q", contractx.ErrValidation, cfg.Strategy)
	}
}

// newAssembler wires the optional search backends. Without a SerpAPI key plans are
// assembled from model knowledge and report that no flights were found.
func newAssembler(registry contractx.Registry, metrics *metricsx.Metrics) (*planx.Assembler, error) {
	serpCfg := configx.MustNew[serpapix.Config]("SERPAPI")
	mapsCfg := configx.MustNew[placesx.Config]("MAPS")

	var gatewayOpts []toolx.Option
	opts := []planx.Option{planx.WithMetrics(metrics), planx.WithCurrency(serpCfg.Currency)}

	if strings.TrimSpace(serpCfg.APIKey) != "" {
		serp, err := serpapix.NewClient(*serpCfg, serpapix.WithCacheObserver(metrics))
		if err != nil {
			return nil, err
		}
		gatewayOpts = append(gatewayOpts, toolx.WithWebSearch(serp))
		opts = append(opts, planx.WithFlightSearcher(planx.NewSerpFlights(serp)))
	} else {
		log.Warn().Msg("SERPAPI_API_KEY not set, flight and web search disabled")
	}

	if strings.TrimSpace(mapsCfg.APIKey) != "" {
		places, err := placesx.NewClient(*mapsCfg)
		if err != nil {
			return nil, err
		}
		gatewayOpts = append(gatewayOpts, toolx.WithPlaceSearch(places))
	} else {
		log.Warn().Msg("MAPS_API_KEY not set, place search disabled")
	}

	opts = append(opts, planx.WithTools(toolx.NewGateway(gatewayOpts...)))
	return planx.NewAssembler(registry.Researcher(), registry.Finder(), registry.Planner(), opts...)
}

func newSinks(ctx context.Context) ([]contractx.PlanSink, func()) {
	var (
		sinks   []contractx.PlanSink
		closers []func() error
	)

	archiveCfg := configx.MustNew[planx.ArchiveConfig]("ARCHIVE")
	if archiveCfg.Enabled() {
		archive, err := planx.NewArchiveSink(ctx, *archiveCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize plan archive")
		}
		sinks = append(sinks, archive)
		closers = append(closers, archive.Close)
	}

	qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
	if qstashCfg.Enabled() {
		sink, err := planx.NewQStashSink(qstashx.MustNew(*qstashCfg), qstashCfg.Destination)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize plan webhook")
		}
		sinks = append(sinks, sink)
	}

	return sinks, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("failed to close plan sink")
			}
		}
	}
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// runConsole chats with one session over stdin until EOF or "exit".
func runConsole(ctx context.Context, orch *orchestratorx.Orchestrator, in io.Reader, out io.Writer) error {
	sess, err := orch.StartSession(ctx, "")
	if err != nil {
		return err
	}
	defer func() {
		if err := orch.EndSession(context.Background(), sess.ID); err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to end session")
		}
	}()

	fmt.Fprintf(out, "Assistant: %s\n", dialoguex.Greeting)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Assistant: Safe travels!")
			return nil
		}

		res, err := orch.HandleMessage(ctx, sess.ID, text)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "Assistant: %s\n", dialoguex.GenericError)
			continue
		}
		for _, reply := range res.Replies {
			fmt.Fprintf(out, "Assistant: %s\n", reply)
		}
	}
}
