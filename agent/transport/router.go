package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/Chative-Travel-Planner/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	planx "github.com/tanpawarit/Chative-Travel-Planner/agent/plan"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

const maxBodyBytes = 64 << 10

// Service is the conversation surface the router exposes.
type Service interface {
	StartSession(ctx context.Context, policy string) (*statex.Session, error)
	HandleMessage(ctx context.Context, sessionID, text string) (orchestratorx.TurnResult, error)
	Session(ctx context.Context, sessionID string) (*statex.Session, error)
	EndSession(ctx context.Context, sessionID string) error
}

type errorResponse struct {
	Error string `json:"error"`
}

type startSessionRequest struct {
	Policy string `json:"policy"`
}

type startSessionResponse struct {
	SessionID string       `json:"session_id"`
	Policy    string       `json:"policy"`
	Stage     statex.Stage `json:"stage"`
	Replies   []string     `json:"replies"`
}

type messageRequest struct {
	Text string `json:"text"`
}

// NewRouter wires the session API. registry may be nil, in which case /metrics is not mounted.
func NewRouter(svc Service, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", startSessionHandler(svc))
		r.Get("/{sessionID}", getSessionHandler(svc))
		r.Delete("/{sessionID}", endSessionHandler(svc))
		r.Post("/{sessionID}/messages", messageHandler(svc))
		r.Get("/{sessionID}/calendar.ics", calendarHandler(svc))
	})

	return r
}

func startSessionHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startSessionRequest
		if r.ContentLength != 0 {
			if err := decodeBody(w, r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}
		sess, err := svc.StartSession(r.Context(), req.Policy)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, startSessionResponse{
			SessionID: sess.ID,
			Policy:    sess.Policy,
			Stage:     sess.Slots.Stage,
			Replies:   lastTexts(sess.Log),
		})
	}
}

func getSessionHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Session(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func endSessionHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
			handleServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func messageHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		res, err := svc.HandleMessage(r.Context(), chi.URLParam(r, "sessionID"), req.Text)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func calendarHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Session(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			handleServiceError(w, err)
			return
		}
		ics, err := planx.Calendar(sess.ID, sess.Slots, time.Now())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="trip.ics"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(ics))
	}
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, statex.ErrStateNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, orchestratorx.ErrInvalidMessage),
		errors.Is(err, orchestratorx.ErrInvalidSession),
		errors.Is(err, statex.ErrInvalidSession),
		errors.Is(err, contractx.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contractx.ErrIncompleteSlots):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// lastTexts returns the trailing assistant turns of the log.
func lastTexts(l statex.ConversationLog) []string {
	var out []string
	for i := len(l.Turns) - 1; i >= 0 && l.Turns[i].Role == statex.RoleAssistant; i-- {
		out = append([]string{l.Turns[i].Text}, out...)
	}
	return out
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
