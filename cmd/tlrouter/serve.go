package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/tlrouter"
	"github.com/ZaguanLabs/tlrouter/keystore"
	"github.com/ZaguanLabs/tlrouter/metrics"
)

// statusClientClosedRequest is reported when the caller went away.
const statusClientClosedRequest = 499

// maxRequestBody bounds the JSON body of a translate or analyze request.
const maxRequestBody = 1 << 20

// healthTimeout bounds the key store check behind /healthz.
const healthTimeout = 2 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translate and analyze endpoints over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			rt, err := a.setup(cmd.Context(), nil, metrics.New(reg))
			if err != nil {
				return err
			}
			defer rt.close()

			if addr == "" {
				addr = rt.cfg.Server.Addr
			}

			api := newServer(rt.router, rt.plan, rt.depth, rt.logger)
			if pinger, ok := rt.keys.(keystore.Pinger); ok && rt.cfg.Keys.Redis.URL != "" {
				api.health = pinger.Ping
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.routes(reg),
				ReadHeaderTimeout: rt.cfg.Server.ReadTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("listening", "addr", addr, "plan_steps", len(rt.plan), "depth", rt.depth)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
			}

			rt.logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: from config)")

	return cmd
}

// server exposes the Router over HTTP. Each request's context is the
// cancellation token, so a client disconnect aborts the routed call.
type server struct {
	router *tlrouter.Router
	plan   tlrouter.RoutingPlan
	depth  int
	slots  *tlrouter.Slots
	logger *slog.Logger

	// health, when set, checks the remote key store.
	health func(ctx context.Context) error
}

func newServer(router *tlrouter.Router, plan tlrouter.RoutingPlan, depth int, logger *slog.Logger) *server {
	return &server{
		router: router,
		plan:   plan,
		depth:  depth,
		slots:  &tlrouter.Slots{},
		logger: logger,
	}
}

func (s *server) routes(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/translate", s.handleTranslate)
	mux.HandleFunc("POST /v1/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if reg != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		}))
	}
	return mux
}

type translateBody struct {
	Text            string `json:"text"`
	SourceLang      string `json:"source_lang"`
	TargetLang      string `json:"target_lang"`
	Analysis        string `json:"analysis,omitempty"`
	ExplanationLang string `json:"explanation_lang,omitempty"`
	Depth           int    `json:"depth,omitempty"`
}

type analyzeBody struct {
	SourceText      string `json:"source_text"`
	TranslatedText  string `json:"translated_text"`
	SourceLang      string `json:"source_lang"`
	TargetLang      string `json:"target_lang"`
	ExplanationLang string `json:"explanation_lang,omitempty"`
	Kind            string `json:"kind"`
	Depth           int    `json:"depth,omitempty"`
}

type errorBody struct {
	Error struct {
		Class   tlrouter.ErrorClass `json:"class"`
		Message string              `json:"message"`
	} `json:"error"`
}

func (s *server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var body translateBody
	if !decodeBody(w, r, &body) {
		return
	}

	req := tlrouter.TranslationRequest{
		Text:            body.Text,
		SourceLang:      body.SourceLang,
		TargetLang:      body.TargetLang,
		Task:            tlrouter.TaskTranslate,
		ExplanationLang: body.ExplanationLang,
	}
	if body.Analysis != "" {
		req.Task = tlrouter.TaskAnalyze
		req.Analysis = tlrouter.AnalysisKind(body.Analysis)
	}

	ctx, release := s.begin(r)
	defer release()

	res, err := s.router.RouteTranslate(ctx, req, s.plan, s.requestDepth(body.Depth))
	s.respond(w, r, res, err)
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeBody
	if !decodeBody(w, r, &body) {
		return
	}

	req := tlrouter.AnalysisRequest{
		SourceText:      body.SourceText,
		TranslatedText:  body.TranslatedText,
		SourceLang:      body.SourceLang,
		TargetLang:      body.TargetLang,
		ExplanationLang: body.ExplanationLang,
		Kind:            tlrouter.AnalysisKind(body.Kind),
	}

	ctx, release := s.begin(r)
	defer release()

	res, err := s.router.RouteAnalyze(ctx, req, s.plan, s.requestDepth(body.Depth))
	s.respond(w, r, res, err)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.health(ctx); err != nil {
			s.logger.Warn("key store unhealthy", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "unavailable",
				"version": tlrouter.Version,
				"error":   "key store: " + err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": tlrouter.Version,
	})
}

// begin derives the operation context. Requests naming the same X-Slot
// supersede one another: the older one is aborted.
func (s *server) begin(r *http.Request) (context.Context, func()) {
	slot := r.Header.Get("X-Slot")
	if slot == "" {
		return r.Context(), func() {}
	}
	return s.slots.Begin(r.Context(), slot)
}

func (s *server) requestDepth(depth int) int {
	if depth > 0 {
		return depth
	}
	return s.depth
}

func (s *server) respond(w http.ResponseWriter, r *http.Request, res *tlrouter.RouteResult, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, res)
		return
	}

	status := statusFor(err)
	if status == statusClientClosedRequest {
		s.logger.Debug("request aborted", "path", r.URL.Path, "cause", err)
		w.WriteHeader(status)
		return
	}

	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", "path", r.URL.Path, "status", status, "error", err)
	}

	var body errorBody
	body.Error.Class = tlrouter.Describe(err)
	body.Error.Message = err.Error()
	writeJSON(w, status, body)
}

// statusFor maps a routing error to the HTTP status reported to clients.
func statusFor(err error) int {
	var keyErr *tlrouter.KeyStoreError
	if errors.As(err, &keyErr) {
		return http.StatusInternalServerError
	}

	switch tlrouter.Describe(err) {
	case tlrouter.ClassAborted:
		return statusClientClosedRequest
	case tlrouter.ClassNoKey:
		return http.StatusPreconditionFailed
	case tlrouter.ClassInvalidKey:
		return http.StatusUnauthorized
	case tlrouter.ClassCongested:
		var providerErr *tlrouter.ProviderError
		errors.As(err, &providerErr)
		return providerErr.StatusCode
	case tlrouter.ClassTimeout:
		return http.StatusGatewayTimeout
	case tlrouter.ClassInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var body errorBody
		body.Error.Class = tlrouter.ClassInvalid
		body.Error.Message = "invalid JSON body: " + err.Error()
		writeJSON(w, http.StatusBadRequest, body)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing response failed", "error", err)
	}
}
