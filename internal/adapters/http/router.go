package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/communityhub/member-qa/internal/core/ports"
	"github.com/communityhub/member-qa/internal/observability/metrics"
)

// Options tunes the request pipeline in front of the QA handler. Zero
// values disable the corresponding middleware.
type Options struct {
	ServiceName      string
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
}

type Router struct {
	answerer ports.QuestionAnswerer
	metrics  *metrics.ServerMetrics
	options  Options
}

func NewRouter(answerer ports.QuestionAnswerer, serverMetrics *metrics.ServerMetrics, options Options) *Router {
	if options.ServiceName == "" {
		options.ServiceName = "api"
	}
	if options.BackpressureWait <= 0 {
		options.BackpressureWait = 100 * time.Millisecond
	}
	return &Router{
		answerer: answerer,
		metrics:  serverMetrics,
		options:  options,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/qa/ask", rt.askQuestion)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.options.MaxInFlight, rt.options.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.options.RateLimitRPS, rt.options.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.options.ServiceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) askQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Answer(r.Context(), req.Question)
	if err != nil {
		rt.recordQA(metrics.OutcomeError, 0, start)
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	switch {
	case answer.Unresolved:
		rt.recordQA(metrics.OutcomeUnknownMember, 0, start)
	case len(answer.Snippets) == 0:
		rt.recordQA(metrics.OutcomeNoContext, 0, start)
	default:
		rt.recordQA(metrics.OutcomeAnswered, len(answer.Snippets), start)
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) recordQA(outcome string, snippetCount int, start time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordQA(rt.options.ServiceName, outcome, snippetCount, time.Since(start))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
