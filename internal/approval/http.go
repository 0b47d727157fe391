package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/agentflow/intentguard/internal/ports"
)

// PendingRequest is what a polling UI sees for an outstanding approval.
type PendingRequest struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Summary   string    `json:"summary"`
	IntentID  string    `json:"intent_id"`
	CreatedAt time.Time `json:"created_at"`
}

type responseBody struct {
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback"`
	Remember bool   `json:"remember"`
}

// HTTP is a UserApprovalPort that hands each confirmation request to a
// callback endpoint, for hosts that drive approval from a separate UI or
// chat surface instead of the foreground terminal. A request blocks until
// a matching POST to /approvals/{id}/respond arrives or ctx is done.
type HTTP struct {
	log     zerolog.Logger
	limiter *rate.Limiter

	mu      sync.Mutex
	pending map[string]pendingEntry
}

type pendingEntry struct {
	request PendingRequest
	reply   chan responseBody
}

// NewHTTP creates an HTTP approval port. requestsPerSecond/burst throttle
// how fast new approval requests may be opened, guarding against a runaway
// caller flooding the callback UI.
func NewHTTP(requestsPerSecond float64, burst int, log zerolog.Logger) *HTTP {
	return &HTTP{
		log:     log.With().Str("component", "approval_http").Logger(),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		pending: make(map[string]pendingEntry),
	}
}

// Router returns the mux.Router the host should mount; it exposes
// GET /approvals (list pending) and POST /approvals/{id}/respond.
func (h *HTTP) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/approvals", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/approvals/{id}/respond", h.handleRespond).Methods(http.MethodPost)
	return r
}

func (h *HTTP) handleList(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	out := make([]PendingRequest, 0, len(h.pending))
	for _, e := range h.pending {
		out = append(out, e.request)
	}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (h *HTTP) handleRespond(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body responseBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	entry, ok := h.pending[id]
	if ok {
		delete(h.pending, id)
	}
	h.mu.Unlock()

	if !ok {
		http.Error(w, "unknown or already-resolved request", http.StatusNotFound)
		return
	}

	entry.reply <- body
	w.WriteHeader(http.StatusAccepted)
}

func (h *HTTP) await(ctx context.Context, kind, summary, intentID string) (ports.ApprovalDecision, error) {
	if !h.limiter.Allow() {
		return ports.ApprovalDecision{}, fmt.Errorf("approval request rate exceeded")
	}

	id := uuid.New().String()
	entry := pendingEntry{
		request: PendingRequest{ID: id, Kind: kind, Summary: summary, IntentID: intentID, CreatedAt: time.Now()},
		reply:   make(chan responseBody, 1),
	}

	h.mu.Lock()
	h.pending[id] = entry
	h.mu.Unlock()

	select {
	case body := <-entry.reply:
		return ports.ApprovalDecision{Approved: body.Approved, Feedback: body.Feedback, Remember: body.Remember}, nil
	case <-ctx.Done():
		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
		return ports.ApprovalDecision{}, ctx.Err()
	}
}

func (h *HTTP) ConfirmDestructive(ctx context.Context, command, risk, matchedPattern, intentID string) (ports.ApprovalDecision, error) {
	summary := fmt.Sprintf("run %q (risk=%s, matched=%s)", command, risk, matchedPattern)
	return h.await(ctx, "destructive_command", summary, intentID)
}

func (h *HTTP) ConfirmScopeViolation(ctx context.Context, intentID, path string, scopes []string) (ports.ApprovalDecision, error) {
	summary := fmt.Sprintf("write to %q, outside scope %v", path, scopes)
	return h.await(ctx, "scope_violation", summary, intentID)
}

func (h *HTTP) ConfirmIntentEvolution(ctx context.Context, intentID, path, summaryText string) (ports.ApprovalDecision, error) {
	summary := fmt.Sprintf("change to %q looks like intent evolution: %s", path, summaryText)
	return h.await(ctx, "intent_evolution", summary, intentID)
}
