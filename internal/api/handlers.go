package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/recipient-sync/internal/pkg/httputil"
	"github.com/ignite/recipient-sync/internal/pkg/logger"
	"github.com/ignite/recipient-sync/internal/recipient"
)

// Handlers contains the HTTP handlers for the sync API.
type Handlers struct {
	syncer   *recipient.Syncer
	sessions *SessionStore
	log      *logger.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(syncer *recipient.Syncer, sessions *SessionStore) *Handlers {
	return &Handlers{
		syncer:   syncer,
		sessions: sessions,
		log:      logger.Component("api"),
	}
}

// runRequest is the body of POST /api/v1/recipient-sync/runs.
type runRequest struct {
	StartIndex   int    `json:"start_index"`
	BatchSize    int    `json:"batch_size"`
	MaxRuntimeMs int    `json:"max_runtime_ms"`
	Folder       string `json:"folder"`
	SessionID    string `json:"session_id"`
}

// runResponse carries the run's own summary plus, when a session is in use,
// the merged view across every paginated call so far.
type runResponse struct {
	Summary   recipient.Summary  `json:"summary"`
	Session   *recipient.Summary `json:"session,omitempty"`
	NextIndex int                `json:"next_index"`
	Done      bool               `json:"done"`
}

// HandleRun executes one coordinator run. Per-file problems come back inside
// the 200 summary; only systemic failures map to error statuses, with
// timeout-shaped failures flagged so the dashboard can suggest retrying.
func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.StartIndex < 0 || req.BatchSize < 0 || req.MaxRuntimeMs < 0 {
		httputil.BadRequest(w, "start_index, batch_size and max_runtime_ms must be non-negative")
		return
	}

	summary, err := h.syncer.Run(r.Context(), recipient.Options{
		StartIndex: req.StartIndex,
		BatchSize:  req.BatchSize,
		MaxRuntime: time.Duration(req.MaxRuntimeMs) * time.Millisecond,
		Folder:     req.Folder,
	})
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	resp := runResponse{
		Summary:   *summary,
		NextIndex: summary.ProcessedRange.End + 1,
		Done:      summary.ProcessedRange.End+1 >= summary.TotalFiles,
	}

	if req.SessionID != "" && h.sessions != nil {
		merged, err := h.sessions.Fold(r.Context(), req.SessionID, *summary)
		if err != nil {
			// the run itself succeeded; losing the fold is not worth a 5xx
			h.log.Warn("session fold failed", "session_id", req.SessionID, "error", err)
		} else {
			resp.Session = &merged
		}
	}

	httputil.OK(w, resp)
}

func (h *Handlers) writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recipient.ErrUnknownFolder):
		httputil.BadRequest(w, err.Error())
	case isTimeoutShaped(err):
		httputil.ErrorWithCode(w, http.StatusGatewayTimeout,
			"sync timed out against the file store; retry, optionally with a smaller batch_size", "timeout")
	default:
		h.log.Error("sync run failed", "error", err)
		httputil.ErrorWithCode(w, http.StatusBadGateway, err.Error(), "sync_failed")
	}
}

// isTimeoutShaped recognizes deadline/timeout failures that are worth an
// automatic retry hint.
func isTimeoutShaped(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "status 504")
}

// folderInfo is one entry of GET /api/v1/recipient-sync/folders.
type folderInfo struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Default     bool   `json:"default"`
}

// HandleFolders returns the configured folder table.
func (h *Handlers) HandleFolders(w http.ResponseWriter, r *http.Request) {
	folders, defaultKey := h.syncer.Folders()

	out := make([]folderInfo, 0, len(folders))
	for key, f := range folders {
		out = append(out, folderInfo{
			Key:         key,
			DisplayName: f.DisplayName,
			Default:     key == defaultKey,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	httputil.OK(w, map[string]any{"folders": out})
}

// HandleGetSession returns the merged summary accumulated under a session.
func (h *Handlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		httputil.NotFound(w, "session store is not enabled")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	merged, ok, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if !ok {
		httputil.NotFound(w, "no such session")
		return
	}
	httputil.OK(w, merged)
}

// HandleHealth is the liveness endpoint.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
