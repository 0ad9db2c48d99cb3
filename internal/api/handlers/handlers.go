// Package handlers holds the HTTP handlers. They decode requests, call the
// service layer and translate its errors into statuses; no domain logic
// lives here.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sirpickle/index-server/internal/apperr"
	"github.com/sirpickle/index-server/internal/service"
)

type Handler struct {
	svc *service.Service
	log *zap.SugaredLogger
}

func New(svc *service.Service, log *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorw("response encoding failed", "error", err)
	}
}

// writeError logs the full error and responds with the caller-safe message
// for its kind.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorw("request failed", "path", r.URL.Path, "error", err)
	} else {
		h.log.Warnw("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": apperr.Message(err)})
}
