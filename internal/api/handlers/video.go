package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sirpickle/index-server/internal/apperr"
	"github.com/sirpickle/index-server/internal/service"
)

// AddVideo ingests a transcript upload.
func (h *Handler) AddVideo(w http.ResponseWriter, r *http.Request) {
	var req service.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}

	res, err := h.svc.Ingest(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, res)
}

// GetVideo returns one video with its transcript.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	video, err := h.svc.GetVideo(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, video)
}

// ListVideos returns the catalog without transcripts.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.svc.ListVideos(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, videos)
}
