package handlers

import (
	"encoding/json"
	"net/http"
)

type askRequest struct {
	Question string `json:"question"`
}

// Ask answers a natural-language question grounded in indexed transcripts.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "request body must be JSON with a question field",
		})
		return
	}

	res, err := h.svc.Ask(r.Context(), req.Question)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, res)
}

// Search runs keyword search over the indexed transcripts.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.KeywordSearch(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
