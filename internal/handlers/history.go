package handlers

import (
	"net/http"
	"strconv"

	"ascii-theater/internal/history"
	"ascii-theater/internal/logging"
)

// HistoryResponse lists recent conversions, newest first.
type HistoryResponse struct {
	Conversions []history.Conversion `json:"conversions"`
	Count       int                  `json:"count"`
}

// GetHistory returns the most recent conversions. The optional limit
// query parameter caps the result (default 50, max 500).
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeJSONError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if limit > 500 {
		limit = 500
	}

	conversions, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		logging.Error("history query failed: %v", err)
		writeJSONError(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	if conversions == nil {
		conversions = []history.Conversion{}
	}

	writeJSON(w, HistoryResponse{Conversions: conversions, Count: len(conversions)})
}
