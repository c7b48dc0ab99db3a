package handlers

import (
	"net/http"
)

// PlaybackStatusResponse reports the playback session state.
type PlaybackStatusResponse struct {
	State string `json:"state"` // "running" or "idle"
}

// StopPlayback requests the active playback session to stop. Stopping
// while idle is a no-op, mirroring the player semantics.
func (h *Handlers) StopPlayback(w http.ResponseWriter, _ *http.Request) {
	h.player.Stop()
	writeJSONStatus(w, "stopped")
}

// PlaybackStatus returns whether a playback session is running.
func (h *Handlers) PlaybackStatus(w http.ResponseWriter, _ *http.Request) {
	state := "idle"
	if h.player.Running() {
		state = "running"
	}
	writeJSON(w, PlaybackStatusResponse{State: state})
}
