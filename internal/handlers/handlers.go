package handlers

import (
	"io"
	"time"

	"ascii-theater/internal/history"
	"ascii-theater/internal/player"
	"ascii-theater/internal/startup"
)

// Handlers bundles the dependencies of all HTTP handlers.
type Handlers struct {
	player   *player.Player
	store    *history.Store
	config   *startup.Config
	terminal io.Writer
	started  time.Time
}

// New creates the handler set. terminal is the server's own terminal
// sink used when a request asks for direct terminal output; in
// production this is os.Stdout, shared with the playback player.
func New(p *player.Player, store *history.Store, config *startup.Config, terminal io.Writer) *Handlers {
	return &Handlers{
		player:   p,
		store:    store,
		config:   config,
		terminal: terminal,
		started:  time.Now(),
	}
}
