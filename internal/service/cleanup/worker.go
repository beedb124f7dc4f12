package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultInterval = 1 * time.Hour

// SessionCleaner drops stale rooms and reports how many it removed.
type SessionCleaner interface {
	CleanupOldSessions() int
}

type Worker struct {
	Sessions SessionCleaner
	Interval time.Duration
}

func NewWorker(sessions SessionCleaner) *Worker {
	return &Worker{Sessions: sessions, Interval: DefaultInterval}
}

// Start runs the cleanup once now and then on every tick until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	go w.Run(ctx)
	log.Info().Str("component", "cleanup").Dur("interval", w.Interval).Msg("background worker started")
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.runCleanup()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("component", "cleanup").Msg("background worker stopped")
			return
		case <-ticker.C:
			w.runCleanup()
		}
	}
}

func (w *Worker) runCleanup() {
	removed := w.Sessions.CleanupOldSessions()
	log.Debug().Str("component", "cleanup").Int("removed", removed).Msg("scheduled cleanup finished")
}
