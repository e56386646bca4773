package application

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// SessionJanitor periodically removes expired sessions.
type SessionJanitor struct {
	purger   SessionPurger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewSessionJanitor(purger SessionPurger, interval time.Duration) *SessionJanitor {
	return &SessionJanitor{
		purger:   purger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (j *SessionJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	slog.Info("Session janitor started", "interval", j.interval)

	for {
		select {
		case <-ticker.C:
			removed, err := j.purger.PurgeExpiredSessions(ctx)
			if err != nil {
				slog.Error("Error purging expired sessions", "error", err)
			} else if removed > 0 {
				slog.Info("Expired sessions purged", "count", removed)
			}
		case <-j.stopChan:
			slog.Info("Session janitor stopped")
			return
		case <-ctx.Done():
			slog.Info("Session janitor stopped due to context cancellation")
			return
		}
	}
}

// Stop ends Start's loop. Safe to call more than once.
func (j *SessionJanitor) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
}
