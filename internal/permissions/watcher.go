package permissions

import (
	"context"
	"fmt"
	"time"

	console "brandops/internal/utils/logger"

	"github.com/robfig/cron/v3"
)

// Watcher is the periodic local expiry check: when the tracked current
// session's deadline passes it ends the session and clears the handle.
//
// Principals whose permission record carries TimeoutExempt are skipped,
// an explicit administrative override for a narrow "no-timeout" class that
// weakens the session-expiry guarantee for those principals.
type Watcher struct {
	manager  *SessionManager
	engine   *Engine
	interval time.Duration
	cron     *cron.Cron
	log      *console.Logger
}

func NewWatcher(manager *SessionManager, engine *Engine, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{
		manager:  manager,
		engine:   engine,
		interval: interval,
		log:      console.New("SESSION-WATCHER"),
	}
}

// Start schedules the periodic check.
func (w *Watcher) Start() error {
	if w.cron != nil {
		return nil
	}
	w.cron = cron.New()
	_, err := w.cron.AddFunc(fmt.Sprintf("@every %s", w.interval), func() {
		w.CheckOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session watcher: %w", err)
	}
	w.cron.Start()
	w.log.Info("session expiry watcher started (interval %s)", w.interval)
	return nil
}

// Stop halts the periodic check.
func (w *Watcher) Stop() {
	if w.cron == nil {
		return
	}
	w.cron.Stop()
	w.cron = nil
	w.log.Info("session expiry watcher stopped")
}

// CheckOnce runs a single expiry pass over the tracked current session.
func (w *Watcher) CheckOnce(ctx context.Context) {
	session := w.manager.CurrentSession()
	if session == nil || session.ExpiresAt == nil {
		return
	}
	if !session.Expired(time.Now().UTC()) {
		return
	}

	record, err := w.engine.GetUserPermissions(ctx, session.UserID)
	if err != nil {
		// Store fault: leave the session for the next tick rather than
		// guessing at exemption state.
		w.log.Warn("expiry check skipped for session %s: %v", session.ID, err)
		return
	}
	if record != nil && record.TimeoutExempt {
		return
	}

	if err := w.manager.ExpireSession(ctx, session.ID); err != nil {
		w.log.Warn("failed to expire session %s: %v", session.ID, err)
		return
	}
	w.log.Info("expired session %s for user %s", session.ID, session.UserID)
}
