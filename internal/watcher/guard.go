package watcher

import "autorefresh/internal/logging"

// LifecycleGuard stops monitoring when the host loads or resets its document.
type LifecycleGuard struct {
	session *Session
	logger  *logging.Logger
}

func NewLifecycleGuard(session *Session, logger *logging.Logger) *LifecycleGuard {
	if logger == nil {
		logger = logging.Discard()
	}
	return &LifecycleGuard{session: session, logger: logger.Category("watcher")}
}

// DocumentLoaded must run on the session's dispatcher.
func (g *LifecycleGuard) DocumentLoaded() {
	if g == nil || g.session == nil || !g.session.Running() {
		return
	}
	g.session.Disable()
	g.logger.Info("monitoring disabled after document load", nil)
}
