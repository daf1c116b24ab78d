// Package alert carries the local alert contract: a fire-and-forget,
// best-effort user-visible notice on the acting process. Delivery is not
// guaranteed and failures never propagate. In the mobile app this was the
// device notification tray; server-side, the default sink logs.
package alert

import "joinme-backend/internal/logger"

// Alerter surfaces a local alert. Show must never block the caller's
// primary operation.
type Alerter interface {
	Show(title, message string)
}

// LogAlerter writes alerts to the application log.
type LogAlerter struct{}

func NewLogAlerter() *LogAlerter {
	return &LogAlerter{}
}

func (a *LogAlerter) Show(title, message string) {
	logger.Info("Local alert", "title", title, "message", message)
}
