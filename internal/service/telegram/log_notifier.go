package telegram

import (
	"context"

	"VolScan/internal/domain/repository"
	applogger "VolScan/pkg/logger"
)

// LogNotifier writes alerts to the log when no bot is configured.
type LogNotifier struct {
	logger *applogger.Logger
}

var _ repository.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *applogger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, destination, text string) error {
	n.logger.Warn("alert (telegram not configured)",
		applogger.String("destination", destination),
		applogger.String("message", text),
	)
	return nil
}
