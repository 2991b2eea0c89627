package usecase

import (
	"context"
	"fmt"

	"VolScan/internal/domain/models"
	drepo "VolScan/internal/domain/repository"
	applogger "VolScan/pkg/logger"
)

// AlertDispatcher delivers fired alerts to the notifier and every publisher.
type AlertDispatcher struct {
	notifier    drepo.Notifier
	channel     string
	destination string
	threshold   float64
	publishers  []drepo.AlertPublisher
	metrics     drepo.Metrics
	logger      *applogger.Logger
}

func NewAlertDispatcher(
	notifier drepo.Notifier,
	channel, destination string,
	threshold float64,
	publishers []drepo.AlertPublisher,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *AlertDispatcher {
	return &AlertDispatcher{
		notifier:    notifier,
		channel:     channel,
		destination: destination,
		threshold:   threshold,
		publishers:  publishers,
		metrics:     metrics,
		logger:      logger,
	}
}

// Dispatch sends the alert and returns the notifier error, if any.
// Publisher failures are logged and counted but not returned.
func (d *AlertDispatcher) Dispatch(ctx context.Context, alert models.Alert) error {
	for _, p := range d.publishers {
		if err := p.PublishAlert(ctx, alert); err != nil {
			d.metrics.RecordSinkError(p.Name())
			d.logger.Warn("alert publish failed",
				applogger.String("sink", p.Name()),
				applogger.String("ticker", alert.Ticker),
				applogger.Error(err),
			)
		}
	}

	text := FormatAlertMessage(alert, d.threshold)
	if err := d.notifier.Send(ctx, d.destination, text); err != nil {
		d.metrics.RecordNotifyError(d.channel)
		return fmt.Errorf("notify %s via %s: %w", alert.Ticker, d.channel, err)
	}
	return nil
}
