package worker

// alert_worker.go processes stock_alert jobs: one email per alert to
// ALERT_EMAIL_TO, or a log line when SMTP is not configured.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"

	"github.com/rs/zerolog/log"
)

// AlertSender is the mail side of the alert worker.
type AlertSender interface {
	Configured() bool
	SendStockAlert(alert dto.StockAlert) error
}

type AlertWorker struct {
	sender AlertSender
}

func NewAlertWorker(sender AlertSender) *AlertWorker {
	return &AlertWorker{sender: sender}
}

func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var alert dto.StockAlert
	if err := json.Unmarshal(raw, &alert); err != nil {
		// Retrying a bad payload cannot help.
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil
	}

	if w.sender == nil || !w.sender.Configured() {
		log.Warn().
			Str("component", string(alert.ComponentType)).
			Uint("component_id", alert.ComponentID).
			Str("name", alert.DisplayName).
			Str("on_hand", alert.OnHand.String()).
			Str("minimum", alert.MinimumStock.String()).
			Msg("alert_worker: low stock (SMTP not configured)")
		return nil
	}

	if err := w.sender.SendStockAlert(alert); err != nil {
		return fmt.Errorf("send stock alert for %s: %w", alert.DisplayName, err)
	}
	log.Info().Str("name", alert.DisplayName).Msg("alert_worker: stock alert sent")
	return nil
}
