package infra

import (
	"fmt"
	"net/smtp"

	"github.com/kentonium3/bake-tracker-sub002/internal/config"
	"github.com/kentonium3/bake-tracker-sub002/internal/dto"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending stock alerts.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
	to       string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		to:       cfg.AlertEmailTo,
	}
}

// Configured reports whether there is a host and a recipient to send to.
func (m *Mailer) Configured() bool {
	return m != nil && m.host != "" && m.to != ""
}

// BuildStockAlert renders the alert message without sending it.
func (m *Mailer) BuildStockAlert(alert dto.StockAlert) *email.Email {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{m.to}
	e.Subject = fmt.Sprintf("Low stock: %s", alert.DisplayName)
	e.Text = []byte(fmt.Sprintf(
		"%s (%s #%d) is below its minimum.\n\nOn hand: %s\nMinimum: %s\n",
		alert.DisplayName, alert.ComponentType, alert.ComponentID,
		alert.OnHand.String(), alert.MinimumStock.String(),
	))
	return e
}

// SendStockAlert emails a low-stock notice to ALERT_EMAIL_TO.
func (m *Mailer) SendStockAlert(alert dto.StockAlert) error {
	if !m.Configured() {
		return fmt.Errorf("mailer: SMTP not configured")
	}
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.BuildStockAlert(alert).Send(m.addr, auth)
}
