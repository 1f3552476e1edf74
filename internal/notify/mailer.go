package notify

import (
	"context"

	"github.com/clubscouncil/portal-backend/pkg/logger"
)

// Mail is one outbound message.
type Mail struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers council and club notifications. Outbound SMTP lives in the
// shared mail relay; this service only hands messages over.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// LogMailer writes messages to the structured log instead of delivering
// them. Used in development and wherever the relay is not configured.
type LogMailer struct {
	logg *logger.Logger
}

// NewLogMailer builds a log-backed mailer.
func NewLogMailer(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	logCtx := m.logg.WithFields(ctx, map[string]any{
		"mail_to":      mail.To,
		"mail_subject": mail.Subject,
	})
	m.logg.Info(logCtx, "mail handed off")
	return nil
}
