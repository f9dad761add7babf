package whatsapp

import (
	"context"

	"go.uber.org/zap"
)

// LogSender is the development gateway: it logs the message and reports it
// submitted. Useful when no Twilio credentials are configured.
type LogSender struct {
	Logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{Logger: logger}
}

func (l *LogSender) Send(ctx context.Context, msg Message) error {
	l.Logger.Info("whatsapp message (log sender)",
		zap.String("to", msg.To),
		zap.String("body", msg.Body),
	)
	return nil
}
