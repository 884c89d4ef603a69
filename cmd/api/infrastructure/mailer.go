package infrastructure

import (
	"fmt"

	"go.uber.org/zap"

	"credential-service/internal/adapter/mail"
	"credential-service/internal/config"
)

// NewMailer creates the SMTP mailer for the credential email channel.
func NewMailer(cfg *config.Config, l *zap.Logger) (*mail.SMTPMailer, error) {
	mailer, err := mail.NewSMTPMailer(mail.Config{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		User:       cfg.SMTP.User,
		Password:   cfg.SMTP.Password,
		SenderName: cfg.SMTP.Sender,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	l.Info("SMTP mailer configured",
		zap.String("host", cfg.SMTP.Host),
		zap.Int("port", cfg.SMTP.Port),
	)

	return mailer, nil
}
