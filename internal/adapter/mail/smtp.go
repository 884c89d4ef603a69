package mail

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const (
	credentialSubject = "Welcome to Your AI-Powered Dashboard - Login Credentials Inside"

	credentialBody = "Dear Innovator,\n\n" +
		"Welcome to Neural GenAI Networks, your gateway to a personalized AI-powered learning experience! " +
		"We're thrilled to have you on board.\n\n" +
		"Here are your login details:\n\n" +
		"\U0001F511 Email ID: %s\n" +
		"\U0001F511 Password: %s\n\n" +
		"Unlock your dashboard today! If you encounter any issues, reach us at genaitechnical@gmail.com.\n\n" +
		"Warm regards,\nThe Neural GenAI Team"
)

// Config holds the outbound mail channel parameters. The defaults target
// Gmail submission on port 587 with a STARTTLS upgrade.
type Config struct {
	Host       string
	Port       int
	User       string
	Password   string
	SenderName string
}

// SMTPMailer sends credential emails over an authenticated SMTP connection.
// The credentials travel in plaintext in the message body, matching the
// established onboarding email of the product.
type SMTPMailer struct {
	client *mail.Client
	cfg    Config
	log    *zap.Logger
}

// NewSMTPMailer creates a new SMTPMailer for the given channel parameters.
func NewSMTPMailer(cfg Config, log *zap.Logger) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPMailer{
		client: client,
		cfg:    cfg,
		log:    log,
	}, nil
}

// Verify dials and authenticates against the SMTP host without sending,
// mirroring a transporter verify step. It closes the connection on success.
func (m *SMTPMailer) Verify(ctx context.Context) error {
	if err := m.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp verify failed: %w", err)
	}
	if err := m.client.Close(); err != nil {
		m.log.Warn("failed to close smtp connection after verify", zap.Error(err))
	}
	m.log.Debug("smtp channel verified", zap.String("host", m.cfg.Host), zap.Int("port", m.cfg.Port))
	return nil
}

// SendCredentials sends the formatted credential email to the address.
func (m *SMTPMailer) SendCredentials(ctx context.Context, email, password string) error {
	msg, err := m.buildMessage(email, password)
	if err != nil {
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send credential email: %w", err)
	}

	m.log.Info("credential email sent", zap.String("to", email))
	return nil
}

func (m *SMTPMailer) buildMessage(email, password string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.SenderName, m.cfg.User); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(credentialSubject)
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(credentialBody, email, password))

	return msg, nil
}
