package report

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Mailer delivers rendered reports over SMTP with implicit TLS.
type Mailer struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	to     []string
	logger *slog.Logger
}

// MailerOption configures a Mailer.
type MailerOption func(*Mailer)

// WithMailerLogger sets a custom logger.
func WithMailerLogger(logger *slog.Logger) MailerOption {
	return func(m *Mailer) {
		m.logger = logger
	}
}

// NewMailer creates a Mailer. The sender address is always added to the
// recipient list so the tutor keeps a copy of every report.
func NewMailer(host string, port int, user, pass, from string, to []string, opts ...MailerOption) *Mailer {
	m := &Mailer{
		host:   host,
		port:   port,
		user:   user,
		pass:   pass,
		from:   from,
		to:     to,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send delivers one report.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	recipients := m.recipients()
	if len(recipients) == 0 {
		return fmt.Errorf("no report recipients configured")
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set sender %q: %w", m.from, err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(m.host,
		gomail.WithPort(m.port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.user),
		gomail.WithPassword(m.pass),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	m.logger.Info("report sent",
		"subject", subject,
		"recipients", len(recipients),
	)
	return nil
}

// recipients merges the configured list with the sender, dropping blanks and
// duplicates while keeping order.
func (m *Mailer) recipients() []string {
	seen := make(map[string]bool)
	var out []string
	for _, addr := range append(append([]string{}, m.to...), m.from) {
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}
