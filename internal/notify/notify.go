// Package notify sends contribution receipts by e-mail.
package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"

	"github.com/jredh-dev/hochzeit/internal/wishlist"
)

//go:embed templates/*.html
var templateFS embed.FS

var contributionTmpl = template.Must(template.ParseFS(templateFS, "templates/contribution.html"))

const subject = "Vielen Dank für euren Beitrag"

// Config holds SMTP settings and the details printed in every receipt.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BCC      string // optional copy, e.g. to the couple

	Couple        string
	EventDate     string
	BankHolder    string
	BankIBAN      string
	BankReference string
}

// Transport delivers prepared messages. *mail.Client satisfies it.
type Transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer implements wishlist.Notifier over SMTP.
type Mailer struct {
	cfg       Config
	transport Transport
}

// New creates a Mailer for cfg. It returns an error when cfg.Host or
// cfg.From is empty; callers treat that as "notifications disabled".
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("smtp host and sender are required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return NewWithTransport(cfg, client), nil
}

// NewWithTransport creates a Mailer that sends through t.
func NewWithTransport(cfg Config, t Transport) *Mailer {
	return &Mailer{cfg: cfg, transport: t}
}

// NotifyContribution implements wishlist.Notifier.
func (m *Mailer) NotifyContribution(ctx context.Context, r wishlist.Receipt) error {
	body, err := Render(m.cfg, r)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(r.Email); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	if m.cfg.BCC != "" {
		if err := msg.Bcc(m.cfg.BCC); err != nil {
			return fmt.Errorf("set bcc: %w", err)
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := m.transport.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send receipt %s: %w", r.SubmissionID, err)
	}
	return nil
}

type receiptView struct {
	wishlist.Receipt
	Couple        string
	EventDate     string
	BankHolder    string
	BankIBAN      string
	BankReference string
}

// Render produces the HTML receipt.
func Render(cfg Config, r wishlist.Receipt) (string, error) {
	var buf bytes.Buffer
	err := contributionTmpl.Execute(&buf, receiptView{
		Receipt:       r,
		Couple:        cfg.Couple,
		EventDate:     cfg.EventDate,
		BankHolder:    cfg.BankHolder,
		BankIBAN:      cfg.BankIBAN,
		BankReference: cfg.BankReference,
	})
	if err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return buf.String(), nil
}
