package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends owner notifications over SMTP.
type SMTPMailer struct {
	dialer dialer
	from   string
	logger *logger.Logger
}

func NewSMTPMailer(host string, port int, username, password, from string, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: log.Named("SMTPMailer"),
	}
}

func (m *SMTPMailer) send(ctx context.Context, msg *gomail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.dialer.DialAndSend(msg)
}

func (m *SMTPMailer) SendContactRequest(ctx context.Context, req *domain.ContactRequest) error {
	if req.OwnerEmail == "" {
		return fmt.Errorf("contact request for %s: owner has no email", req.PetID)
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", req.OwnerEmail)
	if req.FromEmail != "" {
		msg.SetHeader("Reply-To", req.FromEmail)
	}
	msg.SetHeader("Subject", req.Subject)
	msg.SetBody("text/plain", contactBody(req))

	if err := m.send(ctx, msg); err != nil {
		m.logger.Error("Failed to send contact request", zap.String("pet_id", req.PetID), zap.Error(err))
		return fmt.Errorf("send contact request: %w", err)
	}
	m.logger.Info("Contact request mailed", zap.String("pet_id", req.PetID))
	return nil
}

func contactBody(req *domain.ContactRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", req.OwnerName)
	fmt.Fprintf(&b, "%s is interested in %s.\n\n", req.FromUser, req.PetName)
	b.WriteString(req.Message)
	b.WriteString("\n\n")
	if req.FromEmail != "" {
		fmt.Fprintf(&b, "You can reply to %s.\n", req.FromEmail)
	}
	fmt.Fprintf(&b, "Sent %s\n", req.Timestamp.UTC().Format("2006-01-02 15:04 MST"))
	return b.String()
}

func (m *SMTPMailer) SendListingCreated(ctx context.Context, toEmail, petName string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "New Listing Created")
	msg.SetBody("text/plain", "Your listing '"+petName+"' has been created successfully.")

	if err := m.send(ctx, msg); err != nil {
		m.logger.Error("Failed to send listing created email", zap.Error(err))
		return fmt.Errorf("send listing created: %w", err)
	}
	return nil
}

// NopMailer logs instead of sending. Used when SMTP is not configured.
type NopMailer struct {
	logger *logger.Logger
}

func NewNopMailer(log *logger.Logger) *NopMailer {
	return &NopMailer{logger: log.Named("NopMailer")}
}

func (m *NopMailer) SendContactRequest(_ context.Context, req *domain.ContactRequest) error {
	m.logger.Info("Mail disabled, contact request not sent", zap.String("pet_id", req.PetID))
	return nil
}

func (m *NopMailer) SendListingCreated(_ context.Context, _, petName string) error {
	m.logger.Debug("Mail disabled, listing created email not sent", zap.String("pet_name", petName))
	return nil
}
