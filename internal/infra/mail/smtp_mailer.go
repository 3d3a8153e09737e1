// Package mail provides the SMTP implementation of the outbound email service.
package mail

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"

	"chatline/config"
	"chatline/internal/domain/service"
)

// smtpMailer delivers templated notification email through an SMTP account.
type smtpMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer is the constructor for smtpMailer.
func NewSMTPMailer(cfg *config.Config) (service.Mailer, error) {
	if cfg.SMTP == nil {
		return nil, errors.New("smtp configuration must be provided")
	}

	client, err := gomail.NewClient(cfg.SMTP.Host,
		gomail.WithPort(cfg.SMTP.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.SMTP.Username),
		gomail.WithPassword(cfg.SMTP.Password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create smtp client")
	}

	return &smtpMailer{
		client: client,
		from:   cfg.SMTP.From,
	}, nil
}

// SendVerification delivers the email-verification link.
func (m *smtpMailer) SendVerification(ctx context.Context, to string, link string) error {
	return m.send(ctx, to, "Verify Your Email", verificationBody(link))
}

// SendOTP delivers a plaintext one-time passcode.
func (m *smtpMailer) SendOTP(ctx context.Context, to string, code string) error {
	return m.send(ctx, to, "Your OTP Code", otpBody(code))
}

func (m *smtpMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return errors.Wrap(err, "invalid from address")
	}
	if err := msg.To(to); err != nil {
		return errors.Wrap(err, "invalid recipient address")
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrapf(err, "failed to send %q email", subject)
	}

	return nil
}

// verificationBody renders the verification email. Kept as a pure function so
// the template can be tested without an SMTP server.
func verificationBody(link string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <h2 style="color: #4CAF50;">Verify Your Email</h2>
  <p>Hi there,</p>
  <p>Thanks for signing up! Please click the button below to verify your email address:</p>
  <a href="%[1]s"
     style="display: inline-block; padding: 10px 20px; margin: 10px 0; font-size: 16px; color: white; background-color: #4CAF50; text-decoration: none; border-radius: 5px;">
     Verify Email
  </a>
  <p>If the button doesn't work, copy and paste this link into your browser:</p>
  <p>%[1]s</p>
  <hr>
  <p style="font-size: 12px; color: #777;">If you did not request this, please ignore this email.</p>
</div>`, link)
}

// otpBody renders the OTP email.
func otpBody(code string) string {
	return fmt.Sprintf(`
<p>Hi,</p>
<p><b>%s</b> is your verification OTP. Please do not share it with anyone.</p>`, code)
}
