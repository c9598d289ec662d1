package mail

import (
	"strings"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/errors"
)

// DefaultSubject is the subject line for share notifications.
const DefaultSubject = "File Shared With You"

// transport abstracts message delivery so tests can intercept it.
// *gomail.Dialer satisfies it.
type transport interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender delivers HTML notification emails over SMTP with STARTTLS.
type Sender struct {
	transport     transport
	senderName    string
	senderAddress string
}

// NewSender creates a sender from mail configuration.
func NewSender(cfg config.MailConfig) *Sender {
	return &Sender{
		transport:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		senderName:    cfg.SenderName,
		senderAddress: cfg.SenderAddress,
	}
}

// NewSenderWithTransport creates a sender with a custom delivery transport.
// This is primarily used for testing.
func NewSenderWithTransport(t transport, cfg config.MailConfig) *Sender {
	return &Sender{
		transport:     t,
		senderName:    cfg.SenderName,
		senderAddress: cfg.SenderAddress,
	}
}

// Send delivers an HTML message to the recipient. Any attachment paths are
// attached to the message. Authentication failures are reported as
// ErrMailAuth, everything else as ErrMailSend.
func (s *Sender) Send(recipient, subject, htmlBody string, attachments ...string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderAddress, s.senderName)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	for _, attachment := range attachments {
		m.Attach(attachment)
	}

	logrus.WithFields(logrus.Fields{
		"recipient": recipient,
		"subject":   subject,
	}).Info("sending notification email")

	if err := s.transport.DialAndSend(m); err != nil {
		if isAuthError(err) {
			return errors.New("notify", errors.ErrMailAuth).WithMessage(err.Error())
		}
		return errors.New("notify", errors.ErrMailSend).WithMessage(err.Error())
	}

	return nil
}

// isAuthError recognizes SMTP authentication rejections, which servers
// report as 535 replies or with an "auth" phrase.
func isAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "535") || strings.Contains(msg, "auth")
}
