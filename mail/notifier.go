package mail

import (
	"github.com/niftyshare/nifty/config"
)

// Notifier renders a named template and delivers the result to a recipient.
// It is the production notification collaborator for the transfer pipeline.
type Notifier struct {
	renderer *Renderer
	sender   *Sender
}

// NewNotifier wires a renderer over templateDir to an SMTP sender.
func NewNotifier(cfg config.MailConfig, templateDir string) *Notifier {
	return &Notifier{
		renderer: NewRenderer(templateDir),
		sender:   NewSender(cfg),
	}
}

// Notify renders the named template with data and emails it to recipient
// with the default subject.
func (n *Notifier) Notify(recipient, template string, data any) error {
	body, err := n.renderer.Render(template, data)
	if err != nil {
		return err
	}
	return n.sender.Send(recipient, DefaultSubject, body)
}
