// Package mailer sends order emails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/junaidrashid-git/storefront-api/models"
	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("email is not configured")

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// Disabled is used when no SMTP host is configured.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) error { return ErrNotConfigured }

var orderTemplate = template.Must(template.New("order").Parse(`<h2>{{.Heading}}</h2>
<p>Order #{{.Order.ID}} &middot; status: {{.Order.Status}}</p>
<table>
<tr><th>Product</th><th>Quantity</th><th>Price</th></tr>
{{range .Order.Items}}<tr><td>#{{.ProductID}}</td><td>{{.Quantity}}</td><td>{{.OrderItemPrice.StringFixed 2}}</td></tr>
{{end}}</table>
<p>Total: {{.Order.TotalOrderPrice.StringFixed 2}}</p>
{{if .Order.WaitingForPayment}}<p>Please pay before {{.Order.PaymentDeadline.Format "2006-01-02 15:04 MST"}}.</p>{{end}}`))

// OrderSummary renders an order email for its owner.
func OrderSummary(to, heading string, order *models.Order) (Message, error) {
	var buf bytes.Buffer
	err := orderTemplate.Execute(&buf, struct {
		Heading string
		Order   *models.Order
	}{heading, order})
	if err != nil {
		return Message{}, fmt.Errorf("render order email: %w", err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s (order #%d)", heading, order.ID),
		HTML:    buf.String(),
	}, nil
}

// Notifier sends order confirmations through a Sender.
type Notifier struct {
	sender Sender
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error {
	msg, err := OrderSummary(user.Email, "Thank you for your order", order)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}
