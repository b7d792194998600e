// Package notify emails customers about their orders through Resend.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"
	"github.com/sirupsen/logrus"

	"github.com/muze-cafe/api/internal/service"
)

// Sender is the part of the Resend client the mailer uses.
// Satisfied by resend.Client.Emails.
type Sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Mailer renders order emails and hands them to Resend.
type Mailer struct {
	sender   Sender
	from     string
	cafeName string
}

// NewMailer creates a Mailer from a Resend API key.
func NewMailer(apiKey, from, cafeName string) *Mailer {
	client := resend.NewClient(apiKey)
	return NewMailerWithSender(client.Emails, from, cafeName)
}

func NewMailerWithSender(sender Sender, from, cafeName string) *Mailer {
	return &Mailer{sender: sender, from: from, cafeName: cafeName}
}

// OrderConfirmed sends the "order received" email.
func (m *Mailer) OrderConfirmed(ctx context.Context, order *service.OrderDetail) error {
	subject := fmt.Sprintf("Order #%s Confirmed - %s", PickupLabel(order.Order.PickupNumber), m.cafeName)
	return m.send(ctx, order, subject, confirmationTmpl)
}

// OrderReady sends the "ready for pickup" email.
func (m *Mailer) OrderReady(ctx context.Context, order *service.OrderDetail) error {
	subject := fmt.Sprintf("Your Order #%s is Ready! - %s", PickupLabel(order.Order.PickupNumber), m.cafeName)
	return m.send(ctx, order, subject, readyTmpl)
}

func (m *Mailer) send(ctx context.Context, order *service.OrderDetail, subject string, tmpl *template.Template) error {
	if !order.Order.Email.Valid || order.Order.Email.String == "" {
		return nil
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, emailData{CafeName: m.cafeName, Order: order.View()}); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}

	resp, err := m.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{order.Order.Email.String},
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("send %s: %w", tmpl.Name(), err)
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.Order.ID,
		"email_id": resp.Id,
		"template": tmpl.Name(),
	}).Info("email sent")
	return nil
}

// Noop drops every notification. Used when no API key is configured.
type Noop struct{}

func (Noop) OrderConfirmed(ctx context.Context, order *service.OrderDetail) error {
	logrus.WithField("order_id", order.Order.ID).Debug("email not configured, skipping confirmation")
	return nil
}

func (Noop) OrderReady(ctx context.Context, order *service.OrderDetail) error {
	logrus.WithField("order_id", order.Order.ID).Debug("email not configured, skipping ready notice")
	return nil
}

// PickupLabel zero-pads a pickup number to three digits.
func PickupLabel(n int32) string {
	return fmt.Sprintf("%03d", n)
}
