package notify

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"food-delivery-backend/models"
)

// Sender delivers order notifications. Sends are fire-and-forget: a
// failure is logged by the caller, never retried, and never fails the
// order mutation that triggered it.
type Sender interface {
	OrderConfirmation(to string, order *models.Order) error
	NewOrderAlert(to string, order *models.Order) error
}

// SMTPSender sends plain-text mail over SMTP
type SMTPSender struct {
	host string
	port string
	from string
	auth smtp.Auth
}

func NewSMTPSender(host, port, from, user, pass string) *SMTPSender {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPSender{host: host, port: port, from: from, auth: auth}
}

func (s *SMTPSender) OrderConfirmation(to string, order *models.Order) error {
	subject := fmt.Sprintf("Order #%d confirmed", order.ID)
	body := fmt.Sprintf(
		"Your order #%d has been placed.\nItems: %d\nTotal: %.2f\nPayable: %.2f\nDelivery to: %s\n",
		order.ID, len(order.Items), order.TotalAmount, order.FinalAmount, order.DeliveryAddress)
	return s.send(to, subject, body)
}

func (s *SMTPSender) NewOrderAlert(to string, order *models.Order) error {
	subject := fmt.Sprintf("New order #%d", order.ID)
	body := fmt.Sprintf(
		"A new order #%d just came in.\nItems: %d\nAmount: %.2f\nOpen your dashboard to accept it.\n",
		order.ID, len(order.Items), order.FinalAmount)
	return s.send(to, subject, body)
}

func (s *SMTPSender) send(to, subject, body string) error {
	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body)
	return smtp.SendMail(s.host+":"+s.port, s.auth, s.from, []string{to}, msg)
}

// LogSender is used when no SMTP host is configured (local development)
type LogSender struct {
	Logger *zap.SugaredLogger
}

func (l *LogSender) OrderConfirmation(to string, order *models.Order) error {
	l.Logger.Infow("order confirmation (not sent, no smtp configured)", "to", to, "order_id", order.ID)
	return nil
}

func (l *LogSender) NewOrderAlert(to string, order *models.Order) error {
	l.Logger.Infow("new order alert (not sent, no smtp configured)", "to", to, "order_id", order.ID)
	return nil
}
