// Package mail builds and sends the outbound messages of the
// verification and password-reset flows. Delivery is best-effort: the
// core constructs content and link URLs, dispatch happens off the
// request path and failures are only logged.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
)

// Message is one outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Dispatcher hands a message off for asynchronous delivery. It never
// returns an error: requests must not block on, or fail because of, the
// notification sink.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message)
}

// Sender performs the actual delivery. Implemented by SMTPSender; tests
// substitute their own.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// VerificationMessage builds the email-confirmation mail. The link
// carries the verification token back to GET /auth/email-verify.
func VerificationMessage(username, email, verifyURL string) Message {
	return Message{
		To:      email,
		Subject: "Confirm your email address",
		Body: fmt.Sprintf(
			"Hi %s, thanks for registering.\nIf this email address is yours, follow the link below to log in.\n%s",
			username, verifyURL),
	}
}

// ResetMessage builds the password-reset mail.
func ResetMessage(email, resetURL string) Message {
	return Message{
		To:      email,
		Subject: "Reset your password",
		Body: fmt.Sprintf(
			"To reset your password, follow the link below.\n%s",
			resetURL),
	}
}

// SMTPSender delivers messages over plain SMTP.
type SMTPSender struct {
	addr string
	from string
}

// NewSMTPSender creates a sender for host:port, sending as from.
func NewSMTPSender(host, port, from string) *SMTPSender {
	return &SMTPSender{addr: host + ":" + port, from: from}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	payload := fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		msg.To, s.from, msg.Subject, msg.Body)

	if err := smtp.SendMail(s.addr, nil, s.from, []string{msg.To}, []byte(payload)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
