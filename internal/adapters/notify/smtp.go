package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPNotifier delivers the token over plain SMTP with optional PLAIN auth.
// The dial respects the caller's context deadline; an already-established
// session runs to completion.
type SMTPNotifier struct {
	addr     string // host:port
	username string
	password string
	sender   string
}

func NewSMTPNotifier(addr, username, password, sender string) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, username: username, password: password, sender: sender}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, token string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", n.addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	host, _, err := net.SplitHostPort(n.addr)
	if err != nil {
		host = n.addr
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if n.username != "" {
		auth := smtp.PlainAuth("", n.username, n.password, host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(n.sender); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(resetMessage(n.sender, to, token))); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

func resetMessage(from, to, token string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Password reset\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your password reset code is: %s\r\n", token)
	b.WriteString("The code is valid for a limited time and can be used once.\r\n")
	return b.String()
}
