package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/suPer8Hu/client-portal/internal/logger"
)

// WebhookSink posts the message payload as JSON to its destination URL.
type WebhookSink struct {
	Client *http.Client
}

func NewWebhookSink() *WebhookSink {
	return &WebhookSink{Client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *WebhookSink) Send(ctx context.Context, m Message) (Receipt, error) {
	if m.Destination == "" {
		return Receipt{}, fmt.Errorf("notify: webhook destination is empty")
	}
	return postJSON(ctx, s.Client, m.Destination, m.Payload)
}

// EmailWebhookSink hands emails to an automation webhook that does the
// actual sending. The body is {email, subject, mailBody}.
type EmailWebhookSink struct {
	URL    string
	Client *http.Client
}

func NewEmailWebhookSink(url string) *EmailWebhookSink {
	return &EmailWebhookSink{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *EmailWebhookSink) Send(ctx context.Context, m Message) (Receipt, error) {
	body, err := json.Marshal(map[string]string{
		"email":    m.Destination,
		"subject":  m.Subject,
		"mailBody": m.Body,
	})
	if err != nil {
		return Receipt{}, err
	}
	return postJSON(ctx, s.Client, s.URL, body)
}

func postJSON(ctx context.Context, client *http.Client, url string, body []byte) (Receipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Receipt{}, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{StatusCode: resp.StatusCode}, &StatusError{StatusCode: resp.StatusCode}
	}
	return Receipt{StatusCode: resp.StatusCode}, nil
}

// SMTPSink sends HTML email directly.
type SMTPSink struct {
	Host string
	Port int
	User string
	Pass string
	From string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSink(host string, port int, user, pass, from string) *SMTPSink {
	return &SMTPSink{Host: host, Port: port, User: user, Pass: pass, From: from, send: smtp.SendMail}
}

func (s *SMTPSink) Send(ctx context.Context, m Message) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	if err := s.send(addr, auth, s.From, []string{m.Destination}, buildMIME(s.From, m)); err != nil {
		return Receipt{}, err
	}
	return Receipt{}, nil
}

func buildMIME(from string, m Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + m.Destination + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(m.Body)
	return []byte(b.String())
}

// LogSink only logs. It stands in for channels with no configured transport.
type LogSink struct {
	Log *logger.Logger
}

func (s LogSink) Send(ctx context.Context, m Message) (Receipt, error) {
	s.Log.Info("notification not sent, no transport configured",
		"channel", m.Channel, "destination", m.Destination, "subject", m.Subject)
	return Receipt{}, nil
}
