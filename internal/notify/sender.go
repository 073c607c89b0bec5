package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"ipalert/internal/config"
	"ipalert/internal/models"
)

// State is the progress of a single mail submission session
type State int

const (
	Disconnected State = iota
	Connected
	Authenticated
	Submitted
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Authenticated:
		return "authenticated"
	case Submitted:
		return "submitted"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DialFunc opens the transport connection to the mail server
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Sender delivers notifications over SMTP with implicit TLS
type Sender struct {
	smtp     config.SMTPConfig
	envelope config.MailConfig
	dial     DialFunc
	logger   *zap.Logger
}

// NewSender creates a Sender for the given server and envelope settings
func NewSender(smtpCfg config.SMTPConfig, mailCfg config.MailConfig, logger *zap.Logger) *Sender {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: smtpCfg.Timeout},
		Config: &tls.Config{
			ServerName: smtpCfg.Host,
			MinVersion: tls.VersionTLS12,
		},
	}
	return &Sender{
		smtp:     smtpCfg,
		envelope: mailCfg,
		dial:     dialer.DialContext,
		logger:   logger,
	}
}

// Notify composes and sends the alert for obs
func (s *Sender) Notify(ctx context.Context, obs models.Observation) error {
	msg, err := Compose(obs.Current, obs.Previous)
	if err != nil {
		return fmt.Errorf("compose message: %w", err)
	}
	return s.Send(ctx, msg)
}

// Render encodes m as a complete MIME message
func (s *Sender) Render(m *Message) ([]byte, error) {
	msg := mail.NewMsg(mail.WithCharset(mail.CharsetUTF8), mail.WithEncoding(mail.EncodingQP))
	if err := msg.FromFormat(m.FromName, s.envelope.Sender); err != nil {
		return nil, fmt.Errorf("%w: sender %q: %w", ErrSubmission, s.envelope.Sender, err)
	}
	if err := msg.To(s.envelope.Receivers...); err != nil {
		return nil, fmt.Errorf("%w: receivers: %w", ErrSubmission, err)
	}
	msg.Subject(m.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return buf.Bytes(), nil
}

// Send submits m in one session: connect, authenticate, submit, close. The
// session is closed on every path and never retried.
func (s *Sender) Send(ctx context.Context, m *Message) error {
	body, err := s.Render(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.smtp.Timeout)
	defer cancel()

	state := Disconnected
	addr := s.smtp.Addr()
	defer func() {
		s.logger.Debug("smtp session finished", zap.String("server", addr), zap.Stringer("last_state", state))
	}()

	conn, err := s.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", ErrTransport, addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, s.smtp.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: greeting from %s: %w", ErrTransport, addr, err)
	}
	defer func() {
		client.Close()
		state = Closed
	}()
	state = Connected

	if s.smtp.Username != "" {
		auth := smtp.PlainAuth("", s.smtp.Username, s.smtp.Password, s.smtp.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("%w: %w", classifyAuth(err), err)
		}
	}
	state = Authenticated

	if err := client.Mail(s.envelope.Sender); err != nil {
		return fmt.Errorf("%w: MAIL FROM %s: %w", ErrSubmission, s.envelope.Sender, err)
	}
	for _, rcpt := range s.envelope.Receivers {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("%w: RCPT TO %s: %w", ErrSubmission, rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%w: DATA: %w", ErrSubmission, err)
	}
	if _, err := w.Write(body); err != nil {
		w.Close()
		return fmt.Errorf("%w: write message: %w", ErrTransport, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: message content: %w", ErrSubmission, err)
	}
	state = Submitted

	// The message is accepted at this point; a failed QUIT is not a delivery failure.
	if err := client.Quit(); err != nil {
		s.logger.Warn("smtp QUIT failed", zap.String("server", addr), zap.Error(err))
	}

	s.logger.Info("alert mail sent",
		zap.Strings("receivers", s.envelope.Receivers),
		zap.String("server", addr),
	)
	return nil
}
