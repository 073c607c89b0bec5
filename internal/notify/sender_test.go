package notify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/quotedprintable"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"ipalert/internal/config"
	"ipalert/internal/models"
)

// fakeSMTP serves a single scripted SMTP session on loopback
type fakeSMTP struct {
	ln         net.Listener
	greeting   string
	silent     bool
	rejectAuth bool
	rejectRcpt string

	done     chan struct{}
	authLine string
	from     string
	rcpts    []string
	data     string
	quit     bool
}

func startFakeSMTP(t *testing.T, f *fakeSMTP) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f.ln = ln
	f.done = make(chan struct{})
	if f.greeting == "" {
		f.greeting = "220 localhost ESMTP fake"
	}
	t.Cleanup(func() { ln.Close() })
	go f.serve()
	return f
}

func (f *fakeSMTP) serve() {
	defer close(f.done)

	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	if f.silent {
		// Hold the connection open without ever greeting
		buf := make([]byte, 1)
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		conn.Read(buf)
		return
	}

	r := bufio.NewReader(conn)
	reply := func(s string) { fmt.Fprintf(conn, "%s\r\n", s) }

	reply(f.greeting)
	if !strings.HasPrefix(f.greeting, "220") {
		return
	}

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		cmd := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			reply("250-localhost")
			reply("250 AUTH PLAIN LOGIN")
		case strings.HasPrefix(cmd, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(cmd, "AUTH"):
			f.authLine = line
			if f.rejectAuth {
				reply("535 5.7.8 Authentication credentials invalid")
			} else {
				reply("235 2.7.0 Authentication successful")
			}
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			f.from = strings.Trim(line[len("MAIL FROM:"):], "<> ")
			reply("250 2.1.0 OK")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			rcpt := strings.Trim(line[len("RCPT TO:"):], "<> ")
			if rcpt == f.rejectRcpt {
				reply("550 5.1.1 No such user")
				continue
			}
			f.rcpts = append(f.rcpts, rcpt)
			reply("250 2.1.5 OK")
		case cmd == "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				if strings.HasPrefix(l, "..") {
					l = l[1:]
				}
				b.WriteString(l)
			}
			f.data = b.String()
			reply("250 2.0.0 OK queued")
		case cmd == "QUIT":
			f.quit = true
			reply("221 2.0.0 Bye")
			return
		default:
			reply("501 5.5.2 Syntax error")
		}
	}
}

// decodeBody returns the quoted-printable decoded body of a single-part message
func decodeBody(t *testing.T, data string) string {
	t.Helper()
	_, body, ok := strings.Cut(data, "\r\n\r\n")
	require.True(t, ok, "message has no header/body separator")
	decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(body)))
	require.NoError(t, err)
	return string(decoded)
}

func testConfig() (config.SMTPConfig, config.MailConfig) {
	smtpCfg := config.SMTPConfig{
		Host:     "localhost",
		Port:     465,
		Username: "alerts",
		Password: "hunter2",
		Timeout:  2 * time.Second,
	}
	mailCfg := config.MailConfig{
		Sender:    "alerts@example.com",
		Receivers: []string{"ops@example.com", "me@example.com"},
	}
	return smtpCfg, mailCfg
}

func newTestSender(t *testing.T, f *fakeSMTP) *Sender {
	t.Helper()
	smtpCfg, mailCfg := testConfig()
	s := NewSender(smtpCfg, mailCfg, zaptest.NewLogger(t))
	s.dial = func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, f.ln.Addr().String())
	}
	return s
}

func testObservation() models.Observation {
	return models.Observation{
		Current:  models.HostRecord{Hostname: "nas", IP: "203.0.113.9", Timestamp: time.Unix(200, 0)},
		Previous: &models.HostRecord{Hostname: "nas", IP: "203.0.113.4", Timestamp: time.Unix(100, 0)},
		Changed:  true,
	}
}

func TestSendSuccess(t *testing.T) {
	f := startFakeSMTP(t, &fakeSMTP{})
	s := newTestSender(t, f)

	err := s.Notify(context.Background(), testObservation())
	require.NoError(t, err)
	<-f.done

	assert.True(t, strings.HasPrefix(f.authLine, "AUTH PLAIN "))
	assert.Equal(t, "alerts@example.com", f.from)
	assert.Equal(t, []string{"ops@example.com", "me@example.com"}, f.rcpts)
	assert.Contains(t, f.data, "Subject: New IP Alert")
	assert.Contains(t, f.data, "text/html")
	assert.Contains(t, decodeBody(t, f.data), "<strong>203.0.113.9</strong>")
	assert.True(t, f.quit)
}

func TestSendAuthenticationRejected(t *testing.T) {
	f := startFakeSMTP(t, &fakeSMTP{rejectAuth: true})
	s := newTestSender(t, f)

	err := s.Notify(context.Background(), testObservation())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
	<-f.done

	assert.Empty(t, f.from, "no envelope may be sent after a failed AUTH")
	assert.Empty(t, f.data)
}

func TestSendRecipientRejected(t *testing.T) {
	f := startFakeSMTP(t, &fakeSMTP{rejectRcpt: "me@example.com"})
	s := newTestSender(t, f)

	err := s.Notify(context.Background(), testObservation())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmission)
	<-f.done

	assert.Empty(t, f.data)
}

func TestSendBadGreeting(t *testing.T) {
	f := startFakeSMTP(t, &fakeSMTP{greeting: "554 5.3.2 service unavailable"})
	s := newTestSender(t, f)

	err := s.Notify(context.Background(), testObservation())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestSendDialFailure(t *testing.T) {
	smtpCfg, mailCfg := testConfig()
	s := NewSender(smtpCfg, mailCfg, zaptest.NewLogger(t))
	s.dial = func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}

	err := s.Notify(context.Background(), testObservation())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestSendTimesOut(t *testing.T) {
	f := startFakeSMTP(t, &fakeSMTP{silent: true})
	s := newTestSender(t, f)
	s.smtp.Timeout = 200 * time.Millisecond

	start := time.Now()
	err := s.Notify(context.Background(), testObservation())
	assert.ErrorIs(t, err, ErrTransport)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRenderEncodesNonASCIIHostname(t *testing.T) {
	smtpCfg, mailCfg := testConfig()
	s := NewSender(smtpCfg, mailCfg, zaptest.NewLogger(t))

	msg, err := Compose(models.HostRecord{Hostname: "bürorechner", IP: "10.0.0.1"}, nil)
	require.NoError(t, err)

	raw, err := s.Render(msg)
	require.NoError(t, err)

	out := string(raw)
	assert.Contains(t, strings.ToLower(out), "=?utf-8?")
	assert.Contains(t, out, "alerts@example.com")
	assert.Contains(t, out, "ops@example.com")
	assert.NotContains(t, out, "From: bürorechner")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "State(42)", State(42).String())
}
