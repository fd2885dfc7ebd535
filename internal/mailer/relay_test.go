package mailer

import (
	"io"
	"mime/quotedprintable"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
)

// receivedMail is one message accepted by fakeRelay.
type receivedMail struct {
	From string
	To   []string
	Data string
}

// Body returns the decoded quoted-printable body.
func (m receivedMail) Body() string {
	parts := strings.SplitN(m.Data, "\r\n\r\n", 2)
	if len(parts) != 2 {
		return ""
	}
	b, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(parts[1])))
	if err != nil {
		return ""
	}
	return string(b)
}

// Header returns the raw value of the first header with the given name.
func (m receivedMail) Header(name string) string {
	head := strings.SplitN(m.Data, "\r\n\r\n", 2)[0]
	for _, line := range strings.Split(head, "\r\n") {
		if k, v, ok := strings.Cut(line, ": "); ok && strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// fakeRelay is a minimal plaintext SMTP server for session tests.
type fakeRelay struct {
	ln net.Listener

	rejectAuth bool
	failData   bool

	mu       sync.Mutex
	messages []receivedMail
	logins   int
	quits    int
	conns    int
}

// newFakeRelay starts a relay; opts run before it accepts connections.
func newFakeRelay(t *testing.T, opts ...func(*fakeRelay)) *fakeRelay {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	r := &fakeRelay{ln: ln}
	for _, opt := range opts {
		opt(r)
	}
	go r.acceptLoop()
	t.Cleanup(func() { ln.Close() })
	return r
}

func (r *fakeRelay) Port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

func (r *fakeRelay) Config() Config {
	return Config{
		Host:     "127.0.0.1",
		Port:     r.Port(),
		Username: "bot@lcd.example.com",
		Password: "secret",
	}
}

func (r *fakeRelay) Messages() []receivedMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]receivedMail, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *fakeRelay) Stats() (conns, logins, quits int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns, r.logins, r.quits
}

func (r *fakeRelay) acceptLoop() {
	for {
		conn, err := r.ln.Accept()
		if err != nil {
			return
		}
		r.mu.Lock()
		r.conns++
		r.mu.Unlock()
		go r.serve(conn)
	}
}

func (r *fakeRelay) serve(conn net.Conn) {
	defer conn.Close()
	tp := textproto.NewConn(conn)

	_ = tp.PrintfLine("220 fake.relay ESMTP")
	var cur *receivedMail

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		cmd := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			_ = tp.PrintfLine("250-fake.relay")
			_ = tp.PrintfLine("250-AUTH PLAIN")
			_ = tp.PrintfLine("250 8BITMIME")
		case strings.HasPrefix(cmd, "AUTH"):
			if r.rejectAuth {
				_ = tp.PrintfLine("535 5.7.8 authentication credentials invalid")
				continue
			}
			r.mu.Lock()
			r.logins++
			r.mu.Unlock()
			_ = tp.PrintfLine("235 2.7.0 authentication successful")
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			cur = &receivedMail{From: angleAddr(line)}
			_ = tp.PrintfLine("250 2.1.0 ok")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			if cur == nil {
				_ = tp.PrintfLine("503 5.5.1 need MAIL first")
				continue
			}
			cur.To = append(cur.To, angleAddr(line))
			_ = tp.PrintfLine("250 2.1.5 ok")
		case cmd == "DATA":
			if r.failData {
				_ = tp.PrintfLine("554 5.3.0 transaction failed")
				continue
			}
			_ = tp.PrintfLine("354 end data with <CR><LF>.<CR><LF>")
			lines, err := tp.ReadDotLines()
			if err != nil {
				return
			}
			cur.Data = strings.Join(lines, "\r\n")
			r.mu.Lock()
			r.messages = append(r.messages, *cur)
			r.mu.Unlock()
			cur = nil
			_ = tp.PrintfLine("250 2.0.0 queued")
		case cmd == "RSET", cmd == "NOOP":
			_ = tp.PrintfLine("250 2.0.0 ok")
		case cmd == "QUIT":
			r.mu.Lock()
			r.quits++
			r.mu.Unlock()
			_ = tp.PrintfLine("221 2.0.0 bye")
			return
		default:
			_ = tp.PrintfLine("501 5.5.2 syntax error")
		}
	}
}

func angleAddr(line string) string {
	start := strings.Index(line, "<")
	end := strings.Index(line, ">")
	if start < 0 || end < start {
		return ""
	}
	return line[start+1 : end]
}
