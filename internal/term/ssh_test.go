package term

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"worms/internal/config"
)

func TestParsePtyRequest(t *testing.T) {
	payload := ssh.Marshal(struct {
		Term          string
		Cols, Rows    uint32
		Width, Height uint32
		Modes         string
	}{"xterm-256color", 120, 40, 0, 0, ""})

	term, w, h, ok := parsePtyRequest(payload)
	if !ok || term != "xterm-256color" || w != 120 || h != 40 {
		t.Fatalf("parsePtyRequest = %q %d %d %v", term, w, h, ok)
	}
	if _, _, _, ok := parsePtyRequest(payload[:10]); ok {
		t.Fatal("truncated pty-req accepted")
	}
	if _, _, _, ok := parsePtyRequest([]byte{0, 0, 0, 99, 'x'}); ok {
		t.Fatal("overlong terminal name accepted")
	}
}

func TestParseWindowChange(t *testing.T) {
	payload := ssh.Marshal(struct{ Cols, Rows, Width, Height uint32 }{100, 30, 0, 0})
	w, h, ok := parseWindowChange(payload)
	if !ok || w != 100 || h != 30 {
		t.Fatalf("parseWindowChange = %d %d %v", w, h, ok)
	}
	if _, _, ok := parseWindowChange(payload[:6]); ok {
		t.Fatal("truncated window-change accepted")
	}
}

func TestParseAuthorizedKeys(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	key, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	keys, err := parseAuthorizedKeys(ssh.MarshalAuthorizedKey(key))
	if err != nil {
		t.Fatal(err)
	}
	if !keys[string(key.Marshal())] || len(keys) != 1 {
		t.Fatalf("keys = %v", keys)
	}
	if _, err := parseAuthorizedKeys([]byte("not a key\n")); err == nil {
		t.Fatal("garbage accepted")
	}
}

// fakeChannel is an ssh.Channel over an in-memory reader.
type fakeChannel struct {
	io.Reader
	out bytes.Buffer
}

func (f *fakeChannel) Write(p []byte) (int, error) { return f.out.Write(p) }
func (f *fakeChannel) Close() error                { return nil }
func (f *fakeChannel) CloseWrite() error           { return nil }
func (f *fakeChannel) SendRequest(string, bool, []byte) (bool, error) {
	return true, nil
}
func (f *fakeChannel) Stderr() io.ReadWriter { return &f.out }

func TestUserConnectionTty(t *testing.T) {
	uc := NewUserConnection(&fakeChannel{Reader: bytes.NewReader([]byte("hi"))}, nil, "ann")
	uc.setPty("xterm", 80, 24)
	if w, h, err := uc.WindowSize(); w != 80 || h != 24 || err != nil {
		t.Fatalf("WindowSize = %d %d %v", w, h, err)
	}
	if uc.Term() != "xterm" {
		t.Fatalf("Term = %q", uc.Term())
	}

	resized := 0
	uc.NotifyResize(func() { resized++ })
	uc.resize(100, 30)
	if w, h, _ := uc.WindowSize(); w != 100 || h != 30 || resized != 1 {
		t.Fatalf("after resize %dx%d, callbacks=%d", w, h, resized)
	}

	buf := make([]byte, 2)
	if n, err := io.ReadFull(uc, buf); n != 2 || err != nil || string(buf) != "hi" {
		t.Fatalf("Read = %q %v", buf[:n], err)
	}
	if err := uc.Drain(); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Read(buf); err == nil {
		t.Fatal("Read after Drain succeeded")
	}
}

func startServer(t *testing.T, password string) (string, context.CancelFunc, <-chan error) {
	t.Helper()
	c := config.Default().SSH
	c.HostKeyFile = filepath.Join(t.TempDir(), "missing_host_key")
	c.Password = password
	srv, err := NewServer(c, testOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, l) }()
	return l.Addr().String(), cancel, errc
}

func dial(addr, password string) (*ssh.Client, error) {
	return ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "tester",
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
}

func TestServerRejectsWrongPassword(t *testing.T) {
	addr, cancel, errc := startServer(t, "secret")
	defer func() {
		cancel()
		<-errc
	}()
	if client, err := dial(addr, "guess"); err == nil {
		client.Close()
		t.Fatal("wrong password accepted")
	}
}

func TestServerRunsShellUntilQuit(t *testing.T) {
	addr, cancel, errc := startServer(t, "secret")

	client, err := dial(addr, "secret")
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		t.Fatal(err)
	}
	sess.Stdout = io.Discard
	stdin, err := sess.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := sess.RequestPty("xterm", 24, 80, ssh.TerminalModes{}); err != nil {
		t.Fatal(err)
	}
	if err := sess.Shell(); err != nil {
		t.Fatal(err)
	}
	if _, err := stdin.Write([]byte("q")); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- sess.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("session ended with %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("session did not end after q")
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Serve = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
