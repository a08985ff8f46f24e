package term

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/terminfo"
	"golang.org/x/crypto/ssh"

	"worms/internal/config"
)

const handshakeTimeout = 30 * time.Second

// UserConnection is an SSH session channel acting as the tty of a tcell
// screen.
type UserConnection struct {
	ssh.Channel
	Connection *ssh.ServerConn
	User       string

	mu             sync.Mutex
	term           string
	width, height  int
	resizeCallback func()

	in *io.PipeReader
}

func NewUserConnection(ch ssh.Channel, conn *ssh.ServerConn, user string) *UserConnection {
	pr, pw := io.Pipe()
	go func() {
		_, err := io.Copy(pw, ch)
		pw.CloseWithError(err)
	}()
	return &UserConnection{
		Channel:    ch,
		Connection: conn,
		User:       user,
		in:         pr,
	}
}

// Read goes through a pipe so Drain can interrupt a blocked read.
func (uc *UserConnection) Read(p []byte) (int, error) { return uc.in.Read(p) }

func (uc *UserConnection) Start() error { return nil }
func (uc *UserConnection) Stop() error  { return nil }

func (uc *UserConnection) Drain() error {
	return uc.in.CloseWithError(io.EOF)
}

func (uc *UserConnection) NotifyResize(cb func()) {
	uc.mu.Lock()
	uc.resizeCallback = cb
	uc.mu.Unlock()
}

func (uc *UserConnection) WindowSize() (int, int, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.width, uc.height, nil
}

func (uc *UserConnection) Term() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.term
}

func (uc *UserConnection) setPty(term string, w, h int) {
	uc.mu.Lock()
	uc.term, uc.width, uc.height = term, w, h
	uc.mu.Unlock()
}

func (uc *UserConnection) resize(w, h int) {
	uc.mu.Lock()
	uc.width, uc.height = w, h
	cb := uc.resizeCallback
	uc.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Server hands every SSH shell session its own worm set.
type Server struct {
	config   *ssh.ServerConfig
	opts     Options
	log      *log.Logger
	sessions atomic.Uint64
	wg       sync.WaitGroup
}

// NewServer loads the host key and authorized keys named in c. A missing
// host key file is replaced by an ephemeral key. An empty password accepts
// any password.
func NewServer(c config.SSHConfig, opts Options, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	signer, err := loadHostKey(c.HostKeyFile, logger)
	if err != nil {
		return nil, err
	}

	authorizedKeys := map[string]bool{}
	if c.AuthorizedKeysFile != "" {
		b, err := os.ReadFile(c.AuthorizedKeysFile)
		if err != nil {
			return nil, fmt.Errorf("read authorized keys: %w", err)
		}
		if authorizedKeys, err = parseAuthorizedKeys(b); err != nil {
			return nil, fmt.Errorf("parse authorized keys from %s: %w", c.AuthorizedKeysFile, err)
		}
	}

	password := c.Password
	serverConfig := &ssh.ServerConfig{
		PasswordCallback: func(conn ssh.ConnMetadata, pw []byte) (*ssh.Permissions, error) {
			if len(password) != 0 && password != string(pw) {
				return nil, errors.New("wrong password")
			}
			return nil, nil
		},
		PublicKeyCallback: func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if !authorizedKeys[string(key.Marshal())] {
				return nil, errors.New("unknown key")
			}
			return nil, nil
		},
	}
	serverConfig.AddHostKey(signer)

	return &Server{
		config: serverConfig,
		opts:   opts,
		log:    logger,
	}, nil
}

func loadHostKey(path string, logger *log.Logger) (ssh.Signer, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Printf("host key %s not found, using an ephemeral key", path)
		_, key, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate host key: %w", err)
		}
		return ssh.NewSignerFromKey(key)
	}
	if err != nil {
		return nil, fmt.Errorf("read host key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", path, err)
	}
	return signer, nil
}

func parseAuthorizedKeys(b []byte) (map[string]bool, error) {
	keys := map[string]bool{}
	for len(b) > 0 {
		pub, _, _, rest, err := ssh.ParseAuthorizedKey(b)
		if err != nil {
			return nil, err
		}
		keys[string(pub.Marshal())] = true
		b = rest
	}
	return keys, nil
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.log.Printf("[server] listening on %s", l.Addr())
	return s.Serve(ctx, l)
}

// Serve accepts connections until ctx is done, then waits for open
// sessions to finish.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	defer s.wg.Wait()

	for {
		raw, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Print(err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, raw)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, raw net.Conn) {
	raw.SetDeadline(time.Now().Add(handshakeTimeout))
	conn, chans, reqs, err := ssh.NewServerConn(raw, s.config)
	if err != nil {
		s.log.Printf("ssh connection handshake failed: %s", err)
		raw.Close()
		return
	}
	raw.SetDeadline(time.Time{})
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	s.log.Printf("[server][user=%q] connection established, addr=%s, session-id=0x%s...",
		conn.User(), conn.RemoteAddr(), hex.EncodeToString(conn.SessionID()[:12]))
	go ssh.DiscardRequests(reqs)

	var sessions sync.WaitGroup
	defer sessions.Wait()
	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			newCh.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		ch, chReqs, err := newCh.Accept()
		if err != nil {
			s.log.Print(err)
			return
		}
		user := NewUserConnection(ch, conn, conn.User())
		sessions.Add(1)
		go func() {
			defer sessions.Done()
			s.handleRequests(ctx, user, chReqs)
		}()
	}
}

func (s *Server) handleRequests(ctx context.Context, user *UserConnection, reqs <-chan *ssh.Request) {
	logger := log.New(s.log.Writer(), fmt.Sprintf("[ssh:user=%q] ", user.User), s.log.Flags())
	started := false
	var shell sync.WaitGroup
	defer shell.Wait()

	for req := range reqs {
		switch req.Type {
		case "pty-req":
			term, w, h, ok := parsePtyRequest(req.Payload)
			if !ok {
				logger.Print("invalid pty-req payload")
				req.Reply(false, nil)
				continue
			}
			user.setPty(term, w, h)
			req.Reply(true, nil)
			logger.Printf("terminal: %s, size: %dx%d", term, w, h)
		case "window-change":
			w, h, ok := parseWindowChange(req.Payload)
			if !ok {
				logger.Print("invalid window-change payload")
				req.Reply(false, nil)
				continue
			}
			user.resize(w, h)
			req.Reply(true, nil)
		case "shell":
			if started {
				req.Reply(false, nil)
				continue
			}
			screen, err := newSessionScreen(user)
			if err != nil {
				logger.Printf("error: %s", err)
				req.Reply(false, nil)
				continue
			}
			started = true
			req.Reply(true, nil)
			shell.Add(1)
			go func() {
				defer shell.Done()
				s.runShell(ctx, user, screen, logger)
			}()
		default:
			if req.WantReply {
				req.Reply(false, nil)
			}
		}
	}
}

func newSessionScreen(user *UserConnection) (tcell.Screen, error) {
	ti, err := terminfo.LookupTerminfo(user.Term())
	if err != nil {
		return nil, err
	}
	screen, err := tcell.NewTerminfoScreenFromTtyTerminfo(user, ti)
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("screen.Init: %w", err)
	}
	return screen, nil
}

func (s *Server) runShell(ctx context.Context, user *UserConnection, screen tcell.Screen, logger *log.Logger) {
	n := s.sessions.Add(1)
	opts := s.opts
	opts.Seed += n
	opts.Log = logger

	logger.Print("session started")
	err := Run(ctx, screen, opts)
	if err != nil {
		logger.Printf("session error: %s", err)
	}

	status := uint32(0)
	if err != nil {
		status = 1
	}
	user.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
	screen.Fini()
	user.Close()
	user.Connection.Close()
	logger.Print("session closed")
}

func parseString(in []byte) (string, []byte, bool) {
	length, tail, ok := parseUint32(in)
	if !ok || uint32(len(tail)) < length {
		return "", nil, false
	}
	return string(tail[:length]), tail[length:], true
}

func parseUint32(in []byte) (uint32, []byte, bool) {
	if len(in) < 4 {
		return 0, nil, false
	}
	return binary.BigEndian.Uint32(in), in[4:], true
}

// parsePtyRequest reads the terminal name and character size of a
// pty-req payload (RFC 4254 section 6.2).
func parsePtyRequest(b []byte) (string, int, int, bool) {
	term, b, ok1 := parseString(b)
	w, b, ok2 := parseUint32(b)
	h, _, ok3 := parseUint32(b)
	if !ok1 || !ok2 || !ok3 {
		return "", 0, 0, false
	}
	return term, int(w), int(h), true
}

// parseWindowChange reads the character size of a window-change payload.
func parseWindowChange(b []byte) (int, int, bool) {
	w, b, ok1 := parseUint32(b)
	h, _, ok2 := parseUint32(b)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return int(w), int(h), true
}
