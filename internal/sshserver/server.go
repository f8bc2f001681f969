package sshserver

import (
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/mevdschee/underground-chat-server/internal/chat"
)

// renderInterval is the full-frame redraw cadence for every session.
const renderInterval = 50 * time.Millisecond

// defaultIdleTimeout ends sessions that stop sending keystrokes.
const defaultIdleTimeout = time.Hour

// defaultAuthRetryDelay is the penalty applied to repeated failed auth
// attempts on one connection; the first failure answers immediately.
const defaultAuthRetryDelay = 3 * time.Second

// Config holds the startup file paths and the listen address.
type Config struct {
	Address       string
	HostKeyPath   string
	MotdPath      string // required
	WhitelistPath string // optional; empty or missing file admits every key
	OperatorPath  string // optional; empty means nobody is operator
}

// Server accepts SSH connections, authenticates against the whitelist
// and hands each session over to the shared room.
type Server struct {
	address   string
	sshConfig *ssh.ServerConfig
	room      *chat.Room

	whitelist map[string]bool // marshaled public key -> admitted
	listener  net.Listener
	nextID    uint64
	done      chan struct{}
	stopOnce  sync.Once

	idleTimeout    time.Duration
	authRetryDelay time.Duration

	mu           sync.Mutex
	sessions     map[string]*Session
	authFailures map[string]int // ssh session id -> failed attempts
}

// NewServer builds a server from config: loads the MOTD (fatal when
// missing), the whitelist and operator files, and the host key.
func NewServer(cfg Config) (*Server, error) {
	motd, err := loadMotd(cfg.MotdPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read motd: %w", err)
	}

	whitelist := make(map[string]bool)
	if cfg.WhitelistPath != "" {
		keys, err := loadAuthorizedKeys(cfg.WhitelistPath)
		if err != nil {
			log.Printf("Whitelist %s not readable (%v), running an open room", cfg.WhitelistPath, err)
		}
		for _, key := range keys {
			whitelist[string(key.Marshal())] = true
		}
	}

	var opFingerprints []string
	if cfg.OperatorPath != "" {
		keys, err := loadAuthorizedKeys(cfg.OperatorPath)
		if err != nil {
			log.Printf("Operator file %s not readable (%v), nobody is operator", cfg.OperatorPath, err)
		}
		opFingerprints = fingerprints(keys)
	}

	hostKey, err := loadOrGenerateHostKey(cfg.HostKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load host key: %w", err)
	}

	s := &Server{
		address:        cfg.Address,
		room:           chat.NewRoom(motd, opFingerprints),
		whitelist:      whitelist,
		sessions:       make(map[string]*Session),
		authFailures:   make(map[string]int),
		done:           make(chan struct{}),
		idleTimeout:    defaultIdleTimeout,
		authRetryDelay: defaultAuthRetryDelay,
	}

	sshConfig := &ssh.ServerConfig{
		ServerVersion:     "SSH-2.0-ucs",
		PublicKeyCallback: s.authPublicKey,
	}
	sshConfig.AddHostKey(hostKey)
	s.sshConfig = sshConfig

	return s, nil
}

// authPublicKey gates admission: banned fingerprints are rejected, and
// with a non-empty whitelist only listed keys get in.
func (s *Server) authPublicKey(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
	fp := ssh.FingerprintSHA256(key)

	if s.room.IsBanned(conn.User(), fp) {
		s.rejectDelay(conn)
		return nil, fmt.Errorf("banned")
	}
	if len(s.whitelist) > 0 && !s.whitelist[string(key.Marshal())] {
		s.rejectDelay(conn)
		return nil, fmt.Errorf("key is not whitelisted")
	}

	s.mu.Lock()
	delete(s.authFailures, string(conn.SessionID()))
	s.mu.Unlock()

	return &ssh.Permissions{
		Extensions: map[string]string{
			"pubkey-fp": fp,
		},
	}, nil
}

// rejectDelay sleeps before answering repeated failed auth attempts on
// one connection. Entries from abandoned handshakes are cleared
// wholesale once the map grows.
func (s *Server) rejectDelay(conn ssh.ConnMetadata) {
	id := string(conn.SessionID())

	s.mu.Lock()
	if len(s.authFailures) > 1024 {
		s.authFailures = make(map[string]int)
	}
	attempts := s.authFailures[id]
	s.authFailures[id]++
	s.mu.Unlock()

	if attempts > 0 {
		time.Sleep(s.authRetryDelay)
	}
}

// Room exposes the shared room, mainly for tests.
func (s *Server) Room() *chat.Room {
	return s.room
}

// Start begins listening and launches the render loop.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	s.listener = listener
	log.Printf("Chat server listening on %s", listener.Addr())

	go s.acceptLoop()
	go s.renderLoop()
	return nil
}

// Port returns the bound port, useful when port 0 was requested.
func (s *Server) Port() int {
	if s.listener == nil {
		return 0
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Stop closes the listener and every live session. Safe to call more
// than once; later calls are no-ops.
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		sessions := make([]*Session, 0, len(s.sessions))
		for _, sess := range s.sessions {
			sessions = append(sessions, sess)
		}
		s.mu.Unlock()
		for _, sess := range sessions {
			sess.terminal.Handle().Close()
		}

		if s.listener != nil {
			err = s.listener.Close()
		}
	})
	return err
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !strings.Contains(err.Error(), "use of closed network connection") {
				log.Printf("Failed to accept connection: %v", err)
			}
			return
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	sshConn, chans, reqs, err := ssh.NewServerConn(conn, s.sshConfig)
	if err != nil {
		if err != io.EOF {
			log.Printf("Failed SSH handshake: %v", err)
		}
		return
	}
	defer sshConn.Close()

	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType,
				fmt.Sprintf("unknown channel type: %s", newChannel.ChannelType()))
			continue
		}
		go s.handleSessionChannel(newChannel, sshConn)
	}
}

func (s *Server) handleSessionChannel(newChannel ssh.NewChannel, conn *ssh.ServerConn) {
	channel, requests, err := newChannel.Accept()
	if err != nil {
		log.Printf("Could not accept session: %v", err)
		return
	}

	id := atomic.AddUint64(&s.nextID, 1)
	sess := newSession(s, id, conn, channel)

	go sess.handleRequests(requests)

	if err := sess.join(); err != nil {
		log.Printf("[session %s] join failed: %v", sess.sessionID, err)
		return
	}

	s.mu.Lock()
	s.sessions[sess.sessionID] = sess
	s.mu.Unlock()

	sess.run()

	s.mu.Lock()
	delete(s.sessions, sess.sessionID)
	s.mu.Unlock()
}

// renderLoop redraws every connected session at a fixed cadence. Each
// redraw accumulates in the session's sink and is flushed as one SSH
// data frame.
func (s *Server) renderLoop() {
	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		motd := s.room.Motd()

		s.mu.Lock()
		sessions := make([]*Session, 0, len(s.sessions))
		for _, sess := range s.sessions {
			sessions = append(sessions, sess)
		}
		s.mu.Unlock()

		for _, sess := range sessions {
			sess.render(motd)
		}
	}
}

// loadMotd reads the MOTD file and normalizes every line ending to the
// "\n\r" the terminal expects.
func loadMotd(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	motd := strings.ReplaceAll(string(raw), "\r\n", "\n")
	motd = strings.ReplaceAll(motd, "\n", "\n\r")
	return motd, nil
}
