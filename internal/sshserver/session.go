package sshserver

import (
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"github.com/mevdschee/underground-chat-server/internal/chat"
	"github.com/mevdschee/underground-chat-server/internal/terminal"
)

// Session is one connected client: the channel, its terminal model and
// the drain goroutine moving room messages into the scrollback.
type Session struct {
	server    *Server
	sessionID string // correlation id for logs and the session map
	userID    uint64
	conn      *ssh.ServerConn
	channel   ssh.Channel
	terminal  *terminal.Terminal
	member    *chat.Member
}

func newSession(server *Server, userID uint64, conn *ssh.ServerConn, channel ssh.Channel) *Session {
	handle := terminal.NewHandle(channel)
	return &Session{
		server:    server,
		sessionID: uuid.NewString(),
		userID:    userID,
		conn:      conn,
		channel:   channel,
		terminal:  terminal.New(handle, 80, 24),
	}
}

// handleRequests acks the interactive session requests and tracks
// window size changes.
func (s *Session) handleRequests(requests <-chan *ssh.Request) {
	for req := range requests {
		switch req.Type {
		case "pty-req":
			if w, h, ok := parsePtyRequest(req.Payload); ok {
				s.terminal.Resize(int(w), int(h))
			}
			req.Reply(true, nil)
		case "window-change":
			if w, h, ok := parseWindowChange(req.Payload); ok {
				s.terminal.Resize(int(w), int(h))
			}
			req.Reply(true, nil)
		case "shell":
			req.Reply(true, nil)
		default:
			req.Reply(false, nil)
		}
	}
}

// join adds the session to the room and starts the drain goroutine
// moving formatted messages into the scrollback.
func (s *Session) join() error {
	handle := s.terminal.Handle()

	name := s.conn.User()
	fp := ""
	if s.conn.Permissions != nil {
		fp = s.conn.Permissions.Extensions["pubkey-fp"]
	}
	clientVersion := string(s.conn.ClientVersion())

	member, err := s.server.room.Join(s.userID, name, fp, clientVersion, s.terminal, func() {
		handle.Close()
	})
	if err != nil {
		handle.Write([]byte("Could not join the room: " + err.Error() + terminal.Newline))
		handle.Flush()
		handle.Close()
		return err
	}
	s.member = member
	log.Printf("[session %s] %s joined as %s", s.sessionID, s.conn.RemoteAddr(), member.User.Name)

	// Ends when the room closes the queue on leave.
	go func() {
		for line := range member.Out() {
			s.terminal.AppendLine(line)
		}
	}()

	return nil
}

// run pumps channel data through the input pipeline until the channel
// dies or the session goes idle, then tears the member down.
func (s *Session) run() {
	idle := time.AfterFunc(s.server.idleTimeout, func() {
		log.Printf("[session %s] idle timeout", s.sessionID)
		s.terminal.Handle().Close()
		s.channel.Close()
	})
	defer idle.Stop()

	buf := make([]byte, 1024)
	for {
		n, err := s.channel.Read(buf)
		if err != nil {
			break
		}
		idle.Reset(s.server.idleTimeout)
		s.server.room.HandleInput(s.userID, buf[:n])
	}

	// No-op when the user already left via /exit, /kick or /ban.
	s.server.room.Leave(s.userID, "connection closed")
	s.terminal.Handle().Close()
	log.Printf("[session %s] closed", s.sessionID)
}

// render draws one full frame. Write failures mean the channel is gone;
// the session reaper is the read loop, which will see the error too.
func (s *Session) render(motd string) {
	if s.member == nil || s.terminal.Handle().Closed() {
		return
	}
	prompt := "[" + s.server.room.NameOf(s.userID) + "] "
	if err := s.terminal.Render(motd, prompt); err != nil {
		log.Printf("[session %s] render failed: %v", s.sessionID, err)
	}
}
