package chat

import (
	"sync"

	"github.com/mevdschee/underground-chat-server/internal/terminal"
)

// outboundQueueLen bounds each member's outbound queue. A full queue
// means the session is not draining; enqueue fails fast and the room
// skips that recipient rather than block under the room lock.
const outboundQueueLen = 64

// Member is a connected user plus its session resources: the terminal
// model and the outbound message queue drained by the session's render
// task.
type Member struct {
	User     *User
	Terminal *terminal.Terminal

	out       chan string
	closeOnce sync.Once
	closer    func()
}

func newMember(user *User, term *terminal.Terminal, closer func()) *Member {
	return &Member{
		User:     user,
		Terminal: term,
		out:      make(chan string, outboundQueueLen),
		closer:   closer,
	}
}

// Out is the queue the session's render task drains. It is closed when
// the member leaves the room.
func (m *Member) Out() <-chan string {
	return m.out
}

// enqueue formats the message for this member and queues it. A false
// return means the queue is full or closed; the caller skips this
// recipient. Only called under the room lock, which also serializes
// against closeQueue, so sending cannot race the close.
func (m *Member) enqueue(msg Message) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case m.out <- FormatFor(msg, m.User):
		return true
	default:
		return false
	}
}

// closeQueue ends the render task's drain loop. Called under the room
// lock after the member is removed from the member map.
func (m *Member) closeQueue() {
	m.closeOnce.Do(func() {
		close(m.out)
	})
}

// disconnect closes the SSH channel, off the room lock.
func (m *Member) disconnect() {
	if m.closer != nil {
		go m.closer()
	}
}
