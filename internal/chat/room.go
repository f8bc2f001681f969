package chat

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mevdschee/underground-chat-server/internal/terminal"
)

// ServerVersion is reported by /version.
const ServerVersion = "underground-chat-server 1.0.0"

// Room is the authoritative shared chat state. One exclusive lock
// protects all of it; every public method takes the lock, and critical
// sections stay short because enqueueing to members never blocks.
type Room struct {
	mu      sync.Mutex
	members map[string]*Member // name -> member, the user-visible index
	names   map[uint64]string  // stable id -> current name
	history History
	motd    string
	ops     map[string]bool // operator key fingerprints
	bans    BanList
	started time.Time
}

// NewRoom creates a room with a MOTD and the operator fingerprints read
// at startup.
func NewRoom(motd string, opFingerprints []string) *Room {
	ops := make(map[string]bool, len(opFingerprints))
	for _, fp := range opFingerprints {
		ops[fp] = true
	}
	return &Room{
		members: make(map[string]*Member),
		names:   make(map[uint64]string),
		motd:    motd,
		ops:     ops,
		started: time.Now(),
	}
}

// Motd returns the current message of the day.
func (r *Room) Motd() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.motd
}

// IsOp reports whether a key fingerprint is in the operator set.
func (r *Room) IsOp(fingerprint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fingerprint != "" && r.ops[fingerprint]
}

// IsBanned checks a joining user against the active ban conditions.
func (r *Room) IsBanned(name, fingerprint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bans.Matches(name, fingerprint)
}

// Len reports the number of connected members.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Join inserts a new member, replays the room history to it and
// announces the join. When the requested name is taken a generated name
// is tried once; a second collision fails the join.
func (r *Room) Join(id uint64, requestedName, fingerprint, sshClient string, term *terminal.Terminal, closer func()) (*Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := requestedName
	if _, taken := r.members[name]; taken || name == "" {
		name = GenRandName()
		if _, taken := r.members[name]; taken {
			return nil, fmt.Errorf("generated name %q is taken as well", name)
		}
	}

	user := NewUser(id, name, sshClient, fingerprint, fingerprint != "" && r.ops[fingerprint])
	member := newMember(user, term, closer)

	r.members[name] = member
	r.names[id] = name

	// History replay strictly precedes the join announce, for the
	// joiner as much as for everybody else.
	for _, msg := range r.history.All() {
		if !member.enqueue(msg) {
			break
		}
	}

	log.Printf("join id=%d name=%s", id, name)
	r.sendLocked(NewAnnounce(user, fmt.Sprintf("joined. (Connected: %d)", len(r.members))))

	return member, nil
}

// Leave removes a member and announces it with the connected duration.
// Safe to call twice; the second call is a no-op.
func (r *Room) Leave(id uint64, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(id, reason)
}

func (r *Room) leaveLocked(id uint64, reason string) {
	name, ok := r.names[id]
	if !ok {
		return
	}
	member := r.members[name]

	body := fmt.Sprintf("left: (After %s)", FormatDuration(member.User.JoinedDuration()))
	if reason != "" {
		log.Printf("leave id=%d name=%s reason=%s", id, name, reason)
	} else {
		log.Printf("leave id=%d name=%s", id, name)
	}
	r.sendLocked(NewAnnounce(member.User, body))

	r.removeLocked(member)
}

// removeLocked drops the member from the indexes and ends its drain
// loop. Stale ids in other users' reply/ignore/focus sets are left in
// place and filtered at dispatch time.
func (r *Room) removeLocked(m *Member) {
	delete(r.members, m.User.Name)
	delete(r.names, m.User.ID)
	m.closeQueue()
}

// SendMessage applies the fan-out matrix and enqueues the message onto
// the eligible members' outbound queues.
func (r *Room) SendMessage(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendLocked(msg)
}

func (r *Room) sendLocked(msg Message) {
	switch m := msg.(type) {
	case *System:
		r.deliverTo(m.To.id, msg)
	case *CommandEcho:
		r.deliverTo(m.From.id, msg)
	case *ErrorMsg:
		r.deliverTo(m.To.id, msg)
	case *Public:
		r.history.Push(msg)
		r.broadcastLocked(m.From.id, msg)
	case *Emote:
		r.history.Push(msg)
		r.broadcastLocked(m.From.id, msg)
	case *Announce:
		r.history.Push(msg)
		for _, member := range r.members {
			if member.User.Quiet {
				continue
			}
			member.enqueue(msg)
		}
	case *Private:
		r.deliverTo(m.From.id, msg)
		if m.To.id == m.From.id {
			return
		}
		if to := r.memberByID(m.To.id); to != nil && !to.User.Ignored[m.From.id] {
			to.enqueue(msg)
		}
	}
}

// broadcastLocked fans a Public or Emote out to every member, honoring
// each recipient's ignore and focus sets. A member always receives its
// own messages.
func (r *Room) broadcastLocked(fromID uint64, msg Message) {
	for _, member := range r.members {
		u := member.User
		if u.ID != fromID {
			if u.Ignored[fromID] {
				continue
			}
			if len(u.Focused) > 0 && !u.Focused[fromID] {
				continue
			}
		}
		member.enqueue(msg)
	}
}

func (r *Room) deliverTo(id uint64, msg Message) {
	if member := r.memberByID(id); member != nil {
		member.enqueue(msg)
	}
}

func (r *Room) memberByID(id uint64) *Member {
	name, ok := r.names[id]
	if !ok {
		return nil
	}
	return r.members[name]
}

// HandleInput feeds a batch of raw channel bytes through the input
// pipeline for one member.
func (r *Room) HandleInput(id uint64, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	member := r.memberByID(id)
	if member == nil {
		return
	}

	for _, key := range member.Terminal.Decode(data) {
		switch key.Type {
		case terminal.KeyEnter:
			r.submitLocked(member)
		case terminal.KeyCtrlC:
			// Ignored; clients disconnect by closing the channel or /exit.
		default:
			member.Terminal.Edit(key)
		}
	}
}

// NameOf returns the current display name for an id, empty when the
// user is no longer connected. Used by the render loop for the prompt.
func (r *Room) NameOf(id uint64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names[id]
}

// Uptime reports how long the room has been running.
func (r *Room) Uptime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Since(r.started)
}
