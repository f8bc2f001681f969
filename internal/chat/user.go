package chat

import (
	"fmt"
	"math/rand"
	"time"
)

// TimestampMode controls the prefix put in front of every rendered
// message for one user.
type TimestampMode int

const (
	TimestampOff TimestampMode = iota
	TimestampTime
	TimestampDateTime
)

// ParseTimestampMode validates the /timestamp argument.
func ParseTimestampMode(s string) (TimestampMode, bool) {
	switch s {
	case "off":
		return TimestampOff, true
	case "time":
		return TimestampTime, true
	case "datetime":
		return TimestampDateTime, true
	}
	return TimestampOff, false
}

func (m TimestampMode) String() string {
	switch m {
	case TimestampTime:
		return "time"
	case TimestampDateTime:
		return "datetime"
	default:
		return "off"
	}
}

// layout returns the time layout for the mode, empty for off.
func (m TimestampMode) layout() string {
	switch m {
	case TimestampTime:
		return "15:04"
	case TimestampDateTime:
		return "2006-01-02 15:04:05"
	default:
		return ""
	}
}

// Status is either active or away with a reason.
type Status struct {
	Away   bool
	Reason string
	Since  time.Time
}

// User is the per-connection chat identity and its mutable state. All
// mutations happen under the room lock.
type User struct {
	ID          uint64
	Name        string
	JoinedAt    time.Time
	SSHClient   string
	Fingerprint string // SHA256 fingerprint, empty when no public key
	ReplyTo     uint64 // 0 means unset
	Theme       *Theme
	Timestamp   TimestampMode
	Quiet       bool
	Muted       bool
	IsOp        bool
	Status      Status
	Ignored     map[uint64]bool
	Focused     map[uint64]bool
}

// NewUser creates an active user with default settings.
func NewUser(id uint64, name, sshClient, fingerprint string, isOp bool) *User {
	return &User{
		ID:          id,
		Name:        name,
		JoinedAt:    time.Now().UTC(),
		SSHClient:   sshClient,
		Fingerprint: fingerprint,
		IsOp:        isOp,
		Theme:       DefaultTheme(),
		Ignored:     make(map[uint64]bool),
		Focused:     make(map[uint64]bool),
	}
}

func (u *User) GoAway(reason string) {
	u.Status = Status{Away: true, Reason: reason, Since: time.Now().UTC()}
}

func (u *User) ReturnActive() {
	u.Status = Status{}
}

func (u *User) SwitchQuiet() {
	u.Quiet = !u.Quiet
}

func (u *User) SwitchMuted() {
	u.Muted = !u.Muted
}

func (u *User) SetReplyTo(id uint64) {
	u.ReplyTo = id
}

func (u *User) Rename(name string) {
	u.Name = name
}

func (u *User) JoinedDuration() time.Duration {
	return time.Since(u.JoinedAt)
}

// Whois renders the multi-line /whois block for this user.
func (u *User) Whois() string {
	fingerprint := "(no public key)"
	if u.Fingerprint != "" {
		fingerprint = u.Fingerprint
	}

	s := fmt.Sprintf("name: %s%s > fingerprint: %s%s > client: %s%s > joined: %s ago",
		u.Name, Newline,
		fingerprint, Newline,
		u.SSHClient, Newline,
		FormatDuration(u.JoinedDuration()))

	if u.Status.Away {
		s += fmt.Sprintf("%s > away (%s ago) %s",
			Newline, FormatDuration(time.Since(u.Status.Since)), u.Status.Reason)
	}
	return s
}

var randNameAdjectives = []string{
	"Cool", "Mighty", "Brave", "Clever", "Happy", "Calm", "Eager", "Gentle",
	"Kind", "Jolly", "Swift", "Bold", "Fierce", "Wise", "Valiant", "Bright",
	"Noble", "Zany", "Epic",
}

var randNameNouns = []string{
	"Tiger", "Eagle", "Panda", "Shark", "Lion", "Wolf", "Dragon", "Phoenix",
	"Hawk", "Bear", "Falcon", "Panther", "Griffin", "Lynx", "Orca", "Cobra",
	"Jaguar", "Kraken", "Pegasus", "Stallion",
}

// GenRandName builds a fallback username for name collisions at join,
// e.g. "SwiftKraken42".
func GenRandName() string {
	adjective := randNameAdjectives[rand.Intn(len(randNameAdjectives))]
	noun := randNameNouns[rand.Intn(len(randNameNouns))]
	return fmt.Sprintf("%s%s%d", adjective, noun, 1+rand.Intn(9999))
}
