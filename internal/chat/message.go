package chat

import (
	"fmt"
	"time"
)

// Newline is the only line terminator ever written to the SSH channel.
const Newline = "\n\r"

// sender is a point-in-time copy of the authoring user's identity.
// Messages keep it instead of a live *User so a later rename never
// rewrites history or queued lines.
type sender struct {
	id   uint64
	name string
}

func snapshotUser(u *User) sender {
	return sender{id: u.ID, name: u.Name}
}

// Message is one line of room traffic. Format renders it for a viewer,
// applying that viewer's theme; the timestamp prefix is added separately
// so it can respect the viewer's timestamp mode.
type Message interface {
	Format(viewer *User) string
	When() time.Time
}

type baseMessage struct {
	at time.Time
}

func newBase() baseMessage {
	return baseMessage{at: time.Now().UTC()}
}

func (b baseMessage) When() time.Time {
	return b.at
}

// Public is a regular chat line visible to the whole room.
type Public struct {
	baseMessage
	From sender
	Body string
}

func NewPublic(from *User, body string) *Public {
	return &Public{baseMessage: newBase(), From: snapshotUser(from), Body: body}
}

func (m *Public) Format(viewer *User) string {
	return fmt.Sprintf("%s: %s", viewer.Theme.StyleUsername(m.From.name), m.Body)
}

// Emote is a third-person action line.
type Emote struct {
	baseMessage
	From sender
	Body string
}

func NewEmote(from *User, body string) *Emote {
	return &Emote{baseMessage: newBase(), From: snapshotUser(from), Body: body}
}

func (m *Emote) Format(viewer *User) string {
	return fmt.Sprintf("* %s %s", viewer.Theme.StyleUsername(m.From.name), m.Body)
}

// Announce is a server-generated membership notice.
type Announce struct {
	baseMessage
	From sender
	Body string
}

func NewAnnounce(from *User, body string) *Announce {
	return &Announce{baseMessage: newBase(), From: snapshotUser(from), Body: body}
}

func (m *Announce) Format(viewer *User) string {
	return viewer.Theme.styleDim(fmt.Sprintf(" * %s %s", m.From.name, m.Body))
}

// System is a server reply visible only to its addressee.
type System struct {
	baseMessage
	To   sender
	Body string
}

func NewSystem(to *User, body string) *System {
	return &System{baseMessage: newBase(), To: snapshotUser(to), Body: body}
}

func (m *System) Format(viewer *User) string {
	return viewer.Theme.styleDim("-> " + m.Body)
}

// CommandEcho repeats what the user typed back at them.
type CommandEcho struct {
	baseMessage
	From sender
	Raw  string
}

func NewCommandEcho(from *User, raw string) *CommandEcho {
	return &CommandEcho{baseMessage: newBase(), From: snapshotUser(from), Raw: raw}
}

func (m *CommandEcho) Format(viewer *User) string {
	return fmt.Sprintf("[%s] %s", viewer.Theme.StyleUsername(m.From.name), m.Raw)
}

// ErrorMsg surfaces a parse or dispatch failure to its addressee.
type ErrorMsg struct {
	baseMessage
	To   sender
	Body string
}

func NewError(to *User, body string) *ErrorMsg {
	return &ErrorMsg{baseMessage: newBase(), To: snapshotUser(to), Body: body}
}

func (m *ErrorMsg) Format(viewer *User) string {
	return viewer.Theme.styleWarn("Error: " + m.Body)
}

// Private is a direct message, delivered to sender and recipient.
type Private struct {
	baseMessage
	From sender
	To   sender
	Body string
}

func NewPrivate(from, to *User, body string) *Private {
	return &Private{baseMessage: newBase(), From: snapshotUser(from), To: snapshotUser(to), Body: body}
}

func (m *Private) Format(viewer *User) string {
	if viewer.ID == m.From.id {
		return fmt.Sprintf("[PM to %s] %s", viewer.Theme.StyleUsername(m.To.name), m.Body)
	}
	return fmt.Sprintf("[PM from %s] %s", viewer.Theme.StyleUsername(m.From.name), m.Body)
}

// FormatFor renders a message for one viewer, prefixing the timestamp
// when that viewer asked for one.
func FormatFor(msg Message, viewer *User) string {
	line := msg.Format(viewer)
	if layout := viewer.Timestamp.layout(); layout != "" {
		line = viewer.Theme.styleDim(msg.When().Format(layout)) + " " + line
	}
	return line
}
