package terminal

import (
	"strings"
	"sync"

	"github.com/rivo/uniseg"
)

// Newline is the wire line terminator for everything sent to the client.
const Newline = "\n\r"

// scrollbackMax bounds the per-session render buffer. The shared room
// history is a separate, much smaller structure.
const scrollbackMax = 500

// Terminal is the server-side model of one client's screen: the decoded
// input line, the lines already delivered to this session and the
// current window size. It renders full frames into its Handle.
type Terminal struct {
	mu         sync.Mutex
	decoder    Decoder
	input      LineEditor
	handle     *Handle
	width      int
	height     int
	scrollback []string
}

// New creates a terminal over a channel handle with an initial size.
func New(handle *Handle, width, height int) *Terminal {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return &Terminal{handle: handle, width: width, height: height}
}

// Handle exposes the channel sink, used for teardown.
func (t *Terminal) Handle() *Handle {
	return t.handle
}

// Decode turns raw channel bytes into keystrokes.
func (t *Terminal) Decode(data []byte) []Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.decoder.Feed(data)
}

// Edit applies one editing keystroke to the input line. Enter is not an
// editing key; submission is driven by the input pipeline.
func (t *Terminal) Edit(k Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch k.Type {
	case KeyChar:
		t.input.Append(k.Ch)
	case KeyBackspace:
		t.input.Backspace()
	case KeyCtrlW:
		t.input.RemoveLastWord()
	case KeyUp:
		t.input.HistoryPrev()
	case KeyDown:
		t.input.HistoryNext()
	}
}

// InputLine returns the current editable line.
func (t *Terminal) InputLine() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.input.String()
}

// TakeInput snapshots and clears the input line, recording it in the
// session's recall history.
func (t *Terminal) TakeInput() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.input.Take()
}

// AppendLine adds one rendered message to the scrollback.
func (t *Terminal) AppendLine(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scrollback = append(t.scrollback, line)
	if len(t.scrollback) > scrollbackMax {
		t.scrollback = t.scrollback[len(t.scrollback)-scrollbackMax:]
	}
}

// Resize records a new window size from pty-req or window-change.
func (t *Terminal) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	t.mu.Lock()
	t.width, t.height = width, height
	t.mu.Unlock()
}

// Render draws a full frame (MOTD, scrollback tail, input line) into the
// handle sink and flushes it as one SSH data frame.
func (t *Terminal) Render(motd, prompt string) error {
	t.mu.Lock()

	var b strings.Builder
	b.WriteString("\033[2J\033[H")

	used := 0
	if motd != "" {
		b.WriteString("\033[2m")
		b.WriteString(motd)
		b.WriteString("\033[0m")
		if !strings.HasSuffix(motd, Newline) {
			b.WriteString(Newline)
		}
		used = strings.Count(motd, "\n") + 1
	}

	// Leave one row for the input line.
	avail := t.height - used - 1
	if avail < 1 {
		avail = 1
	}
	lines := t.scrollback
	if len(lines) > avail {
		lines = lines[len(lines)-avail:]
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(Newline)
	}

	b.WriteString("\r\033[K")
	b.WriteString(truncateToWidth(prompt+t.input.String(), t.width))

	t.mu.Unlock()

	if _, err := t.handle.Write([]byte(b.String())); err != nil {
		return err
	}
	return t.handle.Flush()
}

// truncateToWidth trims a line to the window width, keeping whole
// grapheme clusters so wide runes are never split.
func truncateToWidth(s string, width int) string {
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	w := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		gw := uniseg.StringWidth(gr.Str())
		if w+gw > width {
			break
		}
		b.WriteString(gr.Str())
		w += gw
	}
	return b.String()
}
