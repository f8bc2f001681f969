package terminal

import (
	"strings"
	"unicode/utf8"
)

// LineEditor holds the editable input line plus the recall history for
// one session.
type LineEditor struct {
	line    []byte
	history []string
	histIdx int // len(history) means the live line is being edited
	backup  string
}

// Append adds one raw byte to the line. Multi-byte runes arrive as
// consecutive KeyChar bytes and concatenate naturally.
func (e *LineEditor) Append(b byte) {
	e.line = append(e.line, b)
}

// Backspace removes the last rune.
func (e *LineEditor) Backspace() {
	if len(e.line) == 0 {
		return
	}
	_, size := utf8.DecodeLastRune(e.line)
	e.line = e.line[:len(e.line)-size]
}

// RemoveLastWord drops the trailing whitespace-delimited word (Ctrl-W).
func (e *LineEditor) RemoveLastWord() {
	s := strings.TrimRight(string(e.line), " ")
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		e.line = []byte(s[:i+1])
	} else {
		e.line = nil
	}
}

// HistoryPrev recalls the previous submitted line.
func (e *LineEditor) HistoryPrev() {
	if len(e.history) == 0 || e.histIdx == 0 {
		return
	}
	if e.histIdx == len(e.history) {
		e.backup = string(e.line)
	}
	e.histIdx--
	e.line = []byte(e.history[e.histIdx])
}

// HistoryNext moves forward, restoring the live line at the end.
func (e *LineEditor) HistoryNext() {
	if e.histIdx >= len(e.history) {
		return
	}
	e.histIdx++
	if e.histIdx == len(e.history) {
		e.line = []byte(e.backup)
	} else {
		e.line = []byte(e.history[e.histIdx])
	}
}

// String returns the current line.
func (e *LineEditor) String() string {
	return string(e.line)
}

// Clear drops the current line without touching history.
func (e *LineEditor) Clear() {
	e.line = nil
	e.histIdx = len(e.history)
	e.backup = ""
}

// Take snapshots the line, pushes it into history (skipping consecutive
// duplicates and empty lines) and clears the editor.
func (e *LineEditor) Take() string {
	line := string(e.line)
	if line != "" {
		if n := len(e.history); n == 0 || e.history[n-1] != line {
			e.history = append(e.history, line)
		}
	}
	e.Clear()
	return line
}
