package terminal

import (
	"bytes"
	"strings"
	"testing"
)

type chanBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *chanBuffer) Close() error {
	b.closed = true
	return nil
}

func keysOf(t *testing.T, d *Decoder, data string) []Key {
	t.Helper()
	return d.Feed([]byte(data))
}

func TestDecoder(t *testing.T) {
	t.Run("PrintableBytes", func(t *testing.T) {
		var d Decoder
		keys := keysOf(t, &d, "hi!")
		if len(keys) != 3 {
			t.Fatalf("got %d keys, want 3", len(keys))
		}
		for i, ch := range []byte("hi!") {
			if keys[i].Type != KeyChar || keys[i].Ch != ch {
				t.Errorf("keys[%d] = %+v", i, keys[i])
			}
		}
	})

	t.Run("ControlBytes", func(t *testing.T) {
		var d Decoder
		keys := keysOf(t, &d, "\r\n\x08\x7f\x17\x03")
		want := []KeyType{KeyEnter, KeyEnter, KeyBackspace, KeyBackspace, KeyCtrlW, KeyCtrlC}
		if len(keys) != len(want) {
			t.Fatalf("got %d keys, want %d", len(keys), len(want))
		}
		for i, w := range want {
			if keys[i].Type != w {
				t.Errorf("keys[%d].Type = %v, want %v", i, keys[i].Type, w)
			}
		}
	})

	t.Run("ArrowSequences", func(t *testing.T) {
		var d Decoder
		keys := keysOf(t, &d, "\x1b[A\x1b[B")
		if len(keys) != 2 || keys[0].Type != KeyUp || keys[1].Type != KeyDown {
			t.Errorf("keys = %+v", keys)
		}
	})

	t.Run("SequenceSplitAcrossReads", func(t *testing.T) {
		var d Decoder
		if keys := keysOf(t, &d, "\x1b"); len(keys) != 0 {
			t.Fatalf("partial escape produced %+v", keys)
		}
		if keys := keysOf(t, &d, "["); len(keys) != 0 {
			t.Fatalf("partial CSI produced %+v", keys)
		}
		keys := keysOf(t, &d, "A")
		if len(keys) != 1 || keys[0].Type != KeyUp {
			t.Errorf("keys = %+v", keys)
		}
	})

	t.Run("UnknownSequenceSwallowed", func(t *testing.T) {
		var d Decoder
		// Home key and a parameterized sequence produce nothing, and the
		// decoder recovers for the following input.
		keys := keysOf(t, &d, "\x1b[H\x1b[1;5Cx")
		if len(keys) != 1 || keys[0].Type != KeyChar || keys[0].Ch != 'x' {
			t.Errorf("keys = %+v", keys)
		}
	})

	t.Run("Utf8BytesPassThrough", func(t *testing.T) {
		var d Decoder
		keys := keysOf(t, &d, "é")
		if len(keys) != 2 {
			t.Fatalf("got %d keys, want 2", len(keys))
		}
		got := []byte{keys[0].Ch, keys[1].Ch}
		if string(got) != "é" {
			t.Errorf("reassembled %q", got)
		}
	})
}

func TestLineEditor(t *testing.T) {
	typeString := func(e *LineEditor, s string) {
		for _, b := range []byte(s) {
			e.Append(b)
		}
	}

	t.Run("AppendAndBackspace", func(t *testing.T) {
		var e LineEditor
		typeString(&e, "héllo")
		e.Backspace()
		e.Backspace()
		e.Backspace()
		if e.String() != "hé" {
			t.Errorf("line = %q, want %q", e.String(), "hé")
		}
		e.Backspace() // multi-byte rune removed whole
		if e.String() != "h" {
			t.Errorf("line = %q, want %q", e.String(), "h")
		}
		e.Backspace()
		e.Backspace() // backspace on an empty line is a no-op
		if e.String() != "" {
			t.Errorf("line = %q, want empty", e.String())
		}
	})

	t.Run("RemoveLastWord", func(t *testing.T) {
		var e LineEditor
		typeString(&e, "one two three  ")
		e.RemoveLastWord()
		if e.String() != "one two " {
			t.Errorf("line = %q, want %q", e.String(), "one two ")
		}
		e.RemoveLastWord()
		if e.String() != "one " {
			t.Errorf("line = %q, want %q", e.String(), "one ")
		}
		e.RemoveLastWord()
		if e.String() != "" {
			t.Errorf("line = %q, want empty", e.String())
		}
	})

	t.Run("TakeRecordsHistory", func(t *testing.T) {
		var e LineEditor
		typeString(&e, "first")
		if got := e.Take(); got != "first" {
			t.Fatalf("Take() = %q", got)
		}
		if e.String() != "" {
			t.Error("Take should clear the line")
		}

		typeString(&e, "second")
		e.Take()

		e.HistoryPrev()
		if e.String() != "second" {
			t.Errorf("after one HistoryPrev line = %q", e.String())
		}
		e.HistoryPrev()
		if e.String() != "first" {
			t.Errorf("after two HistoryPrev line = %q", e.String())
		}
		e.HistoryPrev() // already at the oldest entry
		if e.String() != "first" {
			t.Errorf("HistoryPrev past the start changed the line to %q", e.String())
		}
		e.HistoryNext()
		if e.String() != "second" {
			t.Errorf("after HistoryNext line = %q", e.String())
		}
	})

	t.Run("HistoryKeepsLiveLine", func(t *testing.T) {
		var e LineEditor
		typeString(&e, "submitted")
		e.Take()
		typeString(&e, "draft")
		e.HistoryPrev()
		if e.String() != "submitted" {
			t.Fatalf("line = %q", e.String())
		}
		e.HistoryNext()
		if e.String() != "draft" {
			t.Errorf("live line not restored, got %q", e.String())
		}
	})

	t.Run("EmptyAndDuplicateNotRecorded", func(t *testing.T) {
		var e LineEditor
		e.Take()
		typeString(&e, "same")
		e.Take()
		typeString(&e, "same")
		e.Take()
		if len(e.history) != 1 {
			t.Errorf("history = %q, want one entry", e.history)
		}
	})
}

func TestHandle(t *testing.T) {
	t.Run("WriteBuffersFlushSends", func(t *testing.T) {
		var buf chanBuffer
		h := NewHandle(&buf)

		h.Write([]byte("part one "))
		h.Write([]byte("part two"))
		if buf.Len() != 0 {
			t.Fatal("Write must not reach the channel before Flush")
		}
		if err := h.Flush(); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "part one part two" {
			t.Errorf("flushed %q", buf.String())
		}
	})

	t.Run("FlushAfterCloseDrops", func(t *testing.T) {
		var buf chanBuffer
		h := NewHandle(&buf)
		h.Write([]byte("late"))
		h.Close()
		if !h.Closed() || !buf.closed {
			t.Fatal("Close should mark the handle and close the channel")
		}
		if err := h.Flush(); err != nil {
			t.Fatal(err)
		}
		if buf.Len() != 0 {
			t.Errorf("closed handle flushed %q", buf.String())
		}
		if err := h.Close(); err != nil {
			t.Errorf("second Close: %v", err)
		}
	})
}

func TestTerminalRender(t *testing.T) {
	newTerm := func(w, h int) (*Terminal, *chanBuffer) {
		buf := &chanBuffer{}
		return New(NewHandle(buf), w, h), buf
	}

	t.Run("FullFrame", func(t *testing.T) {
		term, buf := newTerm(80, 24)
		term.AppendLine("alice: hi")
		term.Edit(Key{Type: KeyChar, Ch: 'h'})
		term.Edit(Key{Type: KeyChar, Ch: 'e'})

		if err := term.Render("welcome", "[bob] "); err != nil {
			t.Fatal(err)
		}
		frame := buf.String()

		if !strings.HasPrefix(frame, "\033[2J\033[H") {
			t.Error("frame should start with clear and home")
		}
		for _, want := range []string{"welcome", "alice: hi" + Newline, "[bob] he"} {
			if !strings.Contains(frame, want) {
				t.Errorf("frame missing %q:\n%q", want, frame)
			}
		}
		if strings.Contains(strings.ReplaceAll(frame, Newline, ""), "\n") {
			t.Error("all newlines must be written as \\n\\r")
		}
	})

	t.Run("ScrollbackTailFitsHeight", func(t *testing.T) {
		term, buf := newTerm(80, 5)
		for i := 0; i < 20; i++ {
			term.AppendLine(strings.Repeat("x", 3))
		}
		term.AppendLine("last line")
		if err := term.Render("", "> "); err != nil {
			t.Fatal(err)
		}
		frame := buf.String()
		if !strings.Contains(frame, "last line") {
			t.Error("newest scrollback line missing from the frame")
		}
		if got := strings.Count(frame, Newline); got > 4 {
			t.Errorf("frame has %d lines of scrollback, window height is 5", got)
		}
	})

	t.Run("InputLineTruncatedToWidth", func(t *testing.T) {
		term, buf := newTerm(10, 24)
		for _, b := range []byte("0123456789abcdef") {
			term.Edit(Key{Type: KeyChar, Ch: b})
		}
		if err := term.Render("", "> "); err != nil {
			t.Fatal(err)
		}
		frame := buf.String()
		if strings.Contains(frame, "> 01234567") == false {
			t.Errorf("frame missing truncated input: %q", frame)
		}
		if strings.Contains(frame, "89abcdef") {
			t.Errorf("input not truncated to width: %q", frame)
		}
	})

	t.Run("ResizeTakesEffect", func(t *testing.T) {
		term, buf := newTerm(80, 24)
		term.Resize(4, 24)
		for _, b := range []byte("abcdefgh") {
			term.Edit(Key{Type: KeyChar, Ch: b})
		}
		if err := term.Render("", ""); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "abcde") {
			t.Errorf("resize to width 4 not honored: %q", buf.String())
		}
		term.Resize(0, -1) // ignored
		if term.width != 4 || term.height != 24 {
			t.Error("invalid sizes must be ignored")
		}
	})

	t.Run("TakeInputClearsLine", func(t *testing.T) {
		term, _ := newTerm(80, 24)
		for _, b := range []byte("hello") {
			term.Edit(Key{Type: KeyChar, Ch: b})
		}
		if got := term.TakeInput(); got != "hello" {
			t.Fatalf("TakeInput() = %q", got)
		}
		if term.InputLine() != "" {
			t.Error("TakeInput should clear the editable line")
		}
	})
}
