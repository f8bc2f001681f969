package chat

import (
	"fmt"
	"testing"
)

func TestHistoryRing(t *testing.T) {
	alice := NewUser(1, "alice", "SSH-2.0-test", "", false)

	t.Run("KeepsInsertionOrder", func(t *testing.T) {
		var h History
		for i := 0; i < 5; i++ {
			h.Push(NewPublic(alice, fmt.Sprintf("msg %d", i)))
		}
		if h.Len() != 5 {
			t.Fatalf("Len() = %d, want 5", h.Len())
		}
		all := h.All()
		if got := StripANSI(all[0].Format(alice)); got != "alice: msg 0" {
			t.Errorf("first message = %q", got)
		}
	})

	t.Run("DiscardsOldestWhenFull", func(t *testing.T) {
		var h History
		for i := 0; i < HistoryLen+1; i++ {
			h.Push(NewPublic(alice, fmt.Sprintf("msg %d", i)))
		}
		if h.Len() != HistoryLen {
			t.Fatalf("Len() = %d, want %d", h.Len(), HistoryLen)
		}
		all := h.All()
		if got := StripANSI(all[0].Format(alice)); got != "alice: msg 1" {
			t.Errorf("oldest retained = %q, want %q", got, "alice: msg 1")
		}
		if got := StripANSI(all[len(all)-1].Format(alice)); got != fmt.Sprintf("alice: msg %d", HistoryLen) {
			t.Errorf("newest retained = %q", got)
		}
	})
}
