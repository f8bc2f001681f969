package chat

import (
	"strings"
	"testing"
	"time"
)

func TestMessageFormat(t *testing.T) {
	alice := NewUser(1, "alice", "SSH-2.0-test", "", false)
	bob := NewUser(2, "bob", "SSH-2.0-test", "", false)
	mono, _ := LookupTheme("mono")
	alice.Theme = mono
	bob.Theme = mono

	tests := []struct {
		name   string
		msg    Message
		viewer *User
		want   string
	}{
		{"Public", NewPublic(alice, "hello"), bob, "alice: hello"},
		{"Emote", NewEmote(alice, "waves"), bob, "* alice waves"},
		{"Announce", NewAnnounce(alice, "joined. (Connected: 1)"), bob, " * alice joined. (Connected: 1)"},
		{"System", NewSystem(bob, "Quiet mode is toggled ON"), bob, "-> Quiet mode is toggled ON"},
		{"CommandEcho", NewCommandEcho(alice, "/users"), alice, "[alice] /users"},
		{"Error", NewError(bob, "User is not found"), bob, "Error: User is not found"},
		{"PrivateToSender", NewPrivate(alice, bob, "psst"), alice, "[PM to bob] psst"},
		{"PrivateToRecipient", NewPrivate(alice, bob, "psst"), bob, "[PM from alice] psst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.Format(tt.viewer); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageColorization(t *testing.T) {
	alice := NewUser(1, "alice", "SSH-2.0-test", "", false)
	if alice.Theme != DefaultTheme() {
		t.Fatal("new users should get the default theme")
	}

	got := NewPublic(alice, "hi").Format(alice)
	if !strings.Contains(got, "\033[") {
		t.Errorf("default theme should colorize the sender name, got %q", got)
	}
	if StripANSI(got) != "alice: hi" {
		t.Errorf("stripped line = %q", StripANSI(got))
	}
}

// A message carries the sender's name from creation time; renaming the
// user afterwards must not change how the message renders.
func TestMessageSnapshotsSender(t *testing.T) {
	alice := NewUser(1, "alice", "SSH-2.0-test", "", false)
	bob := NewUser(2, "bob", "SSH-2.0-test", "", false)
	mono, _ := LookupTheme("mono")
	alice.Theme = mono
	bob.Theme = mono

	pub := NewPublic(alice, "hello")
	pm := NewPrivate(alice, bob, "psst")
	alice.Rename("zed")

	if got := pub.Format(bob); got != "alice: hello" {
		t.Errorf("Format() = %q, want %q", got, "alice: hello")
	}
	if got := pm.Format(bob); got != "[PM from alice] psst" {
		t.Errorf("Format() = %q, want %q", got, "[PM from alice] psst")
	}
}

func TestFormatForTimestamps(t *testing.T) {
	alice := NewUser(1, "alice", "SSH-2.0-test", "", false)
	mono, _ := LookupTheme("mono")
	alice.Theme = mono
	msg := NewPublic(alice, "hi")

	t.Run("Off", func(t *testing.T) {
		if got := FormatFor(msg, alice); got != "alice: hi" {
			t.Errorf("FormatFor() = %q", got)
		}
	})

	t.Run("Time", func(t *testing.T) {
		alice.Timestamp = TimestampTime
		want := msg.When().Format("15:04") + " alice: hi"
		if got := FormatFor(msg, alice); got != want {
			t.Errorf("FormatFor() = %q, want %q", got, want)
		}
	})

	t.Run("DateTime", func(t *testing.T) {
		alice.Timestamp = TimestampDateTime
		want := msg.When().Format("2006-01-02 15:04:05") + " alice: hi"
		if got := FormatFor(msg, alice); got != want {
			t.Errorf("FormatFor() = %q, want %q", got, want)
		}
	})
}

func TestStripANSI(t *testing.T) {
	in := "\033[38;5;40malice\033[0m: hi"
	if got := StripANSI(in); got != "alice: hi" {
		t.Errorf("StripANSI(%q) = %q", in, got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5s", "5s"},
		{"90s", "1m 30s"},
		{"1h0m5s", "1h 0m 5s"},
		{"49h3m12s", "2d 1h 3m 12s"},
		{"0s", "0s"},
		{"-3s", "0s"},
	}
	for _, tt := range tests {
		d, err := time.ParseDuration(tt.in)
		if err != nil {
			t.Fatalf("bad test duration %q: %v", tt.in, err)
		}
		if got := FormatDuration(d); got != tt.want {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
