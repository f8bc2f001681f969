package chat

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestGenRandName(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+[1-9][0-9]{0,3}$`)
	for i := 0; i < 100; i++ {
		name := GenRandName()
		if !pattern.MatchString(name) {
			t.Fatalf("GenRandName() = %q, does not match %s", name, pattern)
		}
	}
}

func TestUserStatus(t *testing.T) {
	u := NewUser(1, "alice", "SSH-2.0-test", "SHA256:abc", false)

	if u.Status.Away {
		t.Error("new user should be active")
	}

	u.GoAway("lunch")
	if !u.Status.Away || u.Status.Reason != "lunch" {
		t.Errorf("unexpected status after GoAway: %+v", u.Status)
	}
	if u.Status.Since.IsZero() {
		t.Error("away status should record its start time")
	}

	u.ReturnActive()
	if u.Status.Away || u.Status.Reason != "" {
		t.Errorf("unexpected status after ReturnActive: %+v", u.Status)
	}
}

func TestUserToggles(t *testing.T) {
	u := NewUser(1, "alice", "SSH-2.0-test", "", false)

	u.SwitchQuiet()
	if !u.Quiet {
		t.Error("quiet should be on after one toggle")
	}
	u.SwitchQuiet()
	if u.Quiet {
		t.Error("quiet should be off after two toggles")
	}

	u.SwitchMuted()
	if !u.Muted {
		t.Error("muted should be on after one toggle")
	}
}

func TestUserWhois(t *testing.T) {
	u := NewUser(7, "alice", "SSH-2.0-openssh", "SHA256:abc", false)
	u.JoinedAt = time.Now().UTC().Add(-90 * time.Second)

	got := u.Whois()
	for _, want := range []string{
		"name: alice",
		" > fingerprint: SHA256:abc",
		" > client: SSH-2.0-openssh",
		" > joined: 1m 30s ago",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("whois output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "away") {
		t.Errorf("active user whois should not mention away:\n%s", got)
	}

	u.GoAway("afk")
	if got := u.Whois(); !strings.Contains(got, "afk") {
		t.Errorf("away whois should include reason:\n%s", got)
	}
}

func TestUserWhoisNoPublicKey(t *testing.T) {
	u := NewUser(7, "alice", "SSH-2.0-openssh", "", false)
	if got := u.Whois(); !strings.Contains(got, "(no public key)") {
		t.Errorf("whois should fall back to a placeholder fingerprint:\n%s", got)
	}
}

func TestParseTimestampMode(t *testing.T) {
	for input, want := range map[string]TimestampMode{
		"off":      TimestampOff,
		"time":     TimestampTime,
		"datetime": TimestampDateTime,
	} {
		got, ok := ParseTimestampMode(input)
		if !ok || got != want {
			t.Errorf("ParseTimestampMode(%q) = %v, %v", input, got, ok)
		}
	}
	if _, ok := ParseTimestampMode("never"); ok {
		t.Error("ParseTimestampMode should reject unknown modes")
	}
}
