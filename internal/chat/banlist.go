package chat

import (
	"fmt"
	"strings"
)

// BanItem is one active ban condition matched against joining users.
// Field is "name" or "fingerprint".
type BanItem struct {
	Field string
	Value string
}

func (b BanItem) String() string {
	return fmt.Sprintf("%s=%s", b.Field, b.Value)
}

// BanList holds the active ban conditions. Access is serialized by the
// room lock.
type BanList struct {
	items []BanItem
}

// ParseBanQuery parses a /ban query. Tokens are either "field=value"
// (name, fingerprint) or bare words, which ban a name.
func ParseBanQuery(query string) ([]BanItem, error) {
	var items []BanItem
	for _, tok := range strings.Fields(query) {
		field, value, found := strings.Cut(tok, "=")
		if !found {
			items = append(items, BanItem{Field: "name", Value: tok})
			continue
		}
		switch field {
		case "name", "fingerprint":
			items = append(items, BanItem{Field: field, Value: value})
		default:
			return nil, fmt.Errorf("unknown ban field %q, use name= or fingerprint=", field)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty ban query")
	}
	return items, nil
}

// Add records ban conditions.
func (l *BanList) Add(items []BanItem) {
	l.items = append(l.items, items...)
}

// Matches reports whether a user with the given name and fingerprint is
// banned.
func (l *BanList) Matches(name, fingerprint string) bool {
	for _, item := range l.items {
		switch item.Field {
		case "name":
			if strings.EqualFold(item.Value, name) {
				return true
			}
		case "fingerprint":
			if item.Value == fingerprint {
				return true
			}
		}
	}
	return false
}

// List renders the active conditions.
func (l *BanList) List() []string {
	out := make([]string, 0, len(l.items))
	for _, item := range l.items {
		out = append(out, item.String())
	}
	return out
}
