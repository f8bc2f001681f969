package chat

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// Theme controls how messages are colorized for one user. Styling is
// written as raw ANSI SGR sequences, the terminal resets after each
// styled span so partial frames never leak attributes.
type Theme struct {
	name      string
	colorize  bool
	userColor func(name string) string
}

const (
	ansiReset = "\033[0m"
	ansiDim   = "\033[2m"
	ansiWarn  = "\033[33m"
)

// 256-color palette slots that stay readable on dark and light backgrounds.
var userPalette = []int{39, 43, 82, 119, 141, 166, 172, 197, 203, 208, 214}

func paletteColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("\033[38;5;%dm", userPalette[h.Sum32()%uint32(len(userPalette))])
}

var themes = map[string]*Theme{
	"colors": {
		name:      "colors",
		colorize:  true,
		userColor: paletteColor,
	},
	"mono": {
		name:     "mono",
		colorize: false,
	},
	"hacker": {
		name:     "hacker",
		colorize: true,
		userColor: func(string) string {
			return "\033[38;5;40m"
		},
	},
}

// DefaultTheme is assigned to every user at join time.
func DefaultTheme() *Theme {
	return themes["colors"]
}

// LookupTheme resolves a theme by name.
func LookupTheme(name string) (*Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// ThemeNames lists the registered themes in a stable order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Theme) Name() string {
	return t.name
}

// StyleUsername colorizes a username. With the mono theme the name is
// passed through untouched.
func (t *Theme) StyleUsername(name string) string {
	if !t.colorize {
		return name
	}
	return t.userColor(name) + name + ansiReset
}

func (t *Theme) styleDim(s string) string {
	if !t.colorize {
		return s
	}
	return ansiDim + s + ansiReset
}

func (t *Theme) styleWarn(s string) string {
	if !t.colorize {
		return s
	}
	return ansiWarn + s + ansiReset
}

// StripANSI removes SGR sequences, used by tests and by width
// calculations on already-styled lines.
func StripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case inEsc:
			if r == 'm' {
				inEsc = false
			}
		case r == '\033':
			inEsc = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
