package chat

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Command is the parsed form of one slash command. Each variant keeps
// only its arguments; metadata (help text, arity, flags) lives in the
// command table below.
type Command interface {
	// String renders the canonical textual form, the inverse of Parse.
	String() string
}

type (
	CmdExit      struct{}
	CmdAway      struct{ Reason string }
	CmdBack      struct{}
	CmdName      struct{ Name string }
	CmdMsg       struct{ To, Body string }
	CmdReply     struct{ Body string }
	CmdIgnore    struct{ Target string } // empty target lists the ignored set
	CmdUnignore  struct{ Target string }
	CmdFocus     struct{ Target string } // empty lists, "$" resets
	CmdUsers     struct{}
	CmdWhois     struct{ Target string }
	CmdTimestamp struct{ Mode TimestampMode }
	CmdTheme     struct{ Theme *Theme }
	CmdThemes    struct{}
	CmdQuiet     struct{}
	CmdMe        struct{ Action string }
	CmdSlap      struct{ Target string }
	CmdShrug     struct{}
	CmdHelp      struct{}
	CmdVersion   struct{}
	CmdUptime    struct{}
	CmdMute      struct{ Target string }
	CmdKick      struct{ Target string }
	CmdBan       struct{ Query string }
	CmdBanned    struct{}
	CmdMotd      struct{ Message string }
)

func (CmdExit) String() string        { return "/exit" }
func (c CmdAway) String() string      { return "/away " + c.Reason }
func (CmdBack) String() string        { return "/back" }
func (c CmdName) String() string      { return "/name " + c.Name }
func (c CmdMsg) String() string       { return fmt.Sprintf("/msg %s %s", c.To, c.Body) }
func (c CmdReply) String() string     { return "/reply " + c.Body }
func (c CmdIgnore) String() string    { return strings.TrimRight("/ignore "+c.Target, " ") }
func (c CmdUnignore) String() string  { return "/unignore " + c.Target }
func (c CmdFocus) String() string     { return strings.TrimRight("/focus "+c.Target, " ") }
func (CmdUsers) String() string       { return "/users" }
func (c CmdWhois) String() string     { return "/whois " + c.Target }
func (c CmdTimestamp) String() string { return "/timestamp " + c.Mode.String() }
func (c CmdTheme) String() string     { return "/theme " + c.Theme.Name() }
func (CmdThemes) String() string      { return "/themes" }
func (CmdQuiet) String() string       { return "/quiet" }
func (c CmdMe) String() string        { return strings.TrimRight("/me "+c.Action, " ") }
func (c CmdSlap) String() string      { return strings.TrimRight("/slap "+c.Target, " ") }
func (CmdShrug) String() string       { return "/shrug" }
func (CmdHelp) String() string        { return "/help" }
func (CmdVersion) String() string     { return "/version" }
func (CmdUptime) String() string      { return "/uptime" }
func (c CmdMute) String() string      { return "/mute " + c.Target }
func (c CmdKick) String() string      { return "/kick " + c.Target }
func (c CmdBan) String() string       { return "/ban " + c.Query }
func (CmdBanned) String() string      { return "/banned" }
func (c CmdMotd) String() string      { return strings.TrimRight("/motd "+c.Message, " ") }

// ErrNotCommand flags input with no leading slash: a chat message, not
// an error the user ever sees.
var ErrNotCommand = errors.New("given input is not a command")

// ErrUnknownCommand flags an unrecognized /token.
var ErrUnknownCommand = errors.New("unknown command")

// ArgumentExpectedError reports a missing required argument.
type ArgumentExpectedError struct {
	Label string
}

func (e *ArgumentExpectedError) Error() string {
	return e.Label + " is expected"
}

func argExpected(label string) error {
	return &ArgumentExpectedError{Label: label}
}

// ParseCommand turns one submitted line into a Command. The line is a
// command iff its first token starts with "/"; the split happens at the
// first space and the remainder is trimmed on the left only, so message
// bodies keep their inner spacing.
func ParseCommand(line string) (Command, error) {
	cmd, args := splitAtFirstSpace(line)
	if !strings.HasPrefix(cmd, "/") {
		return nil, ErrNotCommand
	}
	args = strings.TrimLeft(args, " ")

	switch cmd {
	case "/exit":
		return CmdExit{}, nil
	case "/away":
		if args == "" {
			return nil, argExpected("away reason")
		}
		return CmdAway{Reason: args}, nil
	case "/back":
		return CmdBack{}, nil
	case "/name":
		name := firstToken(args)
		if name == "" {
			return nil, argExpected("new name")
		}
		return CmdName{Name: name}, nil
	case "/msg":
		to, body := splitAtFirstSpace(args)
		if to == "" {
			return nil, argExpected("user name")
		}
		body = strings.TrimLeft(body, " ")
		if body == "" {
			return nil, argExpected("message body")
		}
		return CmdMsg{To: to, Body: body}, nil
	case "/reply":
		if args == "" {
			return nil, argExpected("message body")
		}
		return CmdReply{Body: args}, nil
	case "/ignore":
		return CmdIgnore{Target: firstToken(args)}, nil
	case "/unignore":
		target := firstToken(args)
		if target == "" {
			return nil, argExpected("user name")
		}
		return CmdUnignore{Target: target}, nil
	case "/focus":
		return CmdFocus{Target: firstToken(args)}, nil
	case "/users":
		return CmdUsers{}, nil
	case "/whois":
		target := firstToken(args)
		if target == "" {
			return nil, argExpected("user name")
		}
		return CmdWhois{Target: target}, nil
	case "/timestamp":
		mode, ok := ParseTimestampMode(firstToken(args))
		if !ok {
			return nil, fmt.Errorf("timestamp value must be one of: time, datetime, off")
		}
		return CmdTimestamp{Mode: mode}, nil
	case "/theme":
		theme, ok := LookupTheme(firstToken(args))
		if !ok {
			return nil, fmt.Errorf("theme value must be one of: %s", strings.Join(ThemeNames(), ", "))
		}
		return CmdTheme{Theme: theme}, nil
	case "/themes":
		return CmdThemes{}, nil
	case "/quiet":
		return CmdQuiet{}, nil
	case "/me":
		return CmdMe{Action: args}, nil
	case "/slap":
		return CmdSlap{Target: firstToken(args)}, nil
	case "/shrug":
		return CmdShrug{}, nil
	case "/help":
		return CmdHelp{}, nil
	case "/version":
		return CmdVersion{}, nil
	case "/uptime":
		return CmdUptime{}, nil
	case "/mute":
		target := firstToken(args)
		if target == "" {
			return nil, argExpected("user name")
		}
		return CmdMute{Target: target}, nil
	case "/kick":
		target := firstToken(args)
		if target == "" {
			return nil, argExpected("user name")
		}
		return CmdKick{Target: target}, nil
	case "/ban":
		if args == "" {
			return nil, argExpected("ban query")
		}
		return CmdBan{Query: args}, nil
	case "/banned":
		return CmdBanned{}, nil
	case "/motd":
		return CmdMotd{Message: args}, nil
	}

	return nil, ErrUnknownCommand
}

func splitAtFirstSpace(s string) (string, string) {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func firstToken(s string) string {
	tok, _ := splitAtFirstSpace(s)
	return tok
}

// commandInfo carries the static metadata used by /help.
type commandInfo struct {
	cmd    string
	args   string
	help   string
	op     bool
	hidden bool
}

var commandTable = []commandInfo{
	{cmd: "/exit", help: "Exit the chat application"},
	{cmd: "/away", args: "<reason>", help: "Let the room know you can't make it and why"},
	{cmd: "/back", help: "Clear away status"},
	{cmd: "/name", args: "<name>", help: "Rename yourself"},
	{cmd: "/msg", args: "<user> <message>", help: "Send a private message to a user"},
	{cmd: "/reply", args: "<message>", help: "Reply to the previous private message"},
	{cmd: "/ignore", args: "[user]", help: "Hide messages from a user"},
	{cmd: "/unignore", args: "<user>", help: "Stop hiding messages from a user"},
	{cmd: "/focus", args: "[user]", help: "Only show messages from focused users. $ to reset"},
	{cmd: "/users", help: "List users who are connected"},
	{cmd: "/whois", args: "<user>", help: "Information about a user"},
	{cmd: "/timestamp", args: "<time|datetime|off>", help: "Prefix messages with a UTC timestamp"},
	{cmd: "/theme", args: "<theme>", help: "Set your color theme"},
	{cmd: "/themes", help: "List supported color themes"},
	{cmd: "/quiet", help: "Silence room announcements"},
	{cmd: "/mute", args: "<user>", help: "Toggle muting user, preventing messages from broadcasting", op: true},
	{cmd: "/kick", args: "<user>", help: "Kick user from the server", op: true},
	{cmd: "/ban", args: "<query>", help: "Ban user from the server", op: true},
	{cmd: "/banned", help: "List the current ban conditions", op: true},
	{cmd: "/motd", args: "[message]", help: "Set a new message of the day, or print the motd if no message", op: true},
	{cmd: "/me", args: "[action]", hidden: true},
	{cmd: "/slap", args: "[user]", hidden: true},
	{cmd: "/shrug", hidden: true},
	{cmd: "/help", hidden: true},
	{cmd: "/version", hidden: true},
	{cmd: "/uptime", hidden: true},
}

// HelpText lists the visible commands, shortest first. Operators get an
// extra block with the operator commands.
func HelpText(isOp bool) string {
	rows := make([]commandInfo, 0, len(commandTable))
	for _, info := range commandTable {
		if info.hidden || info.op {
			continue
		}
		rows = append(rows, info)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return len(rows[i].cmd) < len(rows[j].cmd)
	})

	var b strings.Builder
	b.WriteString("Available commands:" + Newline)
	for _, info := range rows {
		fmt.Fprintf(&b, "%-10s %-20s %s%s", info.cmd, info.args, info.help, Newline)
	}

	if isOp {
		ops := make([]commandInfo, 0, 8)
		for _, info := range commandTable {
			if info.op {
				ops = append(ops, info)
			}
		}
		sort.SliceStable(ops, func(i, j int) bool {
			return len(ops[i].cmd) < len(ops[j].cmd)
		})
		b.WriteString(Newline + "Operator commands:" + Newline)
		for _, info := range ops {
			fmt.Fprintf(&b, "%-10s %-20s %s%s", info.cmd, info.args, info.help, Newline)
		}
	}

	return strings.TrimRight(b.String(), Newline)
}
