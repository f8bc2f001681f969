package chat

import (
	"errors"
	"strings"
)

// pipelineContext is the shared state the input pipeline stages enrich
// as a submitted line moves from raw input to a dispatched command.
type pipelineContext struct {
	member      *Member
	input       string
	commandLine string // set by the extract stage iff input starts with "/"
	command     Command
}

// submitLocked runs the pipeline for one Enter keystroke: snapshot the
// input line, extract, parse, dispatch.
func (r *Room) submitLocked(m *Member) {
	input := m.Terminal.TakeInput()
	if input == "" {
		return
	}

	ctx := &pipelineContext{member: m, input: input}
	r.stageExtractCommand(ctx)
	r.stageParseCommand(ctx)
	r.stageDispatchCommand(ctx)
}

// stageExtractCommand marks the input as a command candidate when it
// leads with a slash.
func (r *Room) stageExtractCommand(ctx *pipelineContext) {
	if strings.HasPrefix(ctx.input, "/") {
		ctx.commandLine = ctx.input
	}
}

// stageParseCommand turns the command candidate into a typed command.
// Plain chat input becomes a Public message here; parse failures echo
// the attempt and surface the error to the sender only.
func (r *Room) stageParseCommand(ctx *pipelineContext) {
	m := ctx.member

	if ctx.commandLine == "" {
		r.sendPublicLocked(m, ctx.input)
		return
	}

	cmd, err := ParseCommand(ctx.commandLine)
	switch {
	case errors.Is(err, ErrNotCommand):
		r.sendPublicLocked(m, ctx.input)
	case err != nil:
		r.sendLocked(NewCommandEcho(m.User, echoForm(ctx.input)))
		r.sendLocked(NewError(m.User, err.Error()))
	default:
		ctx.command = cmd
	}
}

// stageDispatchCommand echoes the command back and applies it.
func (r *Room) stageDispatchCommand(ctx *pipelineContext) {
	if ctx.command == nil {
		return
	}
	m := ctx.member

	r.sendLocked(NewCommandEcho(m.User, echoForm(ctx.input)))

	if commandNeedsOp(ctx.command) && !m.User.IsOp {
		r.sendLocked(NewError(m.User, "must be an operator for this command"))
		return
	}

	r.dispatchLocked(m, ctx.command)
}

// sendPublicLocked produces a Public message unless the sender is
// muted, in which case the message is dropped before fan-out and the
// sender is told.
func (r *Room) sendPublicLocked(m *Member, body string) {
	if r.notifyIfMutedLocked(m) {
		return
	}
	r.sendLocked(NewPublic(m.User, body))
}

// notifyIfMutedLocked reports whether the sender is muted, telling them
// so. Muted senders produce no Public, Emote or Private traffic at all.
func (r *Room) notifyIfMutedLocked(m *Member) bool {
	if !m.User.Muted {
		return false
	}
	r.sendLocked(NewSystem(m.User, "You are muted and cannot send messages."))
	return true
}

// echoForm normalizes the typed line for the Command echo: the command
// token plus its whitespace-collapsed arguments.
func echoForm(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

func commandNeedsOp(cmd Command) bool {
	switch cmd.(type) {
	case CmdMute, CmdKick, CmdBan, CmdBanned, CmdMotd:
		return true
	}
	return false
}
