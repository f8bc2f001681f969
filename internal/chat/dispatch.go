package chat

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// dispatchLocked applies one parsed command to the room. Every failure
// becomes an Error message to the sender; nothing here returns a Go
// error.
func (r *Room) dispatchLocked(m *Member, cmd Command) {
	u := m.User

	switch c := cmd.(type) {
	case CmdExit:
		r.leaveLocked(u.ID, "exit")
		m.disconnect()

	case CmdAway:
		u.GoAway(c.Reason)
		if r.notifyIfMutedLocked(m) {
			return
		}
		r.sendLocked(NewEmote(u, fmt.Sprintf("has gone away: %q", c.Reason)))

	case CmdBack:
		if u.Status.Away {
			u.ReturnActive()
			if r.notifyIfMutedLocked(m) {
				return
			}
			r.sendLocked(NewEmote(u, "is back"))
		}

	case CmdName:
		r.renameLocked(m, c.Name)

	case CmdMsg:
		r.privateMsgLocked(m, c.To, c.Body)

	case CmdReply:
		r.replyLocked(m, c.Body)

	case CmdIgnore:
		r.ignoreLocked(m, c.Target)

	case CmdUnignore:
		r.unignoreLocked(m, c.Target)

	case CmdFocus:
		r.focusLocked(m, c.Target)

	case CmdUsers:
		names := make([]string, 0, len(r.members))
		for name := range r.members {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			return strings.ToLower(names[i]) < strings.ToLower(names[j])
		})
		styled := make([]string, len(names))
		for i, name := range names {
			styled[i] = u.Theme.StyleUsername(name)
		}
		body := fmt.Sprintf("%d connected: %s", len(names), strings.Join(styled, ", "))
		r.sendLocked(NewSystem(u, body))

	case CmdWhois:
		if target, ok := r.members[c.Target]; ok {
			r.sendLocked(NewSystem(u, target.User.Whois()))
		} else {
			r.sendLocked(NewError(u, "User is not found"))
		}

	case CmdTimestamp:
		u.Timestamp = c.Mode
		r.sendLocked(NewSystem(u, "Timestamp mode: "+c.Mode.String()))

	case CmdTheme:
		u.Theme = c.Theme
		r.sendLocked(NewSystem(u, "Theme set to "+c.Theme.Name()))

	case CmdThemes:
		r.sendLocked(NewSystem(u, "Supported themes: "+strings.Join(ThemeNames(), ", ")))

	case CmdQuiet:
		u.SwitchQuiet()
		if u.Quiet {
			r.sendLocked(NewSystem(u, "Quiet mode is toggled ON"))
		} else {
			r.sendLocked(NewSystem(u, "Quiet mode is toggled OFF"))
		}

	case CmdMe:
		if r.notifyIfMutedLocked(m) {
			return
		}
		action := c.Action
		if action == "" {
			action = "is at a loss for words."
		}
		r.sendLocked(NewEmote(u, action))

	case CmdSlap:
		r.slapLocked(m, c.Target)

	case CmdShrug:
		if r.notifyIfMutedLocked(m) {
			return
		}
		r.sendLocked(NewEmote(u, `¯\_(ツ)_/¯`))

	case CmdHelp:
		r.sendLocked(NewSystem(u, HelpText(u.IsOp)))

	case CmdVersion:
		r.sendLocked(NewSystem(u, ServerVersion))

	case CmdUptime:
		r.sendLocked(NewSystem(u, "up "+FormatDuration(time.Since(r.started))))

	case CmdMute:
		r.muteLocked(m, c.Target)

	case CmdKick:
		r.kickLocked(m, c.Target)

	case CmdBan:
		r.banLocked(m, c.Query)

	case CmdBanned:
		conditions := r.bans.List()
		if len(conditions) == 0 {
			r.sendLocked(NewSystem(u, "No ban conditions are set"))
		} else {
			r.sendLocked(NewSystem(u, "Ban conditions: "+strings.Join(conditions, ", ")))
		}

	case CmdMotd:
		if c.Message == "" {
			r.sendLocked(NewSystem(u, r.motd))
		} else {
			r.motd = c.Message
			r.sendLocked(NewSystem(u, "MOTD is updated"))
		}
	}
}

func (r *Room) renameLocked(m *Member, newName string) {
	u := m.User

	if u.Name == newName {
		r.sendLocked(NewError(u, "New name is the same as the original"))
		return
	}
	if _, taken := r.members[newName]; taken {
		r.sendLocked(NewError(u, fmt.Sprintf("%q name is already taken", newName)))
		return
	}

	r.sendLocked(NewAnnounce(u, fmt.Sprintf("user is now known as %s.", newName)))

	oldName := u.Name
	u.Rename(newName)
	r.members[newName] = m
	delete(r.members, oldName)
	r.names[u.ID] = newName
}

func (r *Room) privateMsgLocked(m *Member, to, body string) {
	u := m.User

	target, ok := r.members[to]
	if !ok {
		r.sendLocked(NewError(u, "User is not found"))
		return
	}
	if target.User.ID == u.ID {
		r.sendLocked(NewError(u, "You can't message yourself"))
		return
	}
	if r.notifyIfMutedLocked(m) {
		return
	}

	r.sendLocked(NewPrivate(u, target.User, body))
	if target.User.Status.Away {
		r.sendLocked(NewSystem(u, fmt.Sprintf("Sent PM to %s, but they're away now: %s",
			target.User.Name, target.User.Status.Reason)))
	}
	target.User.SetReplyTo(u.ID)
}

func (r *Room) replyLocked(m *Member, body string) {
	u := m.User

	if u.ReplyTo == 0 {
		r.sendLocked(NewError(u, "There is no message to reply to"))
		return
	}
	target := r.memberByID(u.ReplyTo)
	if target == nil {
		r.sendLocked(NewError(u, "User already left the room"))
		return
	}
	if r.notifyIfMutedLocked(m) {
		return
	}

	r.sendLocked(NewPrivate(u, target.User, body))
}

func (r *Room) ignoreLocked(m *Member, targetName string) {
	u := m.User

	if targetName == "" {
		names := r.namesForIDs(u.Ignored)
		if len(names) == 0 {
			r.sendLocked(NewSystem(u, "You are not ignoring anyone"))
		} else {
			r.sendLocked(NewSystem(u, "Ignored users: "+strings.Join(names, ", ")))
		}
		return
	}

	target, ok := r.members[targetName]
	if !ok {
		r.sendLocked(NewError(u, "User is not found"))
		return
	}
	if target.User.ID == u.ID {
		r.sendLocked(NewError(u, "You can't ignore yourself"))
		return
	}
	u.Ignored[target.User.ID] = true
	r.sendLocked(NewSystem(u, "Ignoring "+targetName))
}

func (r *Room) unignoreLocked(m *Member, targetName string) {
	u := m.User

	target, ok := r.members[targetName]
	if !ok {
		r.sendLocked(NewError(u, "User is not found"))
		return
	}
	if !u.Ignored[target.User.ID] {
		r.sendLocked(NewSystem(u, "You were not ignoring "+targetName))
		return
	}
	delete(u.Ignored, target.User.ID)
	r.sendLocked(NewSystem(u, "No longer ignoring "+targetName))
}

func (r *Room) focusLocked(m *Member, targetName string) {
	u := m.User

	switch targetName {
	case "":
		names := r.namesForIDs(u.Focused)
		if len(names) == 0 {
			r.sendLocked(NewSystem(u, "You are not focusing on anyone"))
		} else {
			r.sendLocked(NewSystem(u, "Focused users: "+strings.Join(names, ", ")))
		}
	case "$":
		u.Focused = make(map[uint64]bool)
		r.sendLocked(NewSystem(u, "Focus is reset"))
	default:
		target, ok := r.members[targetName]
		if !ok {
			r.sendLocked(NewError(u, "User is not found"))
			return
		}
		if target.User.ID == u.ID {
			r.sendLocked(NewError(u, "You can't focus on yourself"))
			return
		}
		u.Focused[target.User.ID] = true
		r.sendLocked(NewSystem(u, "Focusing on "+targetName))
	}
}

func (r *Room) slapLocked(m *Member, targetName string) {
	u := m.User

	if r.notifyIfMutedLocked(m) {
		return
	}
	if targetName == "" {
		r.sendLocked(NewEmote(u, "hits himself with a squishy banana."))
		return
	}
	if target, ok := r.members[targetName]; ok {
		r.sendLocked(NewEmote(u, fmt.Sprintf("hits %s with a squishy banana.", target.User.Name)))
	} else {
		r.sendLocked(NewError(u, "That slippin' monkey is not in the room"))
	}
}

func (r *Room) muteLocked(m *Member, targetName string) {
	u := m.User

	target, ok := r.members[targetName]
	if !ok {
		r.sendLocked(NewError(u, "User is not found"))
		return
	}
	target.User.SwitchMuted()
	if target.User.Muted {
		r.sendLocked(NewSystem(u, "Muted "+targetName))
		r.sendLocked(NewSystem(target.User, "You have been muted"))
	} else {
		r.sendLocked(NewSystem(u, "Unmuted "+targetName))
		r.sendLocked(NewSystem(target.User, "You are no longer muted"))
	}
}

func (r *Room) kickLocked(m *Member, targetName string) {
	target, ok := r.members[targetName]
	if !ok {
		r.sendLocked(NewError(m.User, "User is not found"))
		return
	}
	r.sendLocked(NewAnnounce(target.User, "was kicked."))
	r.removeLocked(target)
	target.disconnect()
}

func (r *Room) banLocked(m *Member, query string) {
	u := m.User

	items, err := ParseBanQuery(query)
	if err != nil {
		r.sendLocked(NewError(u, err.Error()))
		return
	}
	r.bans.Add(items)

	// Kick every connected member matching the fresh conditions.
	var kicked []*Member
	for _, member := range r.members {
		if r.bans.Matches(member.User.Name, member.User.Fingerprint) {
			kicked = append(kicked, member)
		}
	}
	for _, member := range kicked {
		r.sendLocked(NewAnnounce(member.User, "was banned."))
		r.removeLocked(member)
		member.disconnect()
	}

	banned := make([]string, len(items))
	for i, item := range items {
		banned[i] = item.String()
	}
	r.sendLocked(NewSystem(u, "Banned: "+strings.Join(banned, ", ")))
}

// namesForIDs maps a set of user ids to the names of those still
// connected; stale ids are skipped, not swept.
func (r *Room) namesForIDs(ids map[uint64]bool) []string {
	var names []string
	for id := range ids {
		if name, ok := r.names[id]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
