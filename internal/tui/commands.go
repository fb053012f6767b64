package tui

import (
	"context"
	"desktop-messenger/internal/storage"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
)

const helpText = "/group <name>  /invite <email>  /search <term>  /all  /online  /logout"

var ErrUnknownCommand = errors.New("unknown command, try /help")

// parseCommand splits "/name rest of line" into its name and trimmed argument
func parseCommand(line string) (name, arg string) {
	line = strings.TrimPrefix(strings.TrimSpace(line), "/")
	name, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

// command runs a slash command typed into the message input
func (m *Model) command(line string) tea.Cmd {
	name, arg := parseCommand(line)
	view := m.view

	switch name {
	case "help":
		return func() tea.Msg { return statusMsg(helpText) }

	case "logout":
		return m.logout()

	case "all":
		return m.run(view.ShowAll)

	case "online":
		return m.run(view.ShowOnline)

	case "search":
		return m.run(func(ctx context.Context) error {
			return view.Search(ctx, arg)
		})

	case "group":
		return func() tea.Msg {
			if _, err := view.CreateGroup(actionContext(), arg); err != nil {
				return errMsg{err}
			}
			return statusMsg(fmt.Sprintf("Created group %q", arg))
		}

	case "invite":
		return func() tea.Msg {
			ctx := actionContext()
			u, err := m.store.GetUserByEmail(ctx, arg)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotExist) {
					return errMsg{fmt.Errorf("no user with email %q", arg)}
				}
				return errMsg{err}
			}
			if err := view.AddMember(ctx, u.ID); err != nil {
				return errMsg{err}
			}
			return statusMsg(u.FullName() + " added to the group")
		}
	}

	return func() tea.Msg {
		return errMsg{fmt.Errorf("%w: /%s", ErrUnknownCommand, name)}
	}
}
