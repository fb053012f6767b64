package tui

import (
	"context"
	"desktop-messenger/internal/chat"
	"strings"

	tea "charm.land/bubbletea/v2"
)

func (m *Model) updateChat(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.setFocus((m.focus + 1) % 3)
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + 2) % 3)
		return m, nil
	case "ctrl+a":
		if m.view.Filter() == chat.AllUsers {
			return m, m.run(m.view.ShowOnline)
		}
		return m, m.run(m.view.ShowAll)
	case "ctrl+r":
		return m, m.run(refresh(m.view))
	case "ctrl+l":
		return m, m.logout()
	}

	if m.focus == paneInput {
		return m.updateInput(msg)
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		return m, m.selectUnderCursor()
	}
	return m, nil
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	if p == paneInput {
		m.input.Focus()
		return
	}
	m.input.Blur()
}

func (m *Model) moveCursor(delta int) {
	n := len(m.contacts.Contacts)
	if m.focus == paneGroups {
		n = len(m.groups)
	}
	m.cursor[m.focus] += delta
	m.clampCursor(m.focus, n)
}

func (m *Model) selectUnderCursor() tea.Cmd {
	i := m.cursor[m.focus]
	switch m.focus {
	case paneContacts:
		if i >= len(m.contacts.Contacts) {
			return nil
		}
		id := m.contacts.Contacts[i].ID
		view := m.view
		return m.run(func(ctx context.Context) error {
			if err := view.SelectContact(ctx, id); err != nil {
				return err
			}
			return view.ReloadContacts(ctx)
		})
	case paneGroups:
		if i >= len(m.groups) {
			return nil
		}
		id := m.groups[i].ID
		view := m.view
		return m.run(func(ctx context.Context) error {
			return view.SelectGroup(ctx, id)
		})
	}
	return nil
}

func (m *Model) updateInput(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.setFocus(paneContacts)
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if text == "" {
			return m, nil
		}
		if strings.HasPrefix(text, "/") {
			return m, m.command(text)
		}
		view := m.view
		return m, m.run(func(ctx context.Context) error {
			return view.Send(ctx, text)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh polls the open conversation together with both lists
func refresh(view *chat.View) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := view.Refresh(ctx); err != nil {
			return err
		}
		return view.Load(ctx)
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		if err := m.flow.Logout(actionContext()); err != nil {
			return errMsg{err}
		}
		return loggedOutMsg{}
	}
}
