package tui

import (
	"context"
	"desktop-messenger/internal/chat"
	"desktop-messenger/internal/session"
	"desktop-messenger/internal/storage"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

func (m *Model) form() []textinput.Model {
	if m.screen == screenSignup {
		return m.signup
	}
	return m.login
}

func (m *Model) focusForm(i int) {
	fields := m.form()
	m.formFocus = (i + len(fields)) % len(fields)
	for j := range fields {
		if j == m.formFocus {
			fields[j].Focus()
			continue
		}
		fields[j].Blur()
	}
}

func (m *Model) resetForms() {
	for i := range m.login {
		m.login[i].Reset()
	}
	for i := range m.signup {
		m.signup[i].Reset()
	}
	m.focusForm(0)
}

func (m *Model) updateAuth(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.focusForm(m.formFocus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusForm(m.formFocus - 1)
		return m, nil
	case "enter":
		return m, m.submitAuth()
	case "ctrl+n":
		if m.screen == screenLogin {
			m.flow.ShowSignup()
			m.screen = screenSignup
			m.setStatus("", false)
			m.focusForm(0)
		}
		return m, nil
	case "esc":
		if m.screen == screenSignup {
			m.flow.ShowLogin()
			m.screen = screenLogin
			m.setStatus("", false)
			m.focusForm(0)
		}
		return m, nil
	}

	fields := m.form()
	var cmd tea.Cmd
	fields[m.formFocus], cmd = fields[m.formFocus].Update(msg)
	return m, cmd
}

func (m *Model) submitAuth() tea.Cmd {
	if m.screen == screenLogin {
		email, password := m.login[0].Value(), m.login[1].Value()
		return func() tea.Msg {
			u, err := m.flow.Login(actionContext(), email, password)
			return authResultMsg{user: u, err: err}
		}
	}

	req := session.SignupRequest{
		FirstName:       m.signup[0].Value(),
		LastName:        m.signup[1].Value(),
		Email:           m.signup[2].Value(),
		Password:        m.signup[3].Value(),
		ConfirmPassword: m.signup[4].Value(),
	}
	return func() tea.Msg {
		u, err := m.flow.Signup(actionContext(), req)
		return authResultMsg{user: u, err: err}
	}
}

// handleAuthResult opens the chat screen for the authenticated user
func (m *Model) handleAuthResult(msg authResultMsg) tea.Cmd {
	if msg.err != nil {
		m.setStatus(msg.err.Error(), true)
		return nil
	}

	m.me = msg.user
	m.screen = screenChat
	m.focus = paneContacts
	m.cursor = map[pane]int{}
	m.contacts = chat.ContactList{}
	m.groups = nil
	m.conv = chat.Conversation{}
	m.input.Reset()
	m.input.Blur()
	m.setStatus("Welcome, "+msg.user.FullName(), false)

	m.view = chat.New(m.logger, m.store, msg.user, programRenderer{send: m.send})
	if m.cfg.notifier != nil {
		m.stopNote = m.store.Subscribe(m.presenceNotifier(msg.user.ID))
	}

	return m.run(m.view.Load)
}

// presenceNotifier pops a desktop notification when anyone but me goes online or offline
func (m *Model) presenceNotifier(me int64) storage.PresenceFunc {
	return func(user int64, online bool) {
		if user == me {
			return
		}
		go func() {
			u, err := m.store.GetUserByID(context.Background(), user)
			if err != nil {
				m.logger.Errorf("Looking up user (id: %d) for presence notification: %v", user, err)
				return
			}
			_ = m.cfg.notifier.Presence(u.FullName(), online)
		}()
	}
}

func (m *Model) closeChat() {
	if m.view != nil {
		m.view.Close()
		m.view = nil
	}
	if m.stopNote != nil {
		m.stopNote()
		m.stopNote = nil
	}
	m.me = storage.User{}
}
