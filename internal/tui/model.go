// Package tui is the terminal front end: it collects credentials for the session flow,
// then drives the chat view and draws whatever the view renders.
package tui

import (
	"context"
	"desktop-messenger/internal/chat"
	"desktop-messenger/internal/session"
	"desktop-messenger/internal/storage"
	"desktop-messenger/internal/storage/zapadapter"
	"errors"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/xid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type screen int

const (
	screenLogin screen = iota
	screenSignup
	screenChat
)

// pane is the focused part of the chat screen
type pane int

const (
	paneContacts pane = iota
	paneGroups
	paneInput
)

type authResultMsg struct {
	user storage.User
	err  error
}

type loggedOutMsg struct{}

type statusMsg string

type errMsg struct{ err error }

// Model is the root bubbletea model
type Model struct {
	logger *zap.SugaredLogger
	store  *storage.Store
	flow   *session.Flow
	cfg    config
	send   func(tea.Msg)

	width, height int
	screen        screen
	status        string
	statusIsErr   bool

	login     []textinput.Model
	signup    []textinput.Model
	formFocus int

	me       storage.User
	view     *chat.View
	stopNote func()
	focus    pane
	contacts chat.ContactList
	groups   []storage.Group
	conv     chat.Conversation
	cursor   map[pane]int
	input    textinput.Model
}

// New returns Model showing the login form
func New(logger *zap.SugaredLogger, store *storage.Store, opts ...Option) *Model {
	cfg := config{bcryptCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	m := &Model{
		logger: logger,
		store:  store,
		cfg:    cfg,
		send:   func(tea.Msg) {},
		screen: screenLogin,
		cursor: map[pane]int{},
	}
	m.flow = session.New(logger, store, nil, session.WithCost(cfg.bcryptCost))

	m.login = []textinput.Model{
		newInput("Email", false),
		newInput("Password", true),
	}
	m.signup = []textinput.Model{
		newInput("First Name", false),
		newInput("Last Name", false),
		newInput("Email", false),
		newInput("Password", true),
		newInput("Confirm Password", true),
	}
	m.input = newInput("Type your message here... (/help for commands)", false)
	m.focusForm(0)

	return m
}

// Attach sets the function delivering renders from background commands, normally tea.Program.Send
func (m *Model) Attach(send func(tea.Msg)) {
	m.send = send
}

// Close releases the chat view subscriptions
func (m *Model) Close() {
	m.closeChat()
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = inputCharLimit
	ti.SetWidth(inputWidth)
	if secret {
		ti.EchoMode = textinput.EchoPassword
	}
	return ti
}

// actionContext tags every query of one user action with the same id in the SQL log
func actionContext() context.Context {
	return zapadapter.NewContextWithID(context.Background(), xid.New().String())
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		switch m.screen {
		case screenLogin, screenSignup:
			return m.updateAuth(msg)
		default:
			return m.updateChat(msg)
		}

	case authResultMsg:
		return m, m.handleAuthResult(msg)

	case loggedOutMsg:
		m.closeChat()
		m.screen = screenLogin
		m.resetForms()
		m.setStatus("Logged out", false)
		return m, nil

	case conversationMsg:
		m.conv = chat.Conversation(msg)
		return m, nil

	case contactsMsg:
		m.contacts = chat.ContactList(msg)
		m.clampCursor(paneContacts, len(m.contacts.Contacts))
		return m, nil

	case groupsMsg:
		m.groups = []storage.Group(msg)
		m.clampCursor(paneGroups, len(m.groups))
		return m, nil

	case statusMsg:
		m.setStatus(string(msg), false)
		return m, nil

	case errMsg:
		m.setStatus(msg.err.Error(), true)
		return m, nil
	}

	return m, nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusIsErr = isErr
}

// run executes fn in a command with a fresh action context and reports its error on the status line
func (m *Model) run(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(actionContext()); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *Model) quit() tea.Cmd {
	if m.screen != screenChat {
		return tea.Quit
	}
	return func() tea.Msg {
		if err := m.flow.Logout(actionContext()); err != nil && !errors.Is(err, session.ErrNotAuthenticated) {
			m.logger.Errorf("Logging out before quit: %v", err)
		}
		return tea.Quit()
	}
}

func (m *Model) clampCursor(p pane, n int) {
	if m.cursor[p] >= n {
		m.cursor[p] = n - 1
	}
	if m.cursor[p] < 0 {
		m.cursor[p] = 0
	}
}
