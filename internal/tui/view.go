package tui

import (
	"desktop-messenger/internal/chat"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// View renders the current screen
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true

	switch m.screen {
	case screenLogin:
		v.SetContent(m.viewAuth("Login", []string{"Email", "Password"}, "enter: login  ctrl+n: sign up  ctrl+c: quit"))
	case screenSignup:
		v.SetContent(m.viewAuth("Sign Up", []string{"First Name", "Last Name", "Email", "Password", "Confirm Password"}, "enter: create account  esc: back to login  ctrl+c: quit"))
	default:
		v.SetContent(m.viewChat())
	}
	return v
}

func (m *Model) size() (int, int) {
	w, h := m.width, m.height
	if w == 0 {
		w = defaultWidth
	}
	if h == 0 {
		h = defaultHeight
	}
	return w, h
}

func (m *Model) viewAuth(title string, labels []string, help string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Messenger - "+title) + "\n\n")
	for i, field := range m.form() {
		b.WriteString(headingStyle.Render(labels[i]) + "\n")
		b.WriteString(field.View() + "\n\n")
	}
	b.WriteString(m.viewStatus() + "\n")
	b.WriteString(mutedStyle.Render(help))

	return panelFocusedStyle.Padding(1, 2).Render(b.String())
}

func (m *Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsErr {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func (m *Model) viewChat() string {
	w, h := m.size()
	// title, status and help lines plus panel borders
	contentHeight := max(h-5, 6)
	mainWidth := max(w-sidebarWidth, 20)

	header := titleStyle.Render("Messenger - " + m.me.FullName())

	sidebar := lipgloss.JoinVertical(lipgloss.Left,
		m.panel(paneContacts, sidebarWidth, contentHeight/2, m.viewContacts()),
		m.panel(paneGroups, sidebarWidth, contentHeight-contentHeight/2, m.viewGroups()),
	)

	conversation := m.panel(paneInput, mainWidth, contentHeight, m.viewConversation(contentHeight-3))

	help := mutedStyle.Render("tab: focus  enter: open/send  ctrl+a: all/online  ctrl+r: refresh  ctrl+l: logout  /help")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, conversation),
		m.viewStatus(),
		help,
	)
}

func (m *Model) panel(p pane, width, height int, content string) string {
	style := panelStyle
	if m.focus == p {
		style = panelFocusedStyle
	}
	return style.Width(width).Height(height).Render(content)
}

func (m *Model) viewContacts() string {
	heading := "Online Users"
	switch m.contacts.Filter {
	case chat.AllUsers:
		heading = "All Users"
	case chat.SearchResults:
		heading = fmt.Sprintf("Search: %s", m.contacts.Term)
	}

	lines := []string{headingStyle.Render(heading)}
	if len(m.contacts.Contacts) == 0 {
		lines = append(lines, mutedStyle.Render("nobody here"))
	}
	for i, c := range m.contacts.Contacts {
		dot := mutedStyle.Render("○")
		if c.IsOnline {
			dot = onlineStyle.Render("●")
		}
		name := c.FullName()
		if n := m.contacts.Unread[c.ID]; n > 0 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}
		lines = append(lines, m.item(paneContacts, i, dot+" "+name))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewGroups() string {
	lines := []string{headingStyle.Render("Groups")}
	if len(m.groups) == 0 {
		lines = append(lines, mutedStyle.Render("/group <name> to create one"))
	}
	for i, g := range m.groups {
		lines = append(lines, m.item(paneGroups, i, "# "+g.Name))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) item(p pane, i int, text string) string {
	if m.focus == p && m.cursor[p] == i {
		return selectedStyle.Render("> " + text)
	}
	return "  " + text
}

func (m *Model) viewConversation(height int) string {
	title := m.conv.Title
	if title == "" {
		title = "Select a chat to start messaging"
	}

	lines := make([]string, 0, len(m.conv.Lines))
	for _, l := range m.conv.Lines {
		lines = append(lines, formatLine(l))
	}
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render(title),
		strings.Join(lines, "\n"),
		m.input.View(),
	)
}

func formatLine(l chat.Line) string {
	name := peerStyle.Render(l.SenderName)
	if l.Mine {
		name = mineStyle.Render("You")
	}
	return fmt.Sprintf("%s %s: %s", mutedStyle.Render(l.SentAt.Local().Format("15:04")), name, l.Content)
}
