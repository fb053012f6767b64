package tui

import "charm.land/lipgloss/v2"

const (
	inputCharLimit = 500
	inputWidth     = 40

	// sidebarWidth is the width of the contacts and groups panel including its border
	sidebarWidth = 32

	defaultWidth  = 100
	defaultHeight = 30
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorBorder  = lipgloss.Color("#374151")
	colorText    = lipgloss.Color("#F9FAFB")
	colorMuted   = lipgloss.Color("#B0B8C4")
	colorMine    = lipgloss.Color("#A78BFA")
	colorPeer    = lipgloss.Color("#22D3EE")
	colorError   = lipgloss.Color("#EF4444")
	colorOnline  = lipgloss.Color("#10B981")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Background(colorPrimary).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	panelFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	onlineStyle   = lipgloss.NewStyle().Foreground(colorOnline)
	mineStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorMine)
	peerStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorPeer)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	statusStyle   = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
)
