package main

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clawinfra/substrate"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	mutedColor   = lipgloss.Color("#6B7280")
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")

	sidebarStyle = lipgloss.NewStyle().
			Width(36).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 1)

	sidebarTitle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	metricStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	okStyle      = lipgloss.NewStyle().Foreground(successColor)
	errStyle     = lipgloss.NewStyle().Foreground(errorColor)

	feedBorder = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(mutedColor)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(primaryColor).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

type blockEventMsg struct {
	blockHash substrate.Hash
	rawLen    int
}

type subscriptionEndedMsg struct {
	err error
}

type feedEntry struct {
	at     time.Time
	hash   substrate.Hash
	rawLen int
}

type inspectModel struct {
	health *nodeHealth

	feed    viewport.Model
	entries []feedEntry
	ended   error

	width, height int
	ready         bool
}

func newInspectModel(health *nodeHealth) inspectModel {
	return inspectModel{health: health}
}

func (m inspectModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

type tickMsg struct{}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case blockEventMsg:
		m.entries = append(m.entries, feedEntry{at: time.Now(), hash: msg.blockHash, rawLen: msg.rawLen})
		if len(m.entries) > 500 {
			m.entries = m.entries[len(m.entries)-500:]
		}
		if m.ready {
			m.feed.SetContent(m.renderFeed())
			m.feed.GotoBottom()
		}

	case subscriptionEndedMsg:
		m.ended = msg.err

	case tickMsg:
		cmds = append(cmds, tickCmd())

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		feedW := m.width - 40
		feedH := m.height - 6
		if !m.ready {
			m.feed = viewport.New(feedW, feedH)
			m.feed.SetContent(m.renderFeed())
			m.ready = true
		} else {
			m.feed.Width, m.feed.Height = feedW, feedH
		}
	}

	var cmd tea.Cmd
	m.feed, cmd = m.feed.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m inspectModel) View() string {
	if !m.ready {
		return "starting substrate-inspect..."
	}

	header := headerStyle.Width(m.width).Render("  substrate-inspect — finalized block feed")
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), " ", feedBorder.Width(m.width-40).Render(m.feed.View()))
	footer := footerStyle.Render("  q / Ctrl+C: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m inspectModel) renderSidebar() string {
	var sb strings.Builder
	sb.WriteString(sidebarTitle.Render("Node Health"))
	sb.WriteString("\n")

	if lc, ok := m.health.lastCheck.Load().(time.Time); ok {
		sb.WriteString(metricStyle.Render(fmt.Sprintf("last check: %s ago", time.Since(lc).Round(time.Second))))
		sb.WriteString("\n")
	} else {
		sb.WriteString(metricStyle.Render("last check: never"))
		sb.WriteString("\n")
	}

	if errStr, ok := m.health.lastErr.Load().(string); ok && errStr != "" {
		sb.WriteString(errStyle.Render("status: " + errStr))
	} else if _, ok := m.health.finalized.Load().(substrate.Hash); ok {
		sb.WriteString(okStyle.Render("status: reachable"))
	} else {
		sb.WriteString(metricStyle.Render("status: unknown"))
	}
	sb.WriteString("\n\n")

	if hash, ok := m.health.finalized.Load().(substrate.Hash); ok {
		sb.WriteString(metricStyle.Render("finalized head:"))
		sb.WriteString("\n")
		sb.WriteString(metricStyle.Render(short(hash)))
		sb.WriteString("\n\n")
	}

	sb.WriteString(sidebarTitle.Render("Feed"))
	sb.WriteString("\n")
	sb.WriteString(metricStyle.Render(fmt.Sprintf("blocks seen: %d", len(m.entries))))
	sb.WriteString("\n")

	if m.ended != nil {
		sb.WriteString("\n")
		sb.WriteString(errStyle.Render("subscription ended: " + m.ended.Error()))
	}

	return sidebarStyle.Height(m.height - 4).Render(sb.String())
}

func (m inspectModel) renderFeed() string {
	if len(m.entries) == 0 {
		return lipgloss.NewStyle().Foreground(mutedColor).Padding(1).Render("waiting for finalized blocks...")
	}

	var sb strings.Builder
	for _, e := range m.entries {
		ts := e.at.Format("15:04:05")
		sb.WriteString(fmt.Sprintf("%s  %s  events: %d bytes\n", ts, short(e.hash), e.rawLen))
	}
	return sb.String()
}

func short(h substrate.Hash) string {
	s := hex.EncodeToString(h[:])
	return "0x" + s[:8] + "…" + s[len(s)-6:]
}
