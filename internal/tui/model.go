// Package tui is the terminal dashboard: a grid of series cards with the
// same ordering and badges as the web view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/b23bb1023/Manhwa-agent/internal/reconcile"
)

// Actions is the part of the dashboard controller the model drives.
type Actions interface {
	Refresh(ctx context.Context) []reconcile.Card
	Open(ctx context.Context, id string) error
	MarkAsRead(ctx context.Context, id string) (bool, error)
}

type cardsMsg struct {
	cards []reconcile.Card
}

type actionDoneMsg struct {
	status string
	err    error
}

type Model struct {
	ctx     context.Context
	actions Actions

	cards  []reconcile.Card
	cursor int
	loaded bool
	status string
	err    error

	keys   keyMap
	help   help.Model
	width  int
	height int
}

func New(ctx context.Context, actions Actions) Model {
	return Model{
		ctx:     ctx,
		actions: actions,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.refresh
}

func (m Model) refresh() tea.Msg {
	return cardsMsg{cards: m.actions.Refresh(m.ctx)}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case cardsMsg:
		m.cards = msg.cards
		m.loaded = true
		if m.cursor >= len(m.cards) {
			m.cursor = max(len(m.cards)-1, 0)
		}

	case actionDoneMsg:
		m.status = msg.status
		m.err = msg.err
		return m, m.refresh

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.cards)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			return m, m.refresh
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Open):
			if card, ok := m.selected(); ok {
				return m, m.open(card)
			}
		case key.Matches(msg, m.keys.MarkRead):
			if card, ok := m.selected(); ok {
				return m, m.markRead(card)
			}
		}
	}

	return m, nil
}

func (m Model) selected() (reconcile.Card, bool) {
	if m.cursor < 0 || m.cursor >= len(m.cards) {
		return reconcile.Card{}, false
	}
	return m.cards[m.cursor], true
}

func (m Model) open(card reconcile.Card) tea.Cmd {
	return func() tea.Msg {
		if card.Record.URL == "" {
			return actionDoneMsg{status: "no url for " + card.Title}
		}
		err := m.actions.Open(m.ctx, card.Record.ID)
		return actionDoneMsg{status: "opened " + card.Title, err: err}
	}
}

func (m Model) markRead(card reconcile.Card) tea.Cmd {
	return func() tea.Msg {
		found, err := m.actions.MarkAsRead(m.ctx, card.Record.ID)
		if err != nil || !found {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: card.Title + " marked as read"}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Manga Dashboard"))
	b.WriteString("\n")

	switch {
	case !m.loaded:
		b.WriteString(statusStyle.Render("Loading..."))
	case len(m.cards) == 0:
		b.WriteString(emptyStyle.Render("No Data"))
	default:
		for i, card := range m.cards {
			b.WriteString(renderCard(card, i == m.cursor))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", m.err)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func renderCard(card reconcile.Card, selected bool) string {
	state := card.Presentation

	lines := []string{
		titleStyle.Render(card.Title),
		lipgloss.NewStyle().Foreground(colorFor(state.StatusColorClass)).Render(state.StatusText),
		lastReadStyle.Render(fmt.Sprintf("Last Read: %d", card.Record.LastRead)),
	}
	if card.Record.HypeMessage != "" {
		lines = append(lines, hypeStyle.Render(card.Record.HypeMessage))
	}
	lines = append(lines, buttonStyle(state.ButtonColorClass).Render(state.ButtonLabel))

	return cardStyle(state.BorderColorClass, selected).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
