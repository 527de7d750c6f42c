package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/capitalize-ai/gift-suggester/internal/lifecycle"
	"github.com/capitalize-ai/gift-suggester/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	priceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1).MarginBottom(1)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// stateMsg carries a controller transition into the program.
type stateMsg lifecycle.State

// submitDoneMsg reports the end of a Submit or Regenerate call.
type submitDoneMsg struct{ err error }

// flow is the part of the controller the UI drives.
type flow interface {
	Submit(ctx context.Context, message string) error
	Regenerate(ctx context.Context) error
	State() lifecycle.State
	CanRegenerate() bool
}

type uiModel struct {
	ctx        context.Context
	controller flow
	input      textinput.Model
	spin       spinner.Model
	state      lifecycle.State
	notice     string
}

func newModel(ctx context.Context, c flow) uiModel {
	in := textinput.New()
	in.Placeholder = "Describe who the gift is for, their interests and your budget"
	in.Prompt = "> "
	in.CharLimit = model.MaxMessageLength
	in.Width = 80
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return uiModel{
		ctx:        ctx,
		controller: c,
		input:      in,
		spin:       s,
		state:      c.State(),
	}
}

func (m uiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-4, 20)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.state.Phase == lifecycle.PhaseLoading {
				return m, nil
			}
			message := m.input.Value()
			if err := model.ValidateUserMessage(message, model.MaxMessageLength); err != nil {
				m.notice = err.Error()
				return m, nil
			}
			m.notice = ""
			m.state.Phase = lifecycle.PhaseLoading
			return m, m.run(func(ctx context.Context) error {
				return m.controller.Submit(ctx, message)
			})

		case "ctrl+r":
			if !m.controller.CanRegenerate() {
				return m, nil
			}
			m.notice = ""
			m.state.Phase = lifecycle.PhaseLoading
			return m, m.run(m.controller.Regenerate)
		}

	case stateMsg:
		m.state = lifecycle.State(msg)
		return m, nil

	case submitDoneMsg:
		switch {
		case msg.err == nil:
		case model.IsValidationError(msg.err):
			m.notice = msg.err.Error()
		case errors.Is(msg.err, lifecycle.ErrRequestInFlight):
			m.notice = "A request is already running"
		}
		m.state = m.controller.State()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m uiModel) run(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return submitDoneMsg{err: fn(ctx)}
	}
}

func (m uiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Gift Suggester"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(fmt.Sprintf("%d/%d characters (min %d)",
		len([]rune(m.input.Value())), model.MaxMessageLength, model.MinMessageLength)))
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	switch m.state.Phase {
	case lifecycle.PhaseLoading:
		b.WriteString(m.spin.View() + " Finding gift ideas...\n\n")
	case lifecycle.PhaseSuccess:
		b.WriteString(renderSuggestions(m.state.Response))
	case lifecycle.PhaseFailed:
		if m.state.Err != nil {
			b.WriteString(errorStyle.Render(m.state.Err.Message))
		}
		b.WriteString("\n" + hintStyle.Render("Please try again") + "\n\n")
	}

	keys := "enter: submit • esc: quit"
	if m.state.LastMessage != "" && m.state.Phase != lifecycle.PhaseLoading {
		keys = "enter: submit • ctrl+r: regenerate • esc: quit"
	}
	b.WriteString(hintStyle.Render(keys))
	b.WriteString("\n")
	return b.String()
}

func renderSuggestions(resp *model.SuggestionResponse) string {
	if resp == nil || len(resp.Suggestions) == 0 {
		return hintStyle.Render("No suggestions returned") + "\n\n"
	}

	var b strings.Builder
	for i, s := range resp.Suggestions {
		card := fmt.Sprintf("%s\n%s\n%s",
			nameStyle.Render(fmt.Sprintf("%d. %s", i+1, s.Name)),
			s.Reason,
			priceStyle.Render(s.PriceRange),
		)
		if len(s.WhereToBuy) > 0 {
			card += "\n" + hintStyle.Render("Where to buy: "+strings.Join(s.WhereToBuy, ", "))
		}
		b.WriteString(cardStyle.Render(card))
		b.WriteString("\n")
	}
	if resp.Notes != "" {
		b.WriteString(hintStyle.Render(resp.Notes))
		b.WriteString("\n\n")
	}
	return b.String()
}
