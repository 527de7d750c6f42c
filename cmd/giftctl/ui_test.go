package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/gift-suggester/internal/lifecycle"
	"github.com/capitalize-ai/gift-suggester/internal/model"
	"github.com/capitalize-ai/gift-suggester/pkg/logger"
)

type stubSuggester struct {
	resp     *model.SuggestionResponse
	err      error
	calls    int
	messages []string
}

func (s *stubSuggester) Suggest(_ context.Context, req model.SuggestionRequest) (*model.SuggestionResponse, error) {
	s.calls++
	s.messages = append(s.messages, req.UserMessage)
	return s.resp, s.err
}

func typeText(m uiModel, text string) uiModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(uiModel)
}

func press(m uiModel, key tea.KeyType) (uiModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(uiModel), cmd
}

// finish runs the command a key press returned and feeds its result back.
func finish(t *testing.T, m uiModel, cmd tea.Cmd) uiModel {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(uiModel)
}

func TestEnterSubmitsAndRendersSuggestions(t *testing.T) {
	stub := &stubSuggester{resp: &model.SuggestionResponse{
		Suggestions: []model.GiftSuggestion{
			{Name: "Pour-over kit", Reason: "Filter coffee", PriceRange: "$40-$60", WhereToBuy: []string{"Amazon"}},
			{Name: "Trail daypack", Reason: "Hiking", PriceRange: "$60-$80", WhereToBuy: []string{"REI"}},
		},
		Notes: "Pair the kit with local beans.",
	}}
	m := newModel(context.Background(), lifecycle.New(stub, logger.NewNop()))

	m = typeText(m, "My brother loves coffee and hiking, budget $80")
	m, cmd := press(m, tea.KeyEnter)
	assert.Equal(t, lifecycle.PhaseLoading, m.state.Phase)
	assert.Contains(t, m.View(), "Finding gift ideas")

	m = finish(t, m, cmd)
	assert.Equal(t, lifecycle.PhaseSuccess, m.state.Phase)
	assert.Equal(t, 1, stub.calls)

	view := m.View()
	assert.Contains(t, view, "Pour-over kit")
	assert.Contains(t, view, "Trail daypack")
	assert.Contains(t, view, "ctrl+r: regenerate")
}

func TestEnterWithShortMessageShowsNotice(t *testing.T) {
	stub := &stubSuggester{}
	m := newModel(context.Background(), lifecycle.New(stub, logger.NewNop()))

	m = typeText(m, "short")
	m, cmd := press(m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Equal(t, lifecycle.PhaseIdle, m.state.Phase)
	assert.Equal(t, model.ErrMessageTooShort.Error(), m.notice)
	assert.Zero(t, stub.calls)
}

func TestFailureThenRegenerate(t *testing.T) {
	stub := &stubSuggester{err: context.DeadlineExceeded}
	m := newModel(context.Background(), lifecycle.New(stub, logger.NewNop()))

	m = typeText(m, "My brother loves coffee and hiking, budget $80")
	m, cmd := press(m, tea.KeyEnter)
	m = finish(t, m, cmd)

	assert.Equal(t, lifecycle.PhaseFailed, m.state.Phase)
	view := m.View()
	assert.Contains(t, view, lifecycle.DetailSomethingWrong)
	assert.Contains(t, view, "Please try again")

	stub.err = nil
	stub.resp = &model.SuggestionResponse{Suggestions: []model.GiftSuggestion{{Name: "Board game"}}}
	m, cmd = press(m, tea.KeyCtrlR)
	m = finish(t, m, cmd)

	assert.Equal(t, lifecycle.PhaseSuccess, m.state.Phase)
	assert.Equal(t, 2, stub.calls)
	assert.Contains(t, m.View(), "Board game")
}

func TestRegenerateWithoutSubmitIsIgnored(t *testing.T) {
	stub := &stubSuggester{}
	m := newModel(context.Background(), lifecycle.New(stub, logger.NewNop()))

	m, cmd := press(m, tea.KeyCtrlR)
	assert.Nil(t, cmd)
	assert.Equal(t, lifecycle.PhaseIdle, m.state.Phase)
	assert.Zero(t, stub.calls)
}

func TestStateMsgUpdatesView(t *testing.T) {
	m := newModel(context.Background(), lifecycle.New(&stubSuggester{}, logger.NewNop()))

	next, _ := m.Update(stateMsg(lifecycle.State{
		Phase: lifecycle.PhaseFailed,
		Err:   &model.ErrorDetail{Message: "Backend service unavailable", Class: model.ClassUpstreamRejected},
	}))
	assert.Contains(t, next.(uiModel).View(), "Backend service unavailable")
}

func TestQuitKeys(t *testing.T) {
	m := newModel(context.Background(), lifecycle.New(&stubSuggester{}, logger.NewNop()))
	_, cmd := press(m, tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestEnterSubmitsInputVerbatim(t *testing.T) {
	stub := &stubSuggester{resp: &model.SuggestionResponse{}}
	m := newModel(context.Background(), lifecycle.New(stub, logger.NewNop()))

	padded := "   loves coffee and hiking   "
	m = typeText(m, padded)
	m, cmd := press(m, tea.KeyEnter)
	finish(t, m, cmd)

	assert.Equal(t, []string{padded}, stub.messages)

	// Padding counts toward the minimum length.
	m = newModel(context.Background(), lifecycle.New(stub, logger.NewNop()))
	m = typeText(m, "  short message    ")
	m, cmd = press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, model.ErrMessageTooShort.Error(), m.notice)
	assert.Len(t, stub.messages, 1)
}
