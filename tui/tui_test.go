package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealcraft"
	"mealcraft/agent/mock"
	"mealcraft/controller"
	"mealcraft/planner"
)

func newModel(t *testing.T, shape mock.Shape) (Model, *controller.Controller) {
	t.Helper()
	ctl := controller.New(planner.NewService(mock.NewClient(shape, nil), nil, ""), nil, mealcraft.UIConfig{})
	t.Cleanup(ctl.Close)
	return New(context.Background(), ctl, time.Millisecond), ctl
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestModel_Ingredients(t *testing.T) {
	m, ctl := newModel(t, mock.ShapeDirect)

	m = typeText(t, m, "paneer")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "spinach")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"paneer", "spinach"}, ctl.Ingredients())
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "paneer · spinach")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, []string{"paneer"}, ctl.Ingredients())
}

func TestModel_Toggles(t *testing.T) {
	m, ctl := newModel(t, mock.ShapeDirect)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, controller.ModeProtein, ctl.Mode())
	assert.Contains(t, m.View(), "Protein-Focused")

	assert.Contains(t, m.View(), "No plan yet")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, ctl.ShowSample())
	assert.Contains(t, m.View(), "Monday")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.True(t, ctl.ShoppingListOpen())
}

func TestModel_Generate(t *testing.T) {
	m, ctl := newModel(t, mock.ShapeFenced)

	cmd := m.generate()
	msg := cmd()
	require.IsType(t, generatedMsg{}, msg)
	assert.NoError(t, msg.(generatedMsg).err)

	m, _ = update(t, m, msg)
	assert.Equal(t, controller.Success, ctl.State())
	assert.Contains(t, m.View(), "Meal plan generated successfully!")
}

func TestModel_GenerateFailureShowsError(t *testing.T) {
	m, _ := newModel(t, mock.ShapeGarbage)

	m, _ = update(t, m, m.generate()())
	assert.Contains(t, m.View(), "Could not parse meal plan from response. Please try again.")
}

func TestModel_Quit(t *testing.T) {
	m, _ := newModel(t, mock.ShapeDirect)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
