// Package tui is the interactive terminal front end of the planner.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mealcraft/controller"
	"mealcraft/render"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	// headerHeight is the space taken by everything above the plan viewport.
	headerHeight = 9
)

type keyMap struct {
	Add          key.Binding
	RemoveLast   key.Binding
	Generate     key.Binding
	Mode         key.Binding
	Sample       key.Binding
	ShoppingList key.Binding
	Copy         key.Binding
	Quit         key.Binding
}

var keys = keyMap{
	Add:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add ingredient")),
	RemoveLast:   key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "remove last")),
	Generate:     key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "generate")),
	Mode:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "mode")),
	Sample:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "sample")),
	ShoppingList: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "shopping list")),
	Copy:         key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy list")),
	Quit:         key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

type generatedMsg struct{ err error }

type copiedMsg struct{ ok bool }

// copiedExpiredMsg redraws once the copied badge has reset.
type copiedExpiredMsg struct{}

type Model struct {
	ctx         context.Context
	ctl         *controller.Controller
	copiedDelay time.Duration

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	ready    bool
}

// New returns the TUI model. copiedDelay should match the controller's
// reset delay so the badge disappears on time.
func New(ctx context.Context, ctl *controller.Controller, copiedDelay time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "Add an ingredient (e.g. paneer) and press enter"
	ti.CharLimit = 64
	ti.Width = 48
	ti.Focus()

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(render.ColorPrimary)),
	)

	return Model{
		ctx:         ctx,
		ctl:         ctl,
		copiedDelay: copiedDelay,
		input:       ti,
		spinner:     s,
		viewport:    viewport.New(defaultWidth, defaultHeight-headerHeight),
		width:       defaultWidth,
	}
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, ctl *controller.Controller, copiedDelay time.Duration) error {
	_, err := tea.NewProgram(New(ctx, ctl, copiedDelay), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight, 3)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Generate):
			if !m.ctl.CanGenerate() {
				return m, nil
			}
			return m, tea.Batch(m.spinner.Tick, m.generate())

		case key.Matches(msg, keys.Mode):
			m.ctl.ToggleMode()
			return m, nil

		case key.Matches(msg, keys.Sample):
			m.ctl.ToggleSample()
			m.refresh()
			return m, nil

		case key.Matches(msg, keys.ShoppingList):
			m.ctl.ToggleShoppingList()
			m.refresh()
			return m, nil

		case key.Matches(msg, keys.Copy):
			return m, m.copy()

		case key.Matches(msg, keys.Add):
			if m.ctl.AddIngredient(m.input.Value()) {
				m.input.Reset()
			}
			return m, nil

		case key.Matches(msg, keys.RemoveLast) && m.input.Value() == "":
			if ings := m.ctl.Ingredients(); len(ings) > 0 {
				m.ctl.RemoveIngredient(ings[len(ings)-1])
			}
			return m, nil

		case msg.String() == "pgup" || msg.String() == "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case generatedMsg:
		m.refresh()
		m.viewport.GotoTop()
		return m, nil

	case copiedMsg:
		if !msg.ok {
			return m, nil
		}
		return m, tea.Tick(m.copiedDelay+50*time.Millisecond, func(time.Time) tea.Msg { return copiedExpiredMsg{} })

	case copiedExpiredMsg:
		return m, nil

	case spinner.TickMsg:
		// Stop ticking once the request is over.
		if m.ctl.State() != controller.Requesting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) generate() tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		return generatedMsg{err: ctl.Generate(ctx)}
	}
}

func (m Model) copy() tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		return copiedMsg{ok: ctl.CopyShoppingList(ctx)}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(render.Plan(m.ctl.Display(), render.Options{ShowShoppingList: m.ctl.ShoppingListOpen()}))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(render.TitleStyle.Render("MealCraft India"))
	b.WriteString(render.MutedStyle.Render("  6-day vegetarian/eggetarian planner"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Mode: %s\n", render.HeadingStyle.Render(m.ctl.Mode().Label()))

	ings := m.ctl.Ingredients()
	if len(ings) == 0 {
		b.WriteString(render.MutedStyle.Render("Ingredients: none"))
	} else {
		b.WriteString("Ingredients: " + strings.Join(ings, " · "))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.ctl.State() == controller.Requesting:
		b.WriteString(m.spinner.View() + " " + m.ctl.LoadingMessage())
	case m.ctl.Error() != "":
		b.WriteString(render.ErrorStyle.Render(m.ctl.Error()))
	case m.ctl.Copied():
		b.WriteString(render.StatusStyle.Render("Shopping list copied!"))
	case m.ctl.Status() != "":
		b.WriteString(render.StatusStyle.Render(m.ctl.Status()))
	}
	b.WriteString("\n")
	b.WriteString(helpLine())
	b.WriteString("\n\n")

	if m.ctl.Display() == nil {
		b.WriteString(render.MutedStyle.Render("No plan yet. Press ctrl+g to generate or ctrl+s to preview the sample."))
		return b.String()
	}
	b.WriteString(m.viewport.View())
	return b.String()
}

func helpLine() string {
	bindings := []key.Binding{keys.Add, keys.Generate, keys.Mode, keys.Sample, keys.ShoppingList, keys.Copy, keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return render.MutedStyle.Render(strings.Join(parts, " · "))
}
