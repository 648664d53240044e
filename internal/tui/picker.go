package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Picker is a full-screen program around a single SearchSelect. It opens
// immediately and quits once an option is picked or the user cancels.
type Picker struct {
	title    string
	sel      SearchSelect
	styles   Styles
	picked   *SelectedMsg
	canceled bool
}

// NewPicker wraps sel.
func NewPicker(title string, sel SearchSelect) Picker {
	return Picker{title: title, sel: sel, styles: DefaultStyles()}
}

// Init opens the select and starts hydration of its value.
func (p Picker) Init() tea.Cmd {
	return tea.Batch(p.sel.Init(), func() tea.Msg { return tea.KeyMsg{Type: tea.KeyEnter} })
}

// Update handles messages
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			p.canceled = true
			return p, tea.Quit
		case "esc":
			p.sel = p.sel.Blur()
			p.canceled = true
			return p, tea.Quit
		}

	case SelectedMsg:
		p.picked = &msg
		return p, tea.Quit
	}

	var cmd tea.Cmd
	p.sel, cmd = p.sel.Update(msg)
	return p, cmd
}

// View renders the picker
func (p Picker) View() string {
	if p.picked != nil || p.canceled {
		return ""
	}
	return p.styles.Title.Render(p.title) + "\n" + p.sel.View() + "\n"
}

// Result returns the picked option, or false when the user canceled.
func (p Picker) Result() (SelectedMsg, bool) {
	if p.picked == nil {
		return SelectedMsg{}, false
	}
	return *p.picked, true
}

// Run runs model as a full-screen program bound to ctx and returns the final model.
func Run(ctx context.Context, model tea.Model) (tea.Model, error) {
	final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}
	return final, nil
}
