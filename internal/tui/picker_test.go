package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickerSelects(t *testing.T) {
	p := NewPicker("Pick a project", newSelect(&fakeSearcher{}, func(c *SearchSelectConfig) { c.Required = true }))

	model, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = model.(Picker)
	require.True(t, p.sel.IsOpen())

	model, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = model.(Picker)
	require.NotNil(t, cmd)

	model, _ = p.Update(cmd())
	p = model.(Picker)
	picked, ok := p.Result()
	assert.True(t, ok)
	assert.Equal(t, "1", picked.ID)
	assert.Empty(t, p.View())
}

func TestPickerCancel(t *testing.T) {
	p := NewPicker("Pick", newSelect(&fakeSearcher{}, nil))
	model, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	p = model.(Picker)

	_, ok := p.Result()
	assert.False(t, ok)
	assert.False(t, p.sel.IsOpen())
}
