package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nvms/internal/listview"
	"github.com/felixgeelhaar/nvms/internal/log"
)

type task struct {
	Title  string
	Status string
}

func (t task) Field(name string) any {
	switch name {
	case "title":
		return t.Title
	case "status":
		return t.Status
	}
	return nil
}

func newTaskView(load func(context.Context) ([]task, error), del func(context.Context, task) error) ListView[task] {
	return NewListView(ListViewConfig[task]{
		Title:      "Tasks",
		Columns:    []Column{{Field: "title", Title: "Title"}, {Field: "status", Title: "Status"}},
		Field:      listview.FieldOf[task],
		Comparator: listview.DefaultComparator(),
		Load:       load,
		Delete:     del,
		Logger:     log.Discard(),
	})
}

func tasks() []task {
	return []task{
		{Title: "b", Status: "completed"},
		{Title: "a", Status: "planning"},
		{Title: "c", Status: "review"},
	}
}

func loaded(t *testing.T, m ListView[task], items []task, err error) ListView[task] {
	t.Helper()
	updated, _ := m.Update(listLoadedMsg[task]{seq: m.loadSeq, items: items, err: err})
	return updated.(ListView[task])
}

func press(t *testing.T, m ListView[task], k string) (ListView[task], tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	return updated.(ListView[task]), cmd
}

func titles(items []task) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestListViewLoadAndSort(t *testing.T) {
	m := newTaskView(func(context.Context) ([]task, error) { return tasks(), nil }, nil)
	assert.True(t, m.Loading())
	assert.Contains(t, m.View(), "Loading...")

	m = loaded(t, m, tasks(), nil)
	assert.False(t, m.Loading())
	assert.Equal(t, []string{"b", "a", "c"}, titles(m.Items()), "unsorted until a column is chosen")

	m, _ = press(t, m, "2")
	assert.Equal(t, listview.SortState{Field: "status", Direction: listview.Asc}, m.SortState())
	assert.Equal(t, []string{"a", "c", "b"}, titles(m.Items()))

	m, _ = press(t, m, "2")
	assert.Equal(t, listview.Desc, m.SortState().Direction)
	assert.Equal(t, []string{"b", "c", "a"}, titles(m.Items()))

	m, _ = press(t, m, "1")
	assert.Equal(t, []string{"a", "b", "c"}, titles(m.Items()))

	m, _ = press(t, m, "9")
	assert.Equal(t, "title", m.SortState().Field, "out of range column ignored")

	m, _ = press(t, m, "s")
	assert.Equal(t, "status", m.SortState().Field)
}

func TestListViewLoadError(t *testing.T) {
	m := newTaskView(func(context.Context) ([]task, error) { return nil, nil }, nil)
	m = loaded(t, m, nil, fmt.Errorf("backend unavailable"))

	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "backend unavailable")
}

func TestListViewDropsStaleLoads(t *testing.T) {
	m := newTaskView(func(context.Context) ([]task, error) { return tasks(), nil }, nil)
	m = loaded(t, m, tasks(), nil)

	m, cmd := press(t, m, "r")
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())

	updated, _ := m.Update(listLoadedMsg[task]{seq: m.loadSeq - 1, items: nil})
	m = updated.(ListView[task])
	assert.True(t, m.Loading())
	assert.Len(t, m.Items(), 3)
}

func TestListViewDeleteGuardsDuplicateSubmission(t *testing.T) {
	var deleted []string
	del := func(_ context.Context, item task) error {
		deleted = append(deleted, item.Title)
		return nil
	}
	m := newTaskView(func(context.Context) ([]task, error) { return tasks(), nil }, del)
	m = loaded(t, m, tasks(), nil)

	m, cmd := press(t, m, "d")
	require.NotNil(t, cmd)
	assert.True(t, m.Mutating())

	m, second := press(t, m, "d")
	assert.Nil(t, second, "no second delete while one is in flight")

	updated, reload := m.Update(mutationDoneMsg{})
	m = updated.(ListView[task])
	assert.False(t, m.Mutating())
	assert.True(t, m.Loading(), "list reloads after a mutation")
	require.NotNil(t, reload)
}

func TestListViewMutationError(t *testing.T) {
	m := newTaskView(func(context.Context) ([]task, error) { return tasks(), nil }, func(context.Context, task) error { return nil })
	m = loaded(t, m, tasks(), nil)
	m, _ = press(t, m, "d")

	updated, _ := m.Update(mutationDoneMsg{err: fmt.Errorf("permission denied")})
	m = updated.(ListView[task])
	assert.False(t, m.Mutating())
	assert.False(t, m.Loading())
	assert.Contains(t, m.View(), "permission denied")
}

func TestListViewDeleteWithoutHandler(t *testing.T) {
	m := newTaskView(func(context.Context) ([]task, error) { return tasks(), nil }, nil)
	m = loaded(t, m, tasks(), nil)
	m, cmd := press(t, m, "d")
	assert.Nil(t, cmd)
	assert.False(t, m.Mutating())
}

func TestFormatValue(t *testing.T) {
	s := "x"
	f := 12.5
	d := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
	var nilString *string

	assert.Equal(t, "-", FormatValue(nil))
	assert.Equal(t, "-", FormatValue(nilString))
	assert.Equal(t, "x", FormatValue(&s))
	assert.Equal(t, "12.5", FormatValue(&f))
	assert.Equal(t, "2025-02-03", FormatValue(d))
	assert.Equal(t, "7", FormatValue(7))

	n := 40
	var nilInt *int
	assert.Equal(t, "40", FormatValue(&n))
	assert.Equal(t, "-", FormatValue(nilInt))
}
