package tui

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/nvms/internal/listview"
	"github.com/felixgeelhaar/nvms/internal/log"
)

// Column is one sortable table column.
type Column struct {
	Field string
	Title string
	Width int
}

// ListViewConfig configures a ListView.
type ListViewConfig[T any] struct {
	Title      string
	Columns    []Column
	Field      listview.FieldFunc[T]
	Comparator listview.Comparator
	Sort       listview.SortState
	Load       func(ctx context.Context) ([]T, error)
	// Delete is optional; without it the d key does nothing.
	Delete  func(ctx context.Context, item T) error
	Context context.Context
	Logger  *log.Logger
	Height  int
}

type listLoadedMsg[T any] struct {
	seq   int
	items []T
	err   error
}

type mutationDoneMsg struct {
	err error
}

// ListView is a sortable table screen over an already-fetched collection.
type ListView[T any] struct {
	cfg    ListViewConfig[T]
	ctx    context.Context
	logger *log.Logger
	styles Styles

	table   table.Model
	spinner spinner.Model

	items    []T
	sorted   []T
	sort     listview.SortState
	loading  bool
	mutating bool
	loadSeq  int
	err      error
	quitting bool
}

// NewListView builds a list screen. Call Init to start the first load.
func NewListView[T any](cfg ListViewConfig[T]) ListView[T] {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	if cfg.Height == 0 {
		cfg.Height = 15
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := ListView[T]{
		cfg:     cfg,
		ctx:     ctx,
		logger:  logger.WithGroup("listview"),
		styles:  DefaultStyles(),
		spinner: sp,
		sort:    cfg.Sort,
		loading: true,
	}
	m.table = table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(cfg.Height),
	)
	return m
}

// Init starts the spinner and the first load.
func (m ListView[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd(m.loadSeq))
}

// Items returns the records in display order.
func (m ListView[T]) Items() []T { return m.sorted }

// SortState returns the active sort.
func (m ListView[T]) SortState() listview.SortState { return m.sort }

// Loading reports whether a load is outstanding.
func (m ListView[T]) Loading() bool { return m.loading }

// Mutating reports whether a delete is outstanding.
func (m ListView[T]) Mutating() bool { return m.mutating }

// Err returns the last load or mutation error.
func (m ListView[T]) Err() error { return m.err }

// Update handles messages
func (m ListView[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case listLoadedMsg[T]:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.logger.LogError("failed to load list", msg.err)
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.items = msg.items
		m.resort()
		return m, nil

	case mutationDoneMsg:
		m.mutating = false
		if msg.err != nil {
			m.logger.LogError("mutation failed", msg.err)
			m.err = msg.err
			return m, nil
		}
		return m.reload()

	case spinner.TickMsg:
		if !m.loading && !m.mutating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ListView[T]) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "r":
		if m.loading {
			return m, nil
		}
		return m.reload()

	case "d":
		if m.cfg.Delete == nil || m.mutating || m.loading {
			return m, nil
		}
		row := m.table.Cursor()
		if row < 0 || row >= len(m.sorted) {
			return m, nil
		}
		m.mutating = true
		item, del, ctx := m.sorted[row], m.cfg.Delete, m.ctx
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return mutationDoneMsg{err: del(ctx, item)}
		})

	case "s":
		if len(m.cfg.Columns) == 0 {
			return m, nil
		}
		next := 0
		for i, col := range m.cfg.Columns {
			if col.Field == m.sort.Field {
				next = (i + 1) % len(m.cfg.Columns)
			}
		}
		m.sort = listview.SortState{Field: m.cfg.Columns[next].Field, Direction: listview.Asc}
		m.resort()
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx, _ := strconv.Atoi(key)
		if idx > len(m.cfg.Columns) {
			return m, nil
		}
		m.sort = m.sort.Toggle(m.cfg.Columns[idx-1].Field)
		m.resort()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ListView[T]) reload() (ListView[T], tea.Cmd) {
	m.loadSeq++
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, m.loadCmd(m.loadSeq))
}

func (m ListView[T]) loadCmd(seq int) tea.Cmd {
	load, ctx := m.cfg.Load, m.ctx
	return func() tea.Msg {
		items, err := load(ctx)
		return listLoadedMsg[T]{seq: seq, items: items, err: err}
	}
}

func (m *ListView[T]) resort() {
	m.sorted = listview.Sort(m.items, m.sort, m.cfg.Field, m.cfg.Comparator)
	m.table.SetColumns(m.columns())
	rows := make([]table.Row, 0, len(m.sorted))
	for _, item := range m.sorted {
		row := make(table.Row, 0, len(m.cfg.Columns))
		for _, col := range m.cfg.Columns {
			row = append(row, FormatValue(m.cfg.Field(item, col.Field)))
		}
		rows = append(rows, row)
	}
	m.table.SetRows(rows)
}

func (m ListView[T]) columns() []table.Column {
	cols := make([]table.Column, 0, len(m.cfg.Columns))
	for i, col := range m.cfg.Columns {
		title := fmt.Sprintf("%d %s", i+1, col.Title)
		if col.Field == m.sort.Field {
			if m.sort.Direction == listview.Desc {
				title += " ↓"
			} else {
				title += " ↑"
			}
		}
		width := col.Width
		if width == 0 {
			width = len(title) + 4
		}
		cols = append(cols, table.Column{Title: title, Width: width})
	}
	return cols
}

// View renders the screen.
func (m ListView[T]) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.cfg.Title != "" {
		b.WriteString(m.styles.Title.Render(m.cfg.Title))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(m.styles.ErrorBanner.Render(m.err.Error()))
		b.WriteString("\n")
	}

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Loading...")
		b.WriteString("\n")
	case m.mutating:
		b.WriteString(m.spinner.View() + " Saving...")
		b.WriteString("\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	pairs := []string{"1-9", "sort", "s", "next column", "r", "reload"}
	if m.cfg.Delete != nil {
		pairs = append(pairs, "d", "delete")
	}
	pairs = append(pairs, "q", "quit")
	b.WriteString(m.styles.renderHelp(pairs...))
	return b.String()
}

// FormatValue renders a field value for a table cell. Nil values and nil
// pointers render as "-".
func FormatValue(v any) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "-"
		}
		v = rv.Elem().Interface()
	}
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.DateOnly)
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}
