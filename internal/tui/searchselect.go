package tui

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/nvms/internal/api"
	"github.com/felixgeelhaar/nvms/internal/log"
)

// DefaultDebounce is the quiet period before a server search is issued.
const DefaultDebounce = 300 * time.Millisecond

// Searcher runs server-side searches and single-record lookups.
// *api.Client implements it.
type Searcher interface {
	Search(ctx context.Context, searchURL, query string) ([]api.Option, error)
	FetchOption(ctx context.Context, resourceURL, id string) (api.Option, error)
}

// SearchSelectConfig configures a SearchSelect.
type SearchSelectConfig struct {
	Options         []api.Option
	Value           string
	OnChange        func(id string)
	SearchURL       string
	ResourceURL     string // defaults to SearchURL
	OnSearchResults func(results []api.Option)
	Required        bool
	Disabled        bool
	Debounce        time.Duration
	Searcher        Searcher
	Placeholder     string
	Context         context.Context
	Logger          *log.Logger
}

var lastSelectID int64

// Messages. Each carries the owning select's id so several selects can share a
// program, and a sequence number so superseded work is dropped.

type searchTickMsg struct {
	id    int64
	seq   int
	query string
}

type searchResultMsg struct {
	id      int64
	seq     int
	query   string
	options []api.Option
	err     error
}

type hydrateResultMsg struct {
	id     int64
	value  string
	option api.Option
	err    error
}

// SelectedMsg is emitted when the user picks an option.
type SelectedMsg struct {
	ID    string
	Label string
}

// SearchSelect is a searchable single-choice select backed by a remote collection.
//
// Typing filters the local options first. Only when nothing matches is a server
// search scheduled, after a debounce, and only the response to the newest query
// is applied.
type SearchSelect struct {
	id     int64
	cfg    SearchSelectConfig
	ctx    context.Context
	logger *log.Logger
	styles Styles

	options   []api.Option
	value     string
	open      bool
	searching bool
	input     textinput.Model
	visible   []api.Option
	cursor    int
	seq       int

	// hydrated records values whose single-record fetch has been issued.
	hydrated map[string]bool
}

// NewSearchSelect builds a closed select.
func NewSearchSelect(cfg SearchSelectConfig) SearchSelect {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.ResourceURL == "" {
		cfg.ResourceURL = cfg.SearchURL
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = "Select..."
	}

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	input := textinput.New()
	input.Placeholder = "Type to search"
	input.Prompt = "> "
	input.Cursor.SetMode(cursor.CursorStatic)

	return SearchSelect{
		id:       atomic.AddInt64(&lastSelectID, 1),
		cfg:      cfg,
		ctx:      ctx,
		logger:   logger.WithGroup("select"),
		styles:   DefaultStyles(),
		options:  dedupe(nil, cfg.Options),
		value:    cfg.Value,
		input:    input,
		hydrated: make(map[string]bool),
	}
}

// Init starts hydration of the bound value when needed.
func (m SearchSelect) Init() tea.Cmd {
	return m.hydrateCmd()
}

// Value returns the bound id.
func (m SearchSelect) Value() string { return m.value }

// IsOpen reports whether the dropdown is open.
func (m SearchSelect) IsOpen() bool { return m.open }

// Searching reports whether a server search is pending.
func (m SearchSelect) Searching() bool { return m.searching }

// Query returns the current search text.
func (m SearchSelect) Query() string { return m.input.Value() }

// Options returns the option list, including hydrated and merged results.
func (m SearchSelect) Options() []api.Option { return m.options }

// Visible returns the options currently listed in the dropdown.
func (m SearchSelect) Visible() []api.Option { return m.visible }

// SetValue rebinds the select. A value not present in the options is
// hydrated at most once.
func (m SearchSelect) SetValue(value string) (SearchSelect, tea.Cmd) {
	m.value = value
	return m, m.hydrateCmd()
}

// SetOptions replaces the seed options.
func (m SearchSelect) SetOptions(options []api.Option) (SearchSelect, tea.Cmd) {
	m.options = dedupe(nil, options)
	if m.open {
		m = m.applyQuery()
	}
	return m, m.hydrateCmd()
}

// Blur closes the dropdown and clears the query; the value is unchanged.
func (m SearchSelect) Blur() SearchSelect {
	return m.close()
}

// Update handles messages
func (m SearchSelect) Update(msg tea.Msg) (SearchSelect, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case searchTickMsg:
		if msg.id != m.id || msg.seq != m.seq || !m.searching {
			return m, nil
		}
		return m, m.searchCmd(msg.seq, msg.query)

	case searchResultMsg:
		if msg.id != m.id || msg.seq != m.seq {
			return m, nil
		}
		m.searching = false
		m.cursor = 0
		if msg.err != nil {
			m.logger.Warn("search failed", "query", msg.query, "error", msg.err.Error())
			m.visible = nil
			return m, nil
		}
		m.visible = msg.options
		m.options = dedupe(m.options, msg.options)
		if m.cfg.OnSearchResults != nil {
			m.cfg.OnSearchResults(msg.options)
		}
		return m, nil

	case hydrateResultMsg:
		if msg.id != m.id {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("failed to load selected option", "value", msg.value, "error", msg.err.Error())
			return m, nil
		}
		m.options = dedupe(m.options, []api.Option{msg.option})
		if m.open && m.input.Value() == "" {
			m.visible = m.allOptions()
		}
		return m, nil
	}

	return m, nil
}

func (m SearchSelect) handleKeyPress(msg tea.KeyMsg) (SearchSelect, tea.Cmd) {
	if !m.open {
		switch msg.String() {
		case "enter", " ":
			if m.cfg.Disabled {
				return m, nil
			}
			m.open = true
			m.input.Focus()
			m.visible = m.allOptions()
			m.cursor = m.indexOf(m.value)
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m.close(), nil

	case "enter":
		if m.cursor < 0 || m.cursor >= len(m.visible) {
			return m, nil
		}
		picked := m.visible[m.cursor]
		m.value = picked.ID
		if m.cfg.OnChange != nil {
			m.cfg.OnChange(picked.ID)
		}
		m = m.close()
		return m, func() tea.Msg { return SelectedMsg{ID: picked.ID, Label: picked.Label} }

	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
		return m, nil
	}

	before := m.input.Value()
	m.input, _ = m.input.Update(msg)
	if m.input.Value() == before {
		return m, nil
	}
	return m.queryChanged()
}

// queryChanged applies the empty / local / remote rules for the new query.
func (m SearchSelect) queryChanged() (SearchSelect, tea.Cmd) {
	// Any pending timer or in-flight search is superseded.
	m.seq++
	m.searching = false
	m.cursor = 0

	query := m.input.Value()
	if strings.TrimSpace(query) == "" {
		m.visible = m.allOptions()
		return m, nil
	}

	if local := m.localMatches(query); len(local) > 0 {
		m.visible = local
		return m, nil
	}

	if m.cfg.Searcher == nil || m.cfg.SearchURL == "" {
		m.visible = nil
		return m, nil
	}

	m.searching = true
	id, seq := m.id, m.seq
	return m, tea.Tick(m.cfg.Debounce, func(time.Time) tea.Msg {
		return searchTickMsg{id: id, seq: seq, query: query}
	})
}

func (m SearchSelect) applyQuery() SearchSelect {
	query := m.input.Value()
	if query == "" {
		m.visible = m.allOptions()
	} else if local := m.localMatches(query); len(local) > 0 {
		m.visible = local
	}
	return m
}

func (m SearchSelect) searchCmd(seq int, query string) tea.Cmd {
	searcher, ctx, url, id := m.cfg.Searcher, m.ctx, m.cfg.SearchURL, m.id
	return func() tea.Msg {
		options, err := searcher.Search(ctx, url, query)
		return searchResultMsg{id: id, seq: seq, query: query, options: options, err: err}
	}
}

// hydrateCmd fetches the bound value's record when it is set, missing from the
// options, and has not been requested before.
func (m SearchSelect) hydrateCmd() tea.Cmd {
	value := m.value
	if value == "" || m.indexIn(m.options, value) >= 0 || m.hydrated[value] {
		return nil
	}
	if m.cfg.Searcher == nil || m.cfg.ResourceURL == "" {
		return nil
	}
	m.hydrated[value] = true

	searcher, ctx, url, id := m.cfg.Searcher, m.ctx, m.cfg.ResourceURL, m.id
	return func() tea.Msg {
		option, err := searcher.FetchOption(ctx, url, value)
		return hydrateResultMsg{id: id, value: value, option: option, err: err}
	}
}

func (m SearchSelect) close() SearchSelect {
	m.open = false
	m.searching = false
	m.seq++
	m.input.Reset()
	m.input.Blur()
	m.visible = nil
	m.cursor = 0
	return m
}

// allOptions is the full list, led by an empty choice unless required.
func (m SearchSelect) allOptions() []api.Option {
	out := make([]api.Option, 0, len(m.options)+1)
	if !m.cfg.Required {
		out = append(out, api.Option{ID: "", Label: "(none)"})
	}
	return append(out, m.options...)
}

func (m SearchSelect) localMatches(query string) []api.Option {
	needle := strings.ToLower(query)
	var out []api.Option
	for _, opt := range m.options {
		if strings.Contains(strings.ToLower(opt.Label), needle) {
			out = append(out, opt)
		}
	}
	return out
}

func (m SearchSelect) indexOf(value string) int {
	if i := m.indexIn(m.visible, value); i >= 0 {
		return i
	}
	return 0
}

func (m SearchSelect) indexIn(options []api.Option, value string) int {
	for i, opt := range options {
		if opt.ID == value {
			return i
		}
	}
	return -1
}

// Label returns the label shown on the trigger.
func (m SearchSelect) Label() string {
	if m.value == "" {
		return ""
	}
	if i := m.indexIn(m.options, m.value); i >= 0 {
		return m.options[i].Label
	}
	return m.value
}

// View renders the trigger and, when open, the dropdown.
func (m SearchSelect) View() string {
	label := m.Label()
	if label == "" {
		label = m.styles.Muted.Render(m.cfg.Placeholder)
	}
	trigger := m.styles.Trigger.Render(label + " ▾")
	if m.cfg.Disabled {
		trigger = m.styles.Muted.Render(label + " (disabled)")
	}
	if !m.open {
		return trigger
	}

	var b strings.Builder
	b.WriteString(trigger)
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.searching:
		b.WriteString(m.styles.Status.Render("Searching..."))
	case len(m.visible) == 0:
		b.WriteString(m.styles.Muted.Render("No results found"))
	default:
		for i, opt := range m.visible {
			line := "  " + opt.Label
			if i == m.cursor {
				line = m.styles.Highlighted.Render("> " + opt.Label)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(m.styles.renderHelp("↑/↓", "move", "enter", "select", "esc", "close"))
	return b.String()
}

// dedupe appends additions to base, skipping ids already present.
func dedupe(base, additions []api.Option) []api.Option {
	seen := make(map[string]bool, len(base)+len(additions))
	out := make([]api.Option, 0, len(base)+len(additions))
	for _, opt := range base {
		if !seen[opt.ID] {
			seen[opt.ID] = true
			out = append(out, opt)
		}
	}
	for _, opt := range additions {
		if !seen[opt.ID] {
			seen[opt.ID] = true
			out = append(out, opt)
		}
	}
	return out
}
