package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nvms/internal/api"
	"github.com/felixgeelhaar/nvms/internal/log"
)

type fakeSearcher struct {
	mu          sync.Mutex
	queries     []string
	fetches     []string
	results     map[string][]api.Option
	searchErr   error
	fetchLabels map[string]string
}

func (f *fakeSearcher) Search(ctx context.Context, searchURL, query string) ([]api.Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results[query], nil
}

func (f *fakeSearcher) FetchOption(ctx context.Context, resourceURL, id string) (api.Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, id)
	label, ok := f.fetchLabels[id]
	if !ok {
		return api.Option{}, fmt.Errorf("not found")
	}
	return api.Option{ID: id, Label: label}, nil
}

func seedOptions() []api.Option {
	return []api.Option{{ID: "1", Label: "Apollo"}, {ID: "2", Label: "Gemini"}}
}

func newSelect(searcher *fakeSearcher, mutate func(*SearchSelectConfig)) SearchSelect {
	cfg := SearchSelectConfig{
		Options:   seedOptions(),
		SearchURL: "projects/",
		Searcher:  searcher,
		Logger:    log.Discard(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewSearchSelect(cfg)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func openSelect(t *testing.T, m SearchSelect) SearchSelect {
	t.Helper()
	m, _ = m.Update(key("enter"))
	require.True(t, m.IsOpen())
	return m
}

func typeText(m SearchSelect, text string) (SearchSelect, []tea.Cmd) {
	var cmds []tea.Cmd
	for _, r := range text {
		var cmd tea.Cmd
		m, cmd = m.Update(key(string(r)))
		cmds = append(cmds, cmd)
	}
	return m, cmds
}

func TestSearchSelectOpenClose(t *testing.T) {
	m := newSelect(&fakeSearcher{}, nil)
	assert.False(t, m.IsOpen())

	m = openSelect(t, m)
	assert.Equal(t, []api.Option{{ID: "", Label: "(none)"}, {ID: "1", Label: "Apollo"}, {ID: "2", Label: "Gemini"}}, m.Visible())

	m, _ = typeText(m, "ap")
	m, _ = m.Update(key("esc"))
	assert.False(t, m.IsOpen())
	assert.Empty(t, m.Query())
	assert.Empty(t, m.Value())
}

func TestSearchSelectDisabled(t *testing.T) {
	m := newSelect(&fakeSearcher{}, func(c *SearchSelectConfig) { c.Disabled = true })
	m, _ = m.Update(key("enter"))
	assert.False(t, m.IsOpen())
	m, _ = m.Update(key(" "))
	assert.False(t, m.IsOpen())
}

func TestSearchSelectRequiredHasNoEmptyOption(t *testing.T) {
	m := newSelect(&fakeSearcher{}, func(c *SearchSelectConfig) { c.Required = true })
	m = openSelect(t, m)
	assert.Equal(t, seedOptions(), m.Visible())
}

func TestSearchSelectPick(t *testing.T) {
	var changed []string
	m := newSelect(&fakeSearcher{}, func(c *SearchSelectConfig) {
		c.Required = true
		c.OnChange = func(id string) { changed = append(changed, id) }
	})
	m = openSelect(t, m)
	m, _ = typeText(m, "gem")
	require.Equal(t, []api.Option{{ID: "2", Label: "Gemini"}}, m.Visible())

	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedMsg{ID: "2", Label: "Gemini"}, cmd())
	assert.Equal(t, []string{"2"}, changed)
	assert.Equal(t, "2", m.Value())
	assert.Equal(t, "Gemini", m.Label())
	assert.False(t, m.IsOpen())
	assert.Empty(t, m.Query())
}

func TestSearchSelectBlurKeepsValue(t *testing.T) {
	m := newSelect(&fakeSearcher{}, func(c *SearchSelectConfig) { c.Value = "1" })
	m = openSelect(t, m)
	m, _ = typeText(m, "gem")
	m = m.Blur()
	assert.False(t, m.IsOpen())
	assert.Empty(t, m.Query())
	assert.Equal(t, "1", m.Value())
}

func TestSearchSelectEmptyQueryResets(t *testing.T) {
	searcher := &fakeSearcher{}
	m := newSelect(searcher, nil)
	m = openSelect(t, m)

	m, _ = typeText(m, "a")
	m, cmd := m.Update(key("backspace"))
	assert.Nil(t, cmd)
	assert.Len(t, m.Visible(), 3)
	assert.Empty(t, searcher.queries)
}

func TestSearchSelectLocalMatchSkipsNetwork(t *testing.T) {
	searcher := &fakeSearcher{}
	m := newSelect(searcher, nil)
	m = openSelect(t, m)

	m, cmds := typeText(m, "APO")
	for _, cmd := range cmds {
		assert.Nil(t, cmd, "no search scheduled while local options match")
	}
	assert.False(t, m.Searching())
	assert.Equal(t, []api.Option{{ID: "1", Label: "Apollo"}}, m.Visible())
	assert.Empty(t, searcher.queries)
}

func TestSearchSelectDebouncedSearch(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]api.Option{
		"zz": {{ID: "9", Label: "Zzyzx"}},
	}}
	var notified [][]api.Option
	m := newSelect(searcher, func(c *SearchSelectConfig) {
		c.OnSearchResults = func(r []api.Option) { notified = append(notified, r) }
	})
	m = openSelect(t, m)

	m, cmds := typeText(m, "zz")
	require.NotNil(t, cmds[1])
	assert.True(t, m.Searching())
	assert.Contains(t, m.View(), "Searching...")

	m, cmd := m.Update(searchTickMsg{id: m.id, seq: m.seq, query: "zz"})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.False(t, m.Searching())
	assert.Equal(t, []string{"zz"}, searcher.queries)
	assert.Equal(t, []api.Option{{ID: "9", Label: "Zzyzx"}}, m.Visible())
	assert.Equal(t, [][]api.Option{{{ID: "9", Label: "Zzyzx"}}}, notified)
	assert.Contains(t, m.Options(), api.Option{ID: "9", Label: "Zzyzx"}, "results are merged for later local filtering")
}

func TestSearchSelectAppliesOnlyLatestQuery(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]api.Option{
		"x":  {{ID: "10", Label: "x-result"}},
		"xy": {{ID: "11", Label: "xy-result"}},
	}}
	m := newSelect(searcher, nil)
	m = openSelect(t, m)

	m, _ = typeText(m, "x")
	firstSeq := m.seq
	m, _ = typeText(m, "y")
	latestSeq := m.seq
	require.NotEqual(t, firstSeq, latestSeq)

	// The superseded timer fires: nothing is issued.
	m, cmd := m.Update(searchTickMsg{id: m.id, seq: firstSeq, query: "x"})
	assert.Nil(t, cmd)

	// The latest timer fires and its response lands.
	m, cmd = m.Update(searchTickMsg{id: m.id, seq: latestSeq, query: "xy"})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.Equal(t, []api.Option{{ID: "11", Label: "xy-result"}}, m.Visible())

	// A late response for the older query is dropped.
	m, _ = m.Update(searchResultMsg{id: m.id, seq: firstSeq, query: "x", options: searcher.results["x"]})
	assert.Equal(t, []api.Option{{ID: "11", Label: "xy-result"}}, m.Visible())
	assert.Equal(t, []string{"xy"}, searcher.queries)
}

func TestSearchSelectIgnoresOtherInstances(t *testing.T) {
	m := newSelect(&fakeSearcher{}, nil)
	other := newSelect(&fakeSearcher{}, nil)
	m = openSelect(t, m)
	m, _ = typeText(m, "q")

	m, cmd := m.Update(searchTickMsg{id: other.id, seq: m.seq, query: "q"})
	assert.Nil(t, cmd)
	assert.True(t, m.Searching())
}

func TestSearchSelectSearchFailure(t *testing.T) {
	searcher := &fakeSearcher{searchErr: fmt.Errorf("boom")}
	m := newSelect(searcher, nil)
	m = openSelect(t, m)
	m, _ = typeText(m, "q")

	m, cmd := m.Update(searchTickMsg{id: m.id, seq: m.seq, query: "q"})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Empty(t, m.Visible())
	assert.False(t, m.Searching())
	assert.Contains(t, m.View(), "No results found")
	assert.Len(t, searcher.queries, 1)
}

func TestSearchSelectHydratesOnce(t *testing.T) {
	searcher := &fakeSearcher{fetchLabels: map[string]string{"42": "Restored project"}}
	m := newSelect(searcher, func(c *SearchSelectConfig) { c.Value = "42" })
	assert.Equal(t, "42", m.Label(), "raw id until hydrated")

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()

	// Further renders and re-inits before the response lands do not refetch.
	assert.Nil(t, m.Init())
	_ = m.View()

	m, _ = m.Update(msg)
	assert.Equal(t, "Restored project", m.Label())

	// The same result delivered twice does not duplicate the option.
	m, _ = m.Update(msg)
	count := 0
	for _, opt := range m.Options() {
		if opt.ID == "42" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	m, cmd = m.SetValue("42")
	assert.Nil(t, cmd)
	assert.Nil(t, m.Init())
	assert.Equal(t, []string{"42"}, searcher.fetches)
}

func TestSearchSelectHydrationPerValue(t *testing.T) {
	searcher := &fakeSearcher{fetchLabels: map[string]string{"42": "A", "43": "B"}}
	m := newSelect(searcher, func(c *SearchSelectConfig) { c.Value = "42" })

	m, _ = m.Update(m.Init()())
	m, cmd := m.SetValue("43")
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	m, cmd = m.SetValue("1")
	assert.Nil(t, cmd, "present options are never fetched")
	assert.Equal(t, []string{"42", "43"}, searcher.fetches)
	assert.Equal(t, "Apollo", m.Label())
}

func TestSearchSelectHydrationFailureIsNotRetried(t *testing.T) {
	searcher := &fakeSearcher{}
	m := newSelect(searcher, func(c *SearchSelectConfig) { c.Value = "404" })

	m, _ = m.Update(m.Init()())
	assert.Nil(t, m.Init())
	assert.Equal(t, "404", m.Label())
	assert.Equal(t, []string{"404"}, searcher.fetches)
}
