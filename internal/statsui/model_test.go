package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keydyn/internal/model"
	"github.com/verte-zerg/keydyn/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "keydyn.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func seedRun(t *testing.T, st *store.Store) string {
	t.Helper()
	id, err := st.InsertRun(context.Background(), model.RunInfo{
		Bounds:    model.Bounds{MinMs: 30, MaxMs: 3000},
		Requested: 2,
		Processed: 2,
	}, []model.ParticipantResult{
		{
			ParticipantID: 1,
			Bigrams:       []model.BigramRecord{{Bigram: "th", IntervalMs: 100}, {Bigram: "he", IntervalMs: 120}},
			Words:         []model.WordRecord{{Word: "the", DurationMs: 220}},
			Sentences:     []model.SentenceRecord{{Text: "the", DurationMs: 220}},
		},
		{
			ParticipantID: 2,
			Bigrams:       []model.BigramRecord{{Bigram: "th", IntervalMs: 80}},
		},
	})
	require.NoError(t, err)
	return id
}

func resize(m *Model) {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
}

func TestModelOverview(t *testing.T) {
	st := openStore(t)
	id := seedRun(t, st)

	m := NewModel(st, "")
	resize(m)
	assert.Equal(t, id, m.Report().Run.ID)

	view := m.View()
	for _, want := range []string{"Overview", "Bigrams", "Participants", "2/2", "Bigram intervals", id} {
		assert.Contains(t, view, want)
	}
	assert.Len(t, strings.Split(view, "\n"), 30)
}

func TestModelTabsShowTokenTables(t *testing.T) {
	st := openStore(t)
	seedRun(t, st)

	m := NewModel(st, "")
	resize(m)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabBigrams, m.activeTab)
	view := m.View()
	assert.Contains(t, view, "Bigram")
	assert.Contains(t, view, "th")
	assert.Contains(t, view, "90.0")

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, tabSentences, m.activeTab)
	assert.Contains(t, m.View(), "220.0")
}

func TestModelQuit(t *testing.T) {
	st := openStore(t)
	m := NewModel(st, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestModelEmptyStore(t *testing.T) {
	st := openStore(t)
	m := NewModel(st, "")
	resize(m)
	assert.Empty(t, m.errMsg)
	assert.Contains(t, m.View(), "No runs found")
}

func TestModelLoadUnknownRun(t *testing.T) {
	st := openStore(t)
	seedRun(t, st)
	m := NewModel(st, "")
	resize(m)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	require.True(t, m.runInputMode)
	m.runInput.SetValue("missing")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.runInputMode)
	assert.Contains(t, m.errMsg, "run not found")
	assert.Contains(t, m.View(), "run not found")
}
