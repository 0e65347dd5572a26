package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/chamai/pkg/domain/response"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedTUI(t *testing.T, dir string) tuiModel {
	t.Helper()
	services, err := loadServices(dir)
	require.NoError(t, err)

	m := newTUIModel(context.Background(), services)
	assert.Contains(t, m.View(), "Loading checklist")

	next, _ := m.Update(m.Init()())
	return next.(tuiModel)
}

func press(m tuiModel, keys ...string) tuiModel {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(tuiModel)
	}
	return m
}

func TestTUI_AnswerAndNavigate(t *testing.T) {
	dir := initProject(t)
	m := loadedTUI(t, dir)
	store := m.services.Store

	view := m.View()
	assert.Contains(t, view, "ChAMAI Checklist · Reviewer mode")
	assert.Contains(t, view, "Score: 0 / 17")
	assert.Contains(t, view, "[1] OK  [2] mR  [3] MR")

	m = press(m, "1")
	assert.Equal(t, response.ChoiceOK, store.GetResponse("PU01", response.RoleReviewer))
	assert.Contains(t, m.View(), "Score: 2 / 17")

	m = press(m, "down", "2")
	assert.Equal(t, response.ChoiceMinorRevision, store.GetResponse("PU02", response.RoleReviewer))
	assert.Equal(t, 2.5, m.summary.Score)
}

func TestTUI_RoleToggleKeepsAnswers(t *testing.T) {
	dir := initProject(t)
	m := loadedTUI(t, dir)
	store := m.services.Store

	m = press(m, "1", "tab")
	assert.Equal(t, response.RoleAuthor, store.Role())
	assert.Contains(t, m.View(), "[1] NA  [2] No  [3] Yes")

	m = press(m, "3")
	assert.Equal(t, response.ChoiceYes, store.GetResponse("PU01", response.RoleAuthor))
	assert.Equal(t, response.ChoiceOK, store.GetResponse("PU01", response.RoleReviewer))
	assert.Equal(t, 2.0, m.summary.Score, "author answers never score")
}

func TestTUI_CommitAndReset(t *testing.T) {
	dir := initProject(t)
	m := loadedTUI(t, dir)
	store := m.services.Store

	m = press(m, "c")
	assert.True(t, store.IsCommitted("PU"))
	assert.Contains(t, m.View(), "PU – Purpose (committed)")

	m = press(m, "C")
	assert.True(t, store.IsCommitted("EV"))

	m = press(m, "1", "r")
	assert.Contains(t, m.View(), "Reset all responses? [y/N]")
	m = press(m, "n")
	assert.Equal(t, response.ChoiceOK, store.GetResponse("PU01", response.RoleReviewer))

	m = press(m, "r", "y")
	assert.Equal(t, response.ChoiceNone, store.GetResponse("PU01", response.RoleReviewer))
	assert.False(t, store.IsCommitted("PU"))
	assert.Contains(t, m.View(), "All responses cleared.")
}

func TestTUI_ExportCSV(t *testing.T) {
	dir := initProject(t)
	m := loadedTUI(t, dir)

	m = press(m, "e")
	assert.Contains(t, m.status, "Exported ")
	assert.True(t, strings.HasSuffix(m.status, "ChAMAI-results.csv"))
}

func TestTUI_DefinitionMissing(t *testing.T) {
	m := loadedTUI(t, t.TempDir())

	assert.Contains(t, m.View(), "Failed to load checklist JSON.")
	m = press(m, "1")
	assert.Empty(t, m.services.Store.Snapshot().Scores)

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
