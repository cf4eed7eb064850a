package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"trendwatch/src/result"
	"trendwatch/src/store"
)

func loadedModel(t *testing.T, records ...store.BuildRecord) HistoryModel {
	t.Helper()
	m := NewHistoryModel(store.NewMemoryStore(), "acme/deploy", 20)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	updated, _ = updated.Update(historyLoadedMsg{records: records})
	return updated.(HistoryModel)
}

func someRecords(n int) []store.BuildRecord {
	recs := make([]store.BuildRecord, 0, n)
	for i := n; i >= 1; i-- { // newest first
		recs = append(recs, store.BuildRecord{
			Provider:   "buildkite",
			JobKey:     "acme/deploy",
			Number:     i,
			URL:        "https://buildkite.com/acme/deploy/builds/1",
			Outcome:    result.Success,
			Trend:      result.TrendSuccess,
			RecordedAt: time.Now(),
		})
	}
	return recs
}

func TestHistoryViewStates(t *testing.T) {
	m := NewHistoryModel(store.NewMemoryStore(), "acme/deploy", 20)
	if !strings.Contains(m.View(), "Loading history") {
		t.Errorf("initial view should show the loading state, got %q", m.View())
	}

	empty := loadedModel(t)
	if !strings.Contains(empty.View(), "No recorded builds") {
		t.Errorf("empty view = %q", empty.View())
	}

	loaded := loadedModel(t, someRecords(3)...)
	view := loaded.View()
	if !strings.Contains(view, "acme/deploy") {
		t.Errorf("view does not name the job: %q", view)
	}
	if !strings.Contains(view, "#3") {
		t.Errorf("view does not list the newest build: %q", view)
	}
}

func TestHistoryNavigation(t *testing.T) {
	m := loadedModel(t, someRecords(5)...)

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}

	var model tea.Model = m
	model, _ = model.Update(down)
	model, _ = model.Update(down)
	if got := model.(HistoryModel).cursor; got != 2 {
		t.Errorf("cursor after two downs = %d, want 2", got)
	}

	model, _ = model.Update(up)
	if got := model.(HistoryModel).cursor; got != 1 {
		t.Errorf("cursor after up = %d, want 1", got)
	}

	// Cursor stays inside the list at both ends.
	for i := 0; i < 10; i++ {
		model, _ = model.Update(down)
	}
	if got := model.(HistoryModel).cursor; got != 4 {
		t.Errorf("cursor clamped at %d, want 4", got)
	}

	end := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}
	model, _ = model.Update(end)
	if got := model.(HistoryModel).cursor; got != 0 {
		t.Errorf("cursor after g = %d, want 0", got)
	}
}

func TestHistoryQuit(t *testing.T) {
	m := loadedModel(t, someRecords(1)...)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("q produced %T, want tea.QuitMsg", msg)
	}
}
