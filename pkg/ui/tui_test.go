package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	minerdomain "github.com/mmrrnn/universe/business/miner/domain"
	nodedomain "github.com/mmrrnn/universe/business/node/domain"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func dashboard(t *testing.T) Model {
	t.Helper()
	m := New()
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
}

func TestModel_WelcomeSkippedByKey(t *testing.T) {
	m := dashboard(t)
	if m.phase != PhaseDashboard {
		t.Fatalf("expected dashboard, got %s", m.phase)
	}
}

func TestModel_RendersNodeAndMiner(t *testing.T) {
	m := dashboard(t)
	m = update(t, m, NodeStatusMsg{Status: nodedomain.BaseNodeStatus{BlockHeight: 1234, IsSynced: true}})
	m = update(t, m, BlockMsg{Height: 1234})
	m = update(t, m, CPUMinerMsg{Status: minerdomain.CPUMinerStatus{IsMining: true, CPUBrand: "Test CPU", HashRate: 1500}})

	view := m.View()
	for _, want := range []string{"#1234", "Test CPU", "1.50 kH/s"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_PauseHoldsData(t *testing.T) {
	m := dashboard(t)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = update(t, m, BlockMsg{Height: 99})
	if m.currentBlock != 0 {
		t.Errorf("expected block ignored while paused, got %d", m.currentBlock)
	}
}

func TestModel_KeepsLastThreeErrors(t *testing.T) {
	m := dashboard(t)
	for i := 0; i < 5; i++ {
		m = update(t, m, ErrorMsg{Error: errors.New("boom")})
	}
	if len(m.errors) != 3 {
		t.Errorf("expected 3 errors, got %d", len(m.errors))
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if len(m.errors) != 0 {
		t.Errorf("expected errors cleared, got %d", len(m.errors))
	}
}
