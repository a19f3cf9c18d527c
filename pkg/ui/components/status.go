// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// WorkerStatus is the last health verdict of one worker.
type WorkerStatus struct {
	Name   string
	Health string
}

// StatusComponent renders worker health.
type StatusComponent struct {
	workers []WorkerStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		workers: make([]WorkerStatus, 0),
	}
}

// Update updates a worker's status.
func (s *StatusComponent) Update(status WorkerStatus) {
	for i, w := range s.workers {
		if w.Name == status.Name {
			s.workers[i] = status
			return
		}
	}
	s.workers = append(s.workers, status)
}

// View renders the status component.
func (s *StatusComponent) View() string {
	if len(s.workers) == 0 {
		return "No workers"
	}

	var b strings.Builder
	for _, w := range s.workers {
		color := lipgloss.Color("#10B981")
		icon := "●"
		switch w.Health {
		case "warning":
			color = lipgloss.Color("#F59E0B")
		case "unhealthy":
			color = lipgloss.Color("#EF4444")
			icon = "○"
		}
		style := lipgloss.NewStyle().Foreground(color)
		b.WriteString(fmt.Sprintf("├─ %s: %s\n", w.Name, style.Render(icon+" "+w.Health)))
	}
	return b.String()
}
