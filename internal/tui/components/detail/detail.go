package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitsync/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model shows one habit and its latest progress snapshot.
type Model struct {
	habit    models.Habit
	progress *models.HabitProgress
	err      error
	bar      progress.Model
	width    int
}

func New(width int) Model {
	m := Model{bar: progress.New(progress.WithDefaultGradient())}
	m.SetWidth(width)
	return m
}

// SetHabit switches to h and drops any snapshot for the previous habit.
func (m *Model) SetHabit(h models.Habit) {
	if h.ID != m.habit.ID {
		m.progress = nil
		m.err = nil
	}
	m.habit = h
}

func (m Model) Habit() models.Habit {
	return m.habit
}

func (m *Model) SetProgress(p models.HabitProgress) {
	m.progress = &p
	m.err = nil
}

func (m *Model) SetError(err error) {
	m.err = err
}

func (m *Model) SetWidth(width int) {
	m.width = width
	w := width - 4
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	m.bar.Width = w
}

func (m Model) View(errorText func(error) string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.habit.Title))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Frequency:"), m.habit.Frequency)
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("Description:"), m.habit.Description)

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render("Progress unavailable: " + errorText(m.err)))
	case m.progress == nil:
		b.WriteString(labelStyle.Render("Loading progress..."))
	default:
		p := m.progress
		b.WriteString(m.bar.ViewAs(p.CompletionPercentage / 100))
		fmt.Fprintf(&b, "\n%d of %d days completed", p.CompletedDays, p.TotalDays)
	}
	return b.String()
}
