package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/julianstephens/habitsync/internal/errors"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateLogin, StateSignup, StateAddHabit, StateEditHabit:
		if m.form != nil {
			content = docStyle.Render(m.form.View())
		}
	case StateSearch:
		content = lipgloss.JoinVertical(lipgloss.Left,
			docStyle.Render(m.search.View()),
			docStyle.Render(m.habitsModel.View()),
		)
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	case StateDetail:
		content = docStyle.Render(m.detailModel.View(apperrors.UserMessage))
	default:
		content = m.viewHabits()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewFooter(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	var who string
	switch {
	case !m.current.Authenticated():
		who = "not signed in"
	case m.current.Username == "":
		who = "signed in"
	default:
		who = "signed in as " + m.current.Username
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render("habitsync"),
		identityStyle.Render(who),
	)
}

func (m Model) viewHabits() string {
	if term := m.search.Value(); term != "" {
		return lipgloss.JoinVertical(lipgloss.Left,
			identityStyle.Render(fmt.Sprintf("filter: %q (esc to clear)", term)),
			docStyle.Render(m.habitsModel.View()),
		)
	}
	return docStyle.Render(m.habitsModel.View())
}

func (m Model) viewFooter() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render(m.errMsg)
	case m.busy:
		return warningStyle.Render(m.spinner.View() + " syncing...")
	case m.status != "":
		return successStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete habit %q?", m.toDelete.Title)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
