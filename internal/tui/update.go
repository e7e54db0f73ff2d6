package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/forms"
	"github.com/julianstephens/habitsync/internal/logger"
	"github.com/julianstephens/habitsync/internal/tui/components/habits"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = msg.Width - 6
		m.habitsModel.SetSize(msg.Width-4, msg.Height-8)
		m.detailModel.SetWidth(msg.Width - 4)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionMsg:
		m.current = msg.session
		return m, waitForSession(m.sessionEvents)

	case toLoginMsg:
		m.search.Reset()
		m.habitsModel.SetHabits(nil)
		m.setBusy(false)
		m.openLogin(false)
		m.status = ""
		return m, tea.Batch(waitForNavigation(m.navEvents), m.form.Init())

	case authDoneMsg:
		m.setBusy(false)
		if msg.err != nil {
			m.errMsg = apperrors.UserMessage(msg.err)
			m.openLogin(m.state == StateSignup)
			return m, m.form.Init()
		}
		m.form = nil
		m.state = StateHabits
		m.status = "Signed in"
		m.setBusy(true)
		return m, m.refreshCmd()

	case refreshedMsg:
		m.setBusy(false)
		if msg.err != nil {
			m.errMsg = apperrors.UserMessage(msg.err)
		}
		m.applyFilter()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.errMsg = apperrors.UserMessage(msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("%s habit: %s", msg.verb, msg.habit.Title)
		m.applyFilter()
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.errMsg = apperrors.UserMessage(msg.err)
			return m, nil
		}
		m.status = "Deleted habit: " + msg.habit.Title
		m.applyFilter()
		return m, nil

	case loggedMsg:
		if msg.err != nil {
			m.errMsg = apperrors.UserMessage(msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Logged %s for %s", msg.habit.Title, msg.entry.Day())
		if m.state == StateDetail && m.detailModel.Habit().ID == msg.habit.ID {
			return m, m.progressCmd(msg.habit.ID)
		}
		return m, nil

	case progressMsg:
		if m.detailModel.Habit().ID != msg.habitID {
			return m, nil
		}
		if msg.err != nil {
			m.detailModel.SetError(msg.err)
		} else {
			m.detailModel.SetProgress(msg.progress)
		}
		return m, nil

	case loggedOutMsg:
		if msg.err != nil {
			m.errMsg = apperrors.UserMessage(msg.err)
		}
		return m, nil

	case habits.AddHabitMsg:
		m.habitForm = &forms.HabitFields{}
		m.form = forms.NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case habits.EditHabitMsg:
		m.editing = msg.Habit
		m.habitForm = forms.FieldsFrom(msg.Habit)
		m.form = forms.NewHabitForm(m.habitForm)
		m.state = StateEditHabit
		return m, m.form.Init()

	case habits.DeleteHabitMsg:
		m.toDelete = msg.Habit
		m.state = StateConfirmDelete
		return m, nil

	case habits.LogHabitMsg:
		return m, m.logCmd(msg.Habit)

	case habits.ShowHabitMsg:
		m.detailModel.SetHabit(msg.Habit)
		m.state = StateDetail
		return m, m.progressCmd(msg.Habit.ID)
	}

	switch m.state {
	case StateLogin, StateSignup:
		return m.updateLogin(msg)
	case StateAddHabit, StateEditHabit:
		return m.updateHabitForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.state == StateHabits {
			var cmd tea.Cmd
			m.habitsModel, cmd = m.habitsModel.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	m.errMsg = ""

	switch m.state {
	case StateSearch:
		return m.updateSearch(keyMsg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(keyMsg)
	case StateDetail:
		return m.updateDetail(keyMsg)
	default:
		return m.updateHabits(keyMsg)
	}
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		m.errMsg = ""
		if key.Matches(msg, m.keys.Signup) && !m.busy {
			m.openLogin(m.state == StateLogin)
			return m, m.form.Init()
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.busy {
			return m, cmd
		}
		m.setBusy(true)
		return m, tea.Batch(cmd, m.loginCmd(*m.creds, m.state == StateSignup))
	case huh.StateAborted:
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m Model) updateHabitForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.form = nil
		m.state = StateHabits
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		fields := *m.habitForm
		editing := m.state == StateEditHabit
		m.form = nil
		m.state = StateHabits
		if editing {
			req := fields.UpdateRequest(m.editing)
			if req.IsEmpty() {
				m.status = "No changes"
				return m, cmd
			}
			return m, tea.Batch(cmd, m.updateCmd(m.editing, fields))
		}
		return m, tea.Batch(cmd, m.createCmd(fields))
	case huh.StateAborted:
		m.form = nil
		m.state = StateHabits
	}
	return m, cmd
}

func (m Model) updateHabits(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.state = StateSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Clear):
		if m.search.Value() != "" {
			m.search.Reset()
			m.applyFilter()
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		if m.busy {
			return m, nil
		}
		m.setBusy(true)
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Logout):
		logger.Debug("Logout requested from TUI")
		return m, m.logoutCmd()
	}

	var cmd tea.Cmd
	m.habitsModel, cmd = m.habitsModel.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Reset()
		m.search.Blur()
		m.state = StateHabits
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		m.state = StateHabits
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.state = StateHabits
		return m, m.deleteCmd(m.toDelete)
	case key.Matches(msg, m.keys.Cancel):
		m.state = StateHabits
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	h := m.detailModel.Habit()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.state = StateHabits
	case key.Matches(msg, m.keys.Refresh):
		return m, m.progressCmd(h.ID)
	case msg.String() == "m" || msg.String() == " ":
		return m, m.logCmd(h)
	case key.Matches(msg, m.keys.Logout):
		return m, m.logoutCmd()
	}
	return m, nil
}
