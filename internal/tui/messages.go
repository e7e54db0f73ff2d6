package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitsync/internal/forms"
	"github.com/julianstephens/habitsync/internal/models"
)

type sessionMsg struct {
	session models.Session
}

type toLoginMsg struct{}

type refreshedMsg struct {
	err error
}

type authDoneMsg struct {
	err error
}

type savedMsg struct {
	habit models.Habit
	verb  string
	err   error
}

type deletedMsg struct {
	habit models.Habit
	err   error
}

type loggedMsg struct {
	habit models.Habit
	entry models.HabitLog
	err   error
}

type progressMsg struct {
	habitID  string
	progress models.HabitProgress
	err      error
}

type loggedOutMsg struct {
	err error
}

// waitForSession blocks on the next session change.
func waitForSession(ch <-chan models.Session) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return sessionMsg{session: s}
	}
}

func waitForNavigation(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return toLoginMsg{}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	habits, ctx := m.habits, m.ctx
	return func() tea.Msg {
		_, err := habits.Refresh(ctx)
		return refreshedMsg{err: err}
	}
}

func (m Model) loginCmd(creds forms.Credentials, signup bool) tea.Cmd {
	store, ctx := m.session, m.ctx
	return func() tea.Msg {
		var err error
		if signup {
			_, err = store.Signup(ctx, creds.Username, creds.Email, creds.Password)
		} else {
			_, err = store.Login(ctx, creds.Username, creds.Password)
		}
		return authDoneMsg{err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	store := m.session
	return func() tea.Msg {
		return loggedOutMsg{err: store.Logout()}
	}
}

func (m Model) createCmd(fields forms.HabitFields) tea.Cmd {
	habits, ctx := m.habits, m.ctx
	return func() tea.Msg {
		h, err := habits.Create(ctx, fields.CreateRequest())
		return savedMsg{habit: h, verb: "Added", err: err}
	}
}

func (m Model) updateCmd(orig models.Habit, fields forms.HabitFields) tea.Cmd {
	habits, ctx := m.habits, m.ctx
	return func() tea.Msg {
		h, err := habits.Update(ctx, orig.ID, fields.UpdateRequest(orig))
		return savedMsg{habit: h, verb: "Updated", err: err}
	}
}

func (m Model) deleteCmd(h models.Habit) tea.Cmd {
	habits, ctx := m.habits, m.ctx
	return func() tea.Msg {
		return deletedMsg{habit: h, err: habits.Delete(ctx, h.ID)}
	}
}

func (m Model) logCmd(h models.Habit) tea.Cmd {
	habits, ctx := m.habits, m.ctx
	return func() tea.Msg {
		entry, err := habits.LogCompletion(ctx, h.ID)
		return loggedMsg{habit: h, entry: entry, err: err}
	}
}

func (m Model) progressCmd(habitID string) tea.Cmd {
	agg, ctx := m.progress, m.ctx
	return func() tea.Msg {
		p, err := agg.Fetch(ctx, habitID)
		return progressMsg{habitID: habitID, progress: p, err: err}
	}
}
