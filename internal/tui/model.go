package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitsync/internal/cache"
	"github.com/julianstephens/habitsync/internal/forms"
	"github.com/julianstephens/habitsync/internal/models"
	"github.com/julianstephens/habitsync/internal/progress"
	"github.com/julianstephens/habitsync/internal/session"
	"github.com/julianstephens/habitsync/internal/tui/components/detail"
	"github.com/julianstephens/habitsync/internal/tui/components/habits"
)

type SessionState int

const (
	StateLogin SessionState = iota
	StateSignup
	StateHabits
	StateSearch
	StateAddHabit
	StateEditHabit
	StateConfirmDelete
	StateDetail
)

// Deps are the components the TUI drives.
type Deps struct {
	Ctx      context.Context
	Session  *session.Store
	Habits   *cache.HabitCache
	Progress *progress.Aggregator
	// SessionEvents delivers every session change, starting with the
	// current one.
	SessionEvents <-chan models.Session
	// NavEvents fires when the session store asks for the login screen.
	NavEvents <-chan struct{}
}

type Model struct {
	ctx      context.Context
	session  *session.Store
	habits   *cache.HabitCache
	progress *progress.Aggregator

	sessionEvents <-chan models.Session
	navEvents     <-chan struct{}

	state       SessionState
	keys        KeyMap
	help        help.Model
	spinner     spinner.Model
	search      textinput.Model
	habitsModel habits.Model
	detailModel detail.Model
	form        *huh.Form
	creds       *forms.Credentials
	habitForm   *forms.HabitFields
	editing     models.Habit
	toDelete    models.Habit
	current     models.Session
	busy        bool
	status      string
	errMsg      string
	quitting    bool
	width       int
	height      int
}

func NewModel(d Deps) Model {
	ctx := d.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	search := textinput.New()
	search.Placeholder = "search title, description or frequency"
	search.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:           ctx,
		session:       d.Session,
		habits:        d.Habits,
		progress:      d.Progress,
		sessionEvents: d.SessionEvents,
		navEvents:     d.NavEvents,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		search:        search,
		habitsModel:   habits.New(d.Habits.All(), 0, 0),
		detailModel:   detail.New(0),
		current:       d.Session.Current(),
	}

	if m.current.Authenticated() {
		m.state = StateHabits
		m.busy = true
	} else {
		m.openLogin(false)
	}
	m.habitsModel.Disabled = m.busy
	return m
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case StateLogin, StateSignup:
		return []key.Binding{m.keys.Signup}
	case StateDetail:
		return []key.Binding{m.keys.Back, m.keys.Refresh, m.keys.Quit}
	case StateConfirmDelete:
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.sessionEvents != nil {
		cmds = append(cmds, waitForSession(m.sessionEvents))
	}
	if m.navEvents != nil {
		cmds = append(cmds, waitForNavigation(m.navEvents))
	}
	if m.form != nil {
		cmds = append(cmds, m.form.Init())
	}
	if m.current.Authenticated() {
		cmds = append(cmds, m.refreshCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) openLogin(signup bool) {
	username := ""
	if m.creds != nil {
		username = m.creds.Username
	}
	m.creds = &forms.Credentials{Username: username}
	if signup {
		m.state = StateSignup
		m.form = forms.NewSignupForm(m.creds)
	} else {
		m.state = StateLogin
		m.form = forms.NewLoginForm(m.creds)
	}
}

func (m *Model) applyFilter() {
	m.habitsModel.SetHabits(m.habits.Filter(m.search.Value()))
}

func (m *Model) setBusy(busy bool) {
	m.busy = busy
	m.habitsModel.Disabled = busy
}
