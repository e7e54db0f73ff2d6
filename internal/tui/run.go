package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitsync/internal/cli"
	"github.com/julianstephens/habitsync/internal/logger"
	"github.com/julianstephens/habitsync/internal/models"
)

// Run starts the interactive program and blocks until it exits.
func Run(ctx *cli.Context) error {
	sessions := make(chan models.Session, 1)
	unsubscribe := ctx.Session.Subscribe(func(s models.Session) {
		sendLatest(sessions, s)
	})
	defer unsubscribe()

	nav := make(chan struct{}, 1)
	restore := ctx.Nav.Redirect(func() {
		select {
		case nav <- struct{}{}:
		default:
		}
	})
	defer restore()

	m := NewModel(Deps{
		Ctx:           ctx.Ctx(),
		Session:       ctx.Session,
		Habits:        ctx.Habits,
		Progress:      ctx.Progress,
		SessionEvents: sessions,
		NavEvents:     nav,
	})

	logger.Debug("Starting TUI")
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx.Ctx()))
	_, err := p.Run()
	return err
}

// sendLatest delivers s, replacing any value still waiting in ch.
func sendLatest(ch chan models.Session, s models.Session) {
	for {
		select {
		case ch <- s:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
