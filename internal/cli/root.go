package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/habitsync/internal/cache"
	"github.com/julianstephens/habitsync/internal/config"
	"github.com/julianstephens/habitsync/internal/constants"
	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/models"
	"github.com/julianstephens/habitsync/internal/progress"
	"github.com/julianstephens/habitsync/internal/session"
)

// ErrLoginRequired is returned by commands that need a session when none is
// persisted.
var ErrLoginRequired = errors.New(constants.MsgLoginRequired)

// Context carries the long-lived components every command runs against.
type Context struct {
	Config     *config.Config
	ConfigPath string
	Session    *session.Store
	Habits     *cache.HabitCache
	Progress   *progress.Aggregator
	Nav        *Navigator
	Out        io.Writer
	Base       context.Context
}

// Ctx returns the context for remote calls.
func (c *Context) Ctx() context.Context {
	if c.Base == nil {
		return context.Background()
	}
	return c.Base
}

// Writer returns the command output stream.
func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Writer(), args...)
}

// RequireAuth fails unless a session token is persisted.
func (c *Context) RequireAuth() error {
	if !c.Session.IsAuthenticated() {
		return ErrLoginRequired
	}
	return nil
}

// ResolveHabit refreshes the cache and finds ref by id, falling back to a
// case-insensitive exact title match.
func (c *Context) ResolveHabit(ref string) (models.Habit, error) {
	if _, err := c.Habits.Refresh(c.Ctx()); err != nil {
		return models.Habit{}, err
	}

	ref = strings.TrimSpace(ref)
	if h, err := c.Habits.Get(ref); err == nil {
		return h, nil
	}
	for _, h := range c.Habits.All() {
		if strings.EqualFold(h.Title, ref) {
			return h, nil
		}
	}
	return models.Habit{}, &apperrors.NotFoundError{ID: ref}
}
