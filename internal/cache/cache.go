// Package cache keeps the in-memory view of the current user's habits in
// step with the remote service. Every mutation is applied only after the
// server confirms it.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/habitsync/internal/constants"
	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/logger"
	"github.com/julianstephens/habitsync/internal/models"
	"github.com/julianstephens/habitsync/internal/validation"
)

// HabitService is the remote surface the cache depends on.
type HabitService interface {
	List(ctx context.Context) ([]models.Habit, error)
	Create(ctx context.Context, req models.HabitCreateRequest) (*models.Habit, error)
	Update(ctx context.Context, id string, req models.HabitUpdateRequest) (*models.Habit, error)
	Delete(ctx context.Context, id string) error
	LogCompletion(ctx context.Context, id string, req models.LogCompletionRequest) (*models.HabitLog, error)
}

// State is the lifecycle of the cached collection.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StatePopulated
	StateError
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Option configures a HabitCache.
type Option func(*HabitCache)

// WithClock overrides the clock used to date completion logs.
func WithClock(now func() time.Time) Option {
	return func(c *HabitCache) {
		c.now = now
	}
}

// HabitCache mirrors the server's habit collection for one session.
type HabitCache struct {
	gw        HabitService
	validator *validation.Validator
	now       func() time.Time

	mu      sync.Mutex
	habits  []models.Habit
	state   State
	lastErr error
	token   string
	// generation changes whenever the cache is cleared, so responses to
	// calls issued under an earlier session are not applied.
	generation uint64
}

// New creates an empty cache backed by gw.
func New(gw HabitService, opts ...Option) *HabitCache {
	c := &HabitCache{
		gw:        gw,
		validator: validation.New(),
		now:       time.Now,
		habits:    []models.Habit{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *HabitCache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error from the most recent failed refresh, or nil.
func (c *HabitCache) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Refresh replaces the cache with the server's collection, in server order.
// On failure the previous contents are kept and the state becomes Error.
func (c *HabitCache) Refresh(ctx context.Context) ([]models.Habit, error) {
	c.mu.Lock()
	c.state = StateLoading
	gen := c.generation
	c.mu.Unlock()

	logger.Debug("Refreshing habits")
	habits, err := c.gw.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		logger.Debug("Discarding habit list from a previous session")
		if err != nil {
			return nil, err
		}
		return clone(habits), nil
	}

	if err != nil {
		c.state = StateError
		c.lastErr = err
		logger.Warn("Habit refresh failed", "error", err, "kept", len(c.habits))
		return nil, err
	}

	c.habits = clone(habits)
	c.state = StatePopulated
	c.lastErr = nil
	logger.Debug("Habits refreshed", "count", len(c.habits))
	return clone(c.habits), nil
}

// Create validates req, submits it, and appends the server's habit.
func (c *HabitCache) Create(ctx context.Context, req models.HabitCreateRequest) (models.Habit, error) {
	if err := c.validator.ValidateHabitCreate(&req); err != nil {
		return models.Habit{}, err
	}

	gen := c.currentGeneration()
	habit, err := c.gw.Create(ctx, req)
	if err != nil {
		logger.Warn("Create habit failed", "title", req.Title, "error", err)
		return models.Habit{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		c.habits = append(c.habits, *habit)
		logger.Debug("Habit created", "id", habit.ID)
	}
	return *habit, nil
}

// Update validates the provided fields, submits them, and replaces the
// cached entry with the server's response. A habit not yet cached is
// appended.
func (c *HabitCache) Update(ctx context.Context, id string, req models.HabitUpdateRequest) (models.Habit, error) {
	if err := c.validator.ValidateHabitUpdate(&req); err != nil {
		return models.Habit{}, err
	}

	gen := c.currentGeneration()
	habit, err := c.gw.Update(ctx, id, req)
	if err != nil {
		logger.Warn("Update habit failed", "id", id, "error", err)
		return models.Habit{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return *habit, nil
	}
	if i := c.indexOf(id); i >= 0 {
		c.habits[i] = *habit
	} else {
		c.habits = append(c.habits, *habit)
	}
	logger.Debug("Habit updated", "id", id)
	return *habit, nil
}

// Delete removes the habit from the server and then from the cache. A
// failed delete leaves the cache untouched.
func (c *HabitCache) Delete(ctx context.Context, id string) error {
	gen := c.currentGeneration()
	if err := c.gw.Delete(ctx, id); err != nil {
		logger.Warn("Delete habit failed", "id", id, "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return nil
	}
	if i := c.indexOf(id); i >= 0 {
		c.habits = append(c.habits[:i:i], c.habits[i+1:]...)
	}
	logger.Debug("Habit deleted", "id", id)
	return nil
}

// LogCompletion records a completion for today's local date. The cache
// itself does not change.
func (c *HabitCache) LogCompletion(ctx context.Context, id string) (models.HabitLog, error) {
	req := models.LogCompletionRequest{
		Date:   c.now().Format(constants.DateFormat),
		Status: true,
	}

	entry, err := c.gw.LogCompletion(ctx, id, req)
	if err != nil {
		logger.Warn("Log completion failed", "id", id, "date", req.Date, "error", err)
		return models.HabitLog{}, err
	}
	logger.Debug("Completion logged", "id", id, "date", req.Date)
	return *entry, nil
}

// Filter returns the habits whose title, description or frequency contains
// term, ignoring case. Surrounding spaces in term are part of the match. A
// blank term matches everything.
func (c *HabitCache) Filter(term string) []models.Habit {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(term) == "" {
		return clone(c.habits)
	}
	needle := strings.ToLower(term)

	out := []models.Habit{}
	for _, h := range c.habits {
		if strings.Contains(strings.ToLower(h.Title), needle) ||
			strings.Contains(strings.ToLower(h.Description), needle) ||
			strings.Contains(strings.ToLower(string(h.Frequency)), needle) {
			out = append(out, h)
		}
	}
	return out
}

// Get looks up a cached habit by id.
func (c *HabitCache) Get(id string) (models.Habit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(id); i >= 0 {
		return c.habits[i], nil
	}
	return models.Habit{}, &apperrors.NotFoundError{ID: id}
}

// All returns every cached habit in order.
func (c *HabitCache) All() []models.Habit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.habits)
}

// Len returns the number of cached habits.
func (c *HabitCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.habits)
}

// Clear empties the cache and returns it to StateEmpty.
func (c *HabitCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// OnSessionChange is a session observer. It clears the cache when the
// session token changes.
func (c *HabitCache) OnSessionChange(s models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.Token == c.token {
		return
	}
	c.token = s.Token
	c.clearLocked()
	logger.Debug("Habit cache cleared for session change", "authenticated", s.Authenticated())
}

func (c *HabitCache) clearLocked() {
	c.habits = []models.Habit{}
	c.state = StateEmpty
	c.lastErr = nil
	c.generation++
}

func (c *HabitCache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *HabitCache) indexOf(id string) int {
	for i, h := range c.habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func clone(habits []models.Habit) []models.Habit {
	out := make([]models.Habit, len(habits))
	copy(out, habits)
	return out
}
