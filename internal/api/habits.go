package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/julianstephens/habitsync/internal/models"
)

// HabitGateway maps habit operations onto the remote habit endpoints. Every
// call carries the current session token.
type HabitGateway struct {
	client *Client
	tokens TokenSource
}

// NewHabitGateway creates a HabitGateway that authenticates with tokens.
func NewHabitGateway(client *Client, tokens TokenSource) *HabitGateway {
	return &HabitGateway{client: client, tokens: tokens}
}

var (
	errMissingHabitID = errors.New("response carried no habit id")
	errMissingLogID   = errors.New("response carried no log id")
)

func requireHabitID(h *models.Habit) func() error {
	return func() error {
		if h.ID == "" {
			return errMissingHabitID
		}
		return nil
	}
}

func habitPath(id string, suffix string) string {
	return "/habits/" + url.PathEscape(id) + suffix
}

// List fetches the full habit collection in server order.
func (g *HabitGateway) List(ctx context.Context) ([]models.Habit, error) {
	var habits []models.Habit
	err := g.client.do(ctx, request{
		op:     "list habits",
		method: http.MethodGet,
		path:   "/habits",
		tokens: g.tokens,
	}, &habits)
	if err != nil {
		return nil, err
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return habits, nil
}

// Create submits a new habit; the server assigns its id.
func (g *HabitGateway) Create(ctx context.Context, req models.HabitCreateRequest) (*models.Habit, error) {
	var habit models.Habit
	err := g.client.do(ctx, request{
		op:     "create habit",
		method: http.MethodPost,
		path:   "/habits",
		body:   req,
		tokens: g.tokens,
		check:  requireHabitID(&habit),
	}, &habit)
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

// Update applies a partial update and returns the server's record.
func (g *HabitGateway) Update(ctx context.Context, id string, req models.HabitUpdateRequest) (*models.Habit, error) {
	var habit models.Habit
	err := g.client.do(ctx, request{
		op:     "update habit",
		method: http.MethodPut,
		path:   habitPath(id, ""),
		body:   req,
		tokens: g.tokens,
		check:  requireHabitID(&habit),
	}, &habit)
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

// Delete removes a habit.
func (g *HabitGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, request{
		op:     "delete habit",
		method: http.MethodDelete,
		path:   habitPath(id, ""),
		tokens: g.tokens,
	}, nil)
}

// LogCompletion records a completion event.
func (g *HabitGateway) LogCompletion(ctx context.Context, id string, req models.LogCompletionRequest) (*models.HabitLog, error) {
	var log models.HabitLog
	err := g.client.do(ctx, request{
		op:     "log completion",
		method: http.MethodPost,
		path:   habitPath(id, "/log"),
		body:   req,
		tokens: g.tokens,
		check: func() error {
			if log.ID == "" {
				return errMissingLogID
			}
			return nil
		},
	}, &log)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// Progress fetches the server-computed progress snapshot.
func (g *HabitGateway) Progress(ctx context.Context, id string) (*models.HabitProgress, error) {
	var progress models.HabitProgress
	err := g.client.do(ctx, request{
		op:     "get progress",
		method: http.MethodGet,
		path:   habitPath(id, "/progress"),
		tokens: g.tokens,
	}, &progress)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
