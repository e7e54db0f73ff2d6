// Package progress fetches per-habit progress snapshots. Snapshots are never
// cached; each call goes to the server.
package progress

import (
	"context"
	"net/http"
	"net/url"

	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/logger"
	"github.com/julianstephens/habitsync/internal/models"
	"github.com/julianstephens/habitsync/internal/validation"
)

// ProgressService is the remote surface the aggregator depends on.
type ProgressService interface {
	Progress(ctx context.Context, id string) (*models.HabitProgress, error)
}

// Aggregator loads progress snapshots on demand.
type Aggregator struct {
	gw        ProgressService
	validator *validation.Validator
}

// New creates an Aggregator backed by gw.
func New(gw ProgressService) *Aggregator {
	return &Aggregator{gw: gw, validator: validation.New()}
}

// Fetch returns a fresh snapshot for habitID. A snapshot whose counts and
// percentage disagree is reported as a RemoteError rather than shown.
func (a *Aggregator) Fetch(ctx context.Context, habitID string) (models.HabitProgress, error) {
	p, err := a.gw.Progress(ctx, habitID)
	if err != nil {
		logger.Warn("Progress fetch failed", "id", habitID, "error", err)
		return models.HabitProgress{}, err
	}

	if err := a.validator.ValidateProgress(*p); err != nil {
		logger.Warn("Server sent an inconsistent progress snapshot", "id", habitID, "error", err)
		return models.HabitProgress{}, &apperrors.RemoteError{
			Op:         "get progress",
			Method:     http.MethodGet,
			Path:       "/habits/" + url.PathEscape(habitID) + "/progress",
			StatusCode: http.StatusOK,
			Message:    err.Error(),
			Err:        err,
		}
	}

	if p.HabitID == "" {
		p.HabitID = habitID
	}
	logger.Debug("Progress fetched", "id", habitID, "percent", p.CompletionPercentage)
	return *p, nil
}
