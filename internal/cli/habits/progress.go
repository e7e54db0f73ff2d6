package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/julianstephens/habitsync/internal/cli"
	"github.com/julianstephens/habitsync/internal/models"
)

const barWidth = 40

func renderProgress(p models.HabitProgress) string {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage())
	return fmt.Sprintf("%s %5.1f%%  (%d of %d days)",
		bar.ViewAs(p.CompletionPercentage/100), p.CompletionPercentage, p.CompletedDays, p.TotalDays)
}

type HabitDoneCmd struct {
	Ref string `arg:"" help:"Habit id or title."`
}

func (c *HabitDoneCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAuth(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(c.Ref)
	if err != nil {
		return err
	}

	entry, err := ctx.Habits.LogCompletion(ctx.Ctx(), h.ID)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Logged %s for %s\n", h.Title, entry.Day())

	// Progress is read only after the log is confirmed.
	p, err := ctx.Progress.Fetch(ctx.Ctx(), h.ID)
	if err != nil {
		return err
	}
	ctx.Println(renderProgress(p))
	return nil
}

type HabitProgressCmd struct {
	Ref string `arg:"" help:"Habit id or title."`
}

func (c *HabitProgressCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAuth(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(c.Ref)
	if err != nil {
		return err
	}

	p, err := ctx.Progress.Fetch(ctx.Ctx(), h.ID)
	if err != nil {
		return err
	}

	ctx.Printf("%s (%s)\n", h.Title, h.Frequency)
	ctx.Println(renderProgress(p))
	return nil
}
