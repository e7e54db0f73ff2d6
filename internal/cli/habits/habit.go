package habits

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/habitsync/internal/cli"
	"github.com/julianstephens/habitsync/internal/forms"
	"github.com/julianstephens/habitsync/internal/models"
)

type HabitCmd struct {
	List     HabitListCmd     `cmd:"" help:"List habits." default:"1"`
	Show     HabitShowCmd     `cmd:"" help:"Show one habit."`
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	Edit     HabitEditCmd     `cmd:"" help:"Edit a habit."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit."`
	Done     HabitDoneCmd     `cmd:"" help:"Log today's completion of a habit."`
	Progress HabitProgressCmd `cmd:"" help:"Show completion progress for a habit."`
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(habits []models.Habit) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "FREQUENCY", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, h := range habits {
		t.Row(h.ID, h.Title, string(h.Frequency), h.Description)
	}
	return t.String()
}

type HabitListCmd struct {
	Search string `help:"Only show habits whose title, description or frequency contains this text." short:"s"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAuth(); err != nil {
		return err
	}
	if _, err := ctx.Habits.Refresh(ctx.Ctx()); err != nil {
		return err
	}

	habits := ctx.Habits.Filter(c.Search)
	if len(habits) == 0 {
		if c.Search != "" {
			ctx.Printf("No habits match %q.\n", c.Search)
		} else {
			ctx.Println("No habits found. Add one with 'habitsync habit add'.")
		}
		return nil
	}

	ctx.Println(renderTable(habits))
	return nil
}

type HabitShowCmd struct {
	Ref string `arg:"" help:"Habit id or title."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAuth(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(c.Ref)
	if err != nil {
		return err
	}

	ctx.Printf("ID:          %s\n", h.ID)
	ctx.Printf("Title:       %s\n", h.Title)
	ctx.Printf("Frequency:   %s\n", h.Frequency)
	ctx.Printf("Description: %s\n", h.Description)
	return nil
}

type HabitAddCmd struct {
	Title       string `help:"Habit title (at least 3 characters)." short:"t"`
	Description string `help:"Habit description (at least 10 characters)." short:"d"`
	Frequency   string `help:"daily, weekly or monthly." short:"f"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAuth(); err != nil {
		return err
	}

	fields := &forms.HabitFields{
		Title:       c.Title,
		Description: c.Description,
		Frequency:   models.Frequency(c.Frequency),
	}
	if c.Title == "" || c.Description == "" {
		if err := forms.NewHabitForm(fields).Run(); err != nil {
			return fmt.Errorf("habit prompt: %w", err)
		}
	} else if fields.Frequency == "" {
		fields.Frequency = models.FrequencyDaily
	}

	h, err := ctx.Habits.Create(ctx.Ctx(), fields.CreateRequest())
	if err != nil {
		return err
	}

	ctx.Printf("✓ Added habit: %s (%s, %s)\n", h.Title, h.Frequency, h.ID)
	return nil
}

type HabitEditCmd struct {
	Ref         string  `arg:"" help:"Habit id or title."`
	Title       *string `help:"New title." short:"t"`
	Description *string `help:"New description." short:"d"`
	Frequency   *string `help:"New frequency." short:"f"`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAuth(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(c.Ref)
	if err != nil {
		return err
	}

	var req models.HabitUpdateRequest
	if c.Title == nil && c.Description == nil && c.Frequency == nil {
		fields := forms.FieldsFrom(h)
		if err := forms.NewHabitForm(fields).Run(); err != nil {
			return fmt.Errorf("habit prompt: %w", err)
		}
		req = fields.UpdateRequest(h)
	} else {
		req.Title = c.Title
		req.Description = c.Description
		if c.Frequency != nil {
			f := models.Frequency(*c.Frequency)
			req.Frequency = &f
		}
	}

	updated, err := ctx.Habits.Update(ctx.Ctx(), h.ID, req)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Updated habit: %s (%s)\n", updated.Title, updated.Frequency)
	return nil
}

type HabitDeleteCmd struct {
	Ref string `arg:"" help:"Habit id or title."`
	Yes bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAuth(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(c.Ref)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		question := fmt.Sprintf("Delete habit %q?", h.Title)
		if err := forms.NewConfirmForm(question, &confirmed).Run(); err != nil {
			return fmt.Errorf("confirm prompt: %w", err)
		}
		if !confirmed {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Habits.Delete(ctx.Ctx(), h.ID); err != nil {
		return err
	}

	ctx.Printf("✓ Deleted habit: %s\n", h.Title)
	return nil
}
