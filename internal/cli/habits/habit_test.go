package habits

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/julianstephens/habitsync/internal/cli"
	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/models"
	"github.com/julianstephens/habitsync/internal/testutil/clitest"
)

func strPtr(s string) *string { return &s }

func setup(t *testing.T) (*clitest.Env, string) {
	t.Helper()
	env := clitest.New(t)
	userID := env.Login(t, "alice")
	return env, userID
}

func TestCommands_RequireLogin(t *testing.T) {
	env := clitest.New(t)

	cmds := map[string]interface{ Run(*cli.Context) error }{
		"list":     &HabitListCmd{},
		"show":     &HabitShowCmd{Ref: "x"},
		"add":      &HabitAddCmd{Title: "Run", Description: "Run 5km every morning"},
		"edit":     &HabitEditCmd{Ref: "x", Title: strPtr("Sprint")},
		"delete":   &HabitDeleteCmd{Ref: "x", Yes: true},
		"done":     &HabitDoneCmd{Ref: "x"},
		"progress": &HabitProgressCmd{Ref: "x"},
	}
	for name, cmd := range cmds {
		t.Run(name, func(t *testing.T) {
			if err := cmd.Run(env.Ctx); !errors.Is(err, cli.ErrLoginRequired) {
				t.Errorf("Run() error = %v, want ErrLoginRequired", err)
			}
		})
	}
	if n := len(env.Server.Requests()); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestHabitAddCmd(t *testing.T) {
	env, userID := setup(t)

	cmd := &HabitAddCmd{Title: "Run", Description: "Run 5km every morning"}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("HabitAddCmd.Run() error = %v", err)
	}

	stored := env.Server.Habits(userID)
	if len(stored) != 1 || stored[0].Frequency != models.FrequencyDaily {
		t.Fatalf("server habits = %+v, want one daily habit", stored)
	}
	if !strings.Contains(env.Out.String(), "Added habit: Run (daily, "+stored[0].ID+")") {
		t.Errorf("output = %q", env.Out.String())
	}
}

func TestHabitAddCmd_Invalid(t *testing.T) {
	env, userID := setup(t)

	err := (&HabitAddCmd{Title: "Run", Description: "too short", Frequency: "hourly"}).Run(env.Ctx)

	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) != 2 {
		t.Fatalf("HabitAddCmd.Run() error = %v, want two validation issues", err)
	}
	if n := len(env.Server.Habits(userID)); n != 0 {
		t.Errorf("server holds %d habits, want 0", n)
	}
}

func TestHabitListCmd(t *testing.T) {
	env, userID := setup(t)
	env.Server.AddHabit(userID, "Run", "Run 5km every morning", models.FrequencyDaily)
	env.Server.AddHabit(userID, "Read", "Finish one chapter of a book", models.FrequencyWeekly)

	tests := []struct {
		search  string
		want    []string
		notWant []string
	}{
		{"", []string{"Run", "Read"}, nil},
		{"WEEKLY", []string{"Read"}, []string{"Run 5km"}},
		{"swim", []string{`No habits match "swim"`}, []string{"Run", "Read"}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			env.Out.Reset()
			if err := (&HabitListCmd{Search: tt.search}).Run(env.Ctx); err != nil {
				t.Fatalf("HabitListCmd.Run() error = %v", err)
			}
			out := env.Out.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(out, notWant) {
					t.Errorf("output contains %q:\n%s", notWant, out)
				}
			}
		})
	}
}

func TestHabitListCmd_Empty(t *testing.T) {
	env, _ := setup(t)

	if err := (&HabitListCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("HabitListCmd.Run() error = %v", err)
	}
	if !strings.Contains(env.Out.String(), "No habits found") {
		t.Errorf("output = %q", env.Out.String())
	}
}

func TestHabitShowCmd_ResolvesTitleOrID(t *testing.T) {
	env, userID := setup(t)
	h := env.Server.AddHabit(userID, "Run", "Run 5km every morning", models.FrequencyDaily)

	for _, ref := range []string{h.ID, "run", " RUN "} {
		t.Run(ref, func(t *testing.T) {
			env.Out.Reset()
			if err := (&HabitShowCmd{Ref: ref}).Run(env.Ctx); err != nil {
				t.Fatalf("HabitShowCmd.Run() error = %v", err)
			}
			if !strings.Contains(env.Out.String(), "ID:          "+h.ID) {
				t.Errorf("output = %q", env.Out.String())
			}
		})
	}
}

func TestHabitShowCmd_Unknown(t *testing.T) {
	env, _ := setup(t)

	err := (&HabitShowCmd{Ref: "swim"}).Run(env.Ctx)

	var nf *apperrors.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "swim" {
		t.Errorf("HabitShowCmd.Run() error = %v, want NotFoundError for swim", err)
	}
}

func TestHabitEditCmd(t *testing.T) {
	env, userID := setup(t)
	h := env.Server.AddHabit(userID, "Run", "Run 5km every morning", models.FrequencyDaily)

	cmd := &HabitEditCmd{Ref: "Run", Title: strPtr("Sprint"), Frequency: strPtr("Weekly")}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("HabitEditCmd.Run() error = %v", err)
	}

	got, err := env.Ctx.Habits.Get(h.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Sprint" || got.Frequency != models.FrequencyWeekly || got.Description != h.Description {
		t.Errorf("cached habit = %+v", got)
	}
	if !strings.Contains(env.Out.String(), "Updated habit: Sprint (weekly)") {
		t.Errorf("output = %q", env.Out.String())
	}
}

func TestHabitDeleteCmd(t *testing.T) {
	env, userID := setup(t)
	env.Server.AddHabit(userID, "Run", "Run 5km every morning", models.FrequencyDaily)
	keep := env.Server.AddHabit(userID, "Read", "Finish one chapter of a book", models.FrequencyWeekly)

	if err := (&HabitDeleteCmd{Ref: "Run", Yes: true}).Run(env.Ctx); err != nil {
		t.Fatalf("HabitDeleteCmd.Run() error = %v", err)
	}

	if got := env.Ctx.Habits.All(); len(got) != 1 || got[0].ID != keep.ID {
		t.Errorf("cache after delete = %+v", got)
	}
	if got := env.Server.Habits(userID); len(got) != 1 {
		t.Errorf("server after delete = %+v", got)
	}
}

func TestHabitDeleteCmd_ServerFailure(t *testing.T) {
	env, userID := setup(t)
	env.Server.AddHabit(userID, "Run", "Run 5km every morning", models.FrequencyDaily)
	env.Server.Fail(http.MethodDelete, "/habits/{id}", http.StatusInternalServerError, "storage offline")

	err := (&HabitDeleteCmd{Ref: "Run", Yes: true}).Run(env.Ctx)

	if got := apperrors.UserMessage(err); got != "server rejected the request: storage offline" {
		t.Errorf("UserMessage() = %q", got)
	}
	if env.Ctx.Habits.Len() != 1 {
		t.Errorf("cache Len() = %d, want 1", env.Ctx.Habits.Len())
	}
}

func TestHabitDoneCmd_LogsThenFetchesProgress(t *testing.T) {
	env, userID := setup(t)
	h := env.Server.AddHabit(userID, "Run", "Run 5km every morning", models.FrequencyDaily)

	if err := (&HabitDoneCmd{Ref: h.ID}).Run(env.Ctx); err != nil {
		t.Fatalf("HabitDoneCmd.Run() error = %v", err)
	}

	var logAt, progressAt = -1, -1
	for i, r := range env.Server.Requests() {
		switch r.Path {
		case "/habits/" + h.ID + "/log":
			logAt = i
		case "/habits/" + h.ID + "/progress":
			progressAt = i
		}
	}
	if logAt < 0 || progressAt < 0 || progressAt < logAt {
		t.Errorf("log request at %d, progress request at %d; want log first", logAt, progressAt)
	}

	out := env.Out.String()
	if !strings.Contains(out, "Logged Run for ") || !strings.Contains(out, "100.0%") || !strings.Contains(out, "(1 of 1 days)") {
		t.Errorf("output = %q", out)
	}
}

func TestHabitDoneCmd_LogFailureSkipsProgress(t *testing.T) {
	env, userID := setup(t)
	h := env.Server.AddHabit(userID, "Run", "Run 5km every morning", models.FrequencyDaily)
	env.Server.Fail(http.MethodPost, "/habits/{id}/log", http.StatusBadRequest, "Invalid date")

	err := (&HabitDoneCmd{Ref: h.ID}).Run(env.Ctx)

	if apperrors.Classify(err) != apperrors.KindRemote {
		t.Fatalf("HabitDoneCmd.Run() error = %v, want remote", err)
	}
	if _, ok := env.Server.LastRequest(http.MethodGet, "/habits/"+h.ID+"/progress"); ok {
		t.Error("progress fetched after a failed log")
	}
}

func TestHabitProgressCmd(t *testing.T) {
	env, userID := setup(t)
	env.Server.AddHabit(userID, "Read", "Finish one chapter of a book", models.FrequencyWeekly)
	env.Server.OverrideProgress(func(p *models.HabitProgress) {
		p.TotalDays, p.CompletedDays, p.CompletionPercentage = 2, 1, 50
	})

	if err := (&HabitProgressCmd{Ref: "read"}).Run(env.Ctx); err != nil {
		t.Fatalf("HabitProgressCmd.Run() error = %v", err)
	}
	out := env.Out.String()
	if !strings.Contains(out, "Read (weekly)") || !strings.Contains(out, " 50.0%") || !strings.Contains(out, "(1 of 2 days)") {
		t.Errorf("output = %q", out)
	}
}
