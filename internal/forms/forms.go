// Package forms builds the huh forms shared by the CLI prompts and the TUI.
package forms

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/models"
	"github.com/julianstephens/habitsync/internal/validation"
)

// Credentials backs the login and signup forms.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// HabitFields backs the add and edit habit forms.
type HabitFields struct {
	Title       string
	Description string
	Frequency   models.Frequency
}

// FieldsFrom seeds HabitFields from an existing habit.
func FieldsFrom(h models.Habit) *HabitFields {
	return &HabitFields{Title: h.Title, Description: h.Description, Frequency: h.Frequency}
}

// CreateRequest converts the form values into a create request.
func (f *HabitFields) CreateRequest() models.HabitCreateRequest {
	return models.HabitCreateRequest{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Frequency:   f.Frequency,
	}
}

// UpdateRequest returns only the fields that differ from orig.
func (f *HabitFields) UpdateRequest(orig models.Habit) models.HabitUpdateRequest {
	var req models.HabitUpdateRequest
	if title := strings.TrimSpace(f.Title); title != orig.Title {
		req.Title = &title
	}
	if description := strings.TrimSpace(f.Description); description != orig.Description {
		req.Description = &description
	}
	if f.Frequency != orig.Frequency {
		freq := f.Frequency
		req.Frequency = &freq
	}
	return req
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " cannot be empty")
		}
		return nil
	}
}

// fieldError strips the "invalid input:" wrapper so huh shows just the issue.
func fieldError(err error) error {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) && len(verr.Issues) > 0 {
		issue := verr.Issues[0]
		return errors.New(issue.Field + " " + issue.Message)
	}
	return err
}

// NewLoginForm prompts for a username and password.
func NewLoginForm(c *Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&c.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(required("password")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewSignupForm prompts for a username, email and password.
func NewSignupForm(c *Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&c.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Email").
				Value(&c.Email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(required("password")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewHabitForm prompts for habit fields, starting from the values already in
// f. An empty frequency defaults to daily.
func NewHabitForm(f *HabitFields) *huh.Form {
	if f.Frequency == "" {
		f.Frequency = models.FrequencyDaily
	}
	v := validation.New()

	options := make([]huh.Option[models.Frequency], 0, len(models.Frequencies()))
	for _, freq := range models.Frequencies() {
		options = append(options, huh.NewOption(string(freq), freq))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&f.Title).
				Validate(func(s string) error { return fieldError(v.ValidateTitle(s)) }),
			huh.NewText().
				Title("Description").
				Value(&f.Description).
				Validate(func(s string) error { return fieldError(v.ValidateDescription(s)) }),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(options...).
				Value(&f.Frequency),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewConfirmForm asks a yes/no question.
func NewConfirmForm(question string, confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}
