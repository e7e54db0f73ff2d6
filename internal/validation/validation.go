package validation

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/habitsync/internal/constants"
	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/models"
)

// Validator checks user input before it is sent to the remote service.
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabitCreate checks every field of a create request and normalizes
// the frequency in place.
func (v *Validator) ValidateHabitCreate(req *models.HabitCreateRequest) error {
	verr := &apperrors.ValidationError{}

	checkTitle(verr, req.Title)
	checkDescription(verr, req.Description)
	if f, ok := checkFrequency(verr, string(req.Frequency)); ok {
		req.Frequency = f
	}

	return verr.OrNil()
}

// ValidateHabitUpdate checks only the fields present in a partial update.
// An update that changes nothing is rejected.
func (v *Validator) ValidateHabitUpdate(req *models.HabitUpdateRequest) error {
	if req.IsEmpty() {
		return apperrors.NewValidationError("update", "must change at least one of title, description, frequency")
	}

	verr := &apperrors.ValidationError{}
	if req.Title != nil {
		checkTitle(verr, *req.Title)
	}
	if req.Description != nil {
		checkDescription(verr, *req.Description)
	}
	if req.Frequency != nil {
		if f, ok := checkFrequency(verr, string(*req.Frequency)); ok {
			req.Frequency = &f
		}
	}

	return verr.OrNil()
}

// ValidateTitle checks a single habit title.
func (v *Validator) ValidateTitle(title string) error {
	verr := &apperrors.ValidationError{}
	checkTitle(verr, title)
	return verr.OrNil()
}

// ValidateDescription checks a single habit description.
func (v *Validator) ValidateDescription(description string) error {
	verr := &apperrors.ValidationError{}
	checkDescription(verr, description)
	return verr.OrNil()
}

// ValidateLogin checks that both credentials were supplied.
func (v *Validator) ValidateLogin(req models.LoginRequest) error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(req.Username) == "" {
		verr.Add("username", "is required")
	}
	if req.Password == "" {
		verr.Add("password", "is required")
	}
	return verr.OrNil()
}

// ValidateSignup checks credentials and the email address format.
func (v *Validator) ValidateSignup(req models.SignupRequest) error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(req.Username) == "" {
		verr.Add("username", "is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		verr.Add("email", "is required")
	} else if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != strings.TrimSpace(req.Email) {
		verr.Add("email", "must be a valid email address")
	}
	if req.Password == "" {
		verr.Add("password", "is required")
	}
	return verr.OrNil()
}

// ValidateProgress checks a server progress snapshot for consistency:
// completed <= total and percentage ~= 100*completed/total.
func (v *Validator) ValidateProgress(p models.HabitProgress) error {
	switch {
	case p.TotalDays < 0 || p.CompletedDays < 0:
		return fmt.Errorf("negative day counts (total=%d, completed=%d)", p.TotalDays, p.CompletedDays)
	case p.CompletedDays > p.TotalDays:
		return fmt.Errorf("completed days %d exceed total days %d", p.CompletedDays, p.TotalDays)
	case p.CompletionPercentage < 0 || p.CompletionPercentage > 100:
		return fmt.Errorf("completion percentage %.2f outside [0,100]", p.CompletionPercentage)
	case math.Abs(p.CompletionPercentage-p.ExpectedPercentage()) > constants.ProgressTolerance:
		return fmt.Errorf("completion percentage %.2f does not match %d/%d days",
			p.CompletionPercentage, p.CompletedDays, p.TotalDays)
	}
	return nil
}

func checkTitle(verr *apperrors.ValidationError, title string) {
	checkText(verr, "title", title, constants.MinTitleLength)
}

func checkDescription(verr *apperrors.ValidationError, description string) {
	checkText(verr, "description", description, constants.MinDescriptionLength)
}

func checkText(verr *apperrors.ValidationError, field, value string, minLen int) {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		verr.Add(field, "is required")
	case utf8.RuneCountInString(trimmed) < minLen:
		verr.Add(field, fmt.Sprintf("must be at least %d characters", minLen))
	}
}

func checkFrequency(verr *apperrors.ValidationError, value string) (models.Frequency, bool) {
	f, ok := models.ParseFrequency(value)
	if !ok {
		known := make([]string, 0, len(models.Frequencies()))
		for _, k := range models.Frequencies() {
			known = append(known, string(k))
		}
		verr.Add("frequency", fmt.Sprintf("must be one of %s", strings.Join(known, ", ")))
	}
	return f, ok
}
