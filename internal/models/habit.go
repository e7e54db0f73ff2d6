package models

import "strings"

// Frequency is how often a habit is meant to be performed.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Frequencies returns the recognized frequencies in display order.
func Frequencies() []Frequency {
	return []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}
}

// ParseFrequency normalizes s and reports whether it names a recognized frequency.
func ParseFrequency(s string) (Frequency, bool) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Frequencies() {
		if f == known {
			return f, true
		}
	}
	return f, false
}

// Habit is a recurring practice owned by one user. The server assigns ID.
type Habit struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Frequency   Frequency `json:"frequency"`
}

// HabitCreateRequest is the payload for POST /habits.
type HabitCreateRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Frequency   Frequency `json:"frequency"`
}

// HabitUpdateRequest is the payload for PUT /habits/{id}. Nil fields are left
// unchanged by the server.
type HabitUpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Frequency   *Frequency `json:"frequency,omitempty"`
}

// IsEmpty reports whether the request changes nothing.
func (r HabitUpdateRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Frequency == nil
}

// LogCompletionRequest is the payload for POST /habits/{id}/log.
type LogCompletionRequest struct {
	Date   string `json:"date"` // YYYY-MM-DD format
	Status bool   `json:"status"`
}

// HabitLog is a server-recorded completion event.
type HabitLog struct {
	ID          string `json:"id"`
	HabitID     string `json:"habit_id"`
	CompletedAt string `json:"completed_at,omitempty"`
	Date        string `json:"date,omitempty"`
	Status      bool   `json:"status,omitempty"`
}

// Day returns the calendar day the log was recorded for.
func (l HabitLog) Day() string {
	if l.CompletedAt != "" {
		return l.CompletedAt
	}
	return l.Date
}

// HabitProgress is a server-computed snapshot of one habit's log history.
type HabitProgress struct {
	HabitID              string  `json:"habit_id"`
	CompletionPercentage float64 `json:"completion_percentage"`
	TotalDays            int     `json:"total_days"`
	CompletedDays        int     `json:"completed_days"`
}

// ExpectedPercentage derives the completion percentage from the day counts.
func (p HabitProgress) ExpectedPercentage() float64 {
	if p.TotalDays == 0 {
		return 0
	}
	return 100 * float64(p.CompletedDays) / float64(p.TotalDays)
}
