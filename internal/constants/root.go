package constants

import "time"

const (
	AppName            = "habitsync"
	DefaultKeyringUser = "session-token"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Remote service defaults
	DefaultAPIURL     = "http://127.0.0.1:8080"
	DefaultAPITimeout = 15 * time.Second

	// Token storage backends
	TokenBackendOS   = "os"
	TokenBackendFile = "file"

	// DefaultFilePassword unlocks the file vault when no password is configured.
	DefaultFilePassword = "habitsync-file-key"

	// Habit form rules
	MinTitleLength       = 3
	MinDescriptionLength = 10

	// ProgressTolerance is the allowed drift, in percentage points, between the
	// server's completion percentage and 100*completed/total.
	ProgressTolerance = 0.5

	// Log file settings
	LogDirName      = "logs"
	LogFileName     = "habitsync.log"
	LogMaxSizeMB    = 10
	LogMaxBackups   = 3
	LogMaxAgeDays   = 28
	RequestIDHeader = "X-Request-ID"
)
