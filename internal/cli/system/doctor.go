package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitsync/internal/cli"
	"github.com/julianstephens/habitsync/internal/constants"
	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/keyring"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false

	// Check 1: Configuration
	if err := ctx.Config.Validate(); err != nil {
		ctx.Printf("❌ Configuration: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Configuration: OK (%s)\n", ctx.ConfigPath)
	}

	// Check 2: Token storage
	if err := checkTokenStore(ctx); err != nil {
		ctx.Printf("❌ Token storage: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Token storage: OK (%s)\n", ctx.Config.Token.Backend)
	}

	// Check 3: Session (warning only)
	authenticated := ctx.Session.IsAuthenticated()
	if !authenticated {
		ctx.Printf("⚠ Session: WARNING\n")
		ctx.Printf("   %s\n", constants.MsgLoginRequired)
	} else if exp, ok := ctx.Session.TokenExpiry(); ok && time.Now().After(exp) {
		ctx.Printf("⚠ Session: WARNING\n")
		ctx.Printf("   token expired %s; log in again\n", exp.Local().Format(time.RFC1123))
	} else {
		ctx.Printf("✓ Session: OK\n")
	}

	// Check 4: Server
	if err := checkServer(ctx, authenticated); err != nil {
		ctx.Printf("❌ Server reachable: FAIL\n")
		ctx.Printf("   Error: %s\n", apperrors.UserMessage(err))
		hasError = true
	} else {
		ctx.Printf("✓ Server reachable: OK (%s)\n", ctx.Config.API.URL)
	}

	// Check 5: Clock
	if err := checkClock(); err != nil {
		ctx.Printf("❌ Clock: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Clock: OK (today is %s)\n", time.Now().Format(constants.DateFormat))
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkTokenStore(ctx *cli.Context) error {
	if ctx.Config.Token.Backend == constants.TokenBackendOS && !keyring.IsAvailable() {
		return fmt.Errorf("%w; set token.backend to %q", keyring.ErrKeyringUnavailable, constants.TokenBackendFile)
	}
	return nil
}

// checkServer lists habits. Without a session a 401 still proves the server
// answered.
func checkServer(ctx *cli.Context, authenticated bool) error {
	_, err := ctx.Habits.Refresh(ctx.Ctx())
	if err == nil {
		return nil
	}

	var remote *apperrors.RemoteError
	if errors.As(err, &remote) && remote.Unauthorized() && !authenticated {
		return nil
	}
	return err
}

func checkClock() error {
	now := time.Now()
	// Check if time is in a reasonable range
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
