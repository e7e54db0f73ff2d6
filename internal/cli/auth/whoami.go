package auth

import (
	"time"

	"github.com/julianstephens/habitsync/internal/cli"
	"github.com/julianstephens/habitsync/internal/constants"
)

// WhoamiCmd prints the current session identity.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	s := ctx.Session.Current()
	if !s.Authenticated() {
		ctx.Println(constants.MsgLoginRequired)
		return nil
	}

	name := s.Username
	if name == "" {
		// Restored from a persisted token; the server is not asked who we are.
		name = "signed in (identity unknown until next login)"
	}
	ctx.Printf("User:    %s\n", name)
	if s.UserID != "" {
		ctx.Printf("User ID: %s\n", s.UserID)
	}
	if s.Email != "" {
		ctx.Printf("Email:   %s\n", s.Email)
	}
	ctx.Printf("Server:  %s\n", ctx.Config.API.URL)

	if exp, ok := ctx.Session.TokenExpiry(); ok {
		state := "expires"
		if time.Now().After(exp) {
			state = "expired"
		}
		ctx.Printf("Token:   %s %s (not verified)\n", state, exp.Local().Format(time.RFC1123))
	}
	return nil
}
