package auth

import (
	"github.com/julianstephens/habitsync/internal/cli"
)

// LogoutCmd forgets the session. Running it while logged out is fine.
type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	return ctx.Session.Logout()
}
