package auth

import (
	"fmt"

	"github.com/julianstephens/habitsync/internal/cli"
	"github.com/julianstephens/habitsync/internal/forms"
	"github.com/julianstephens/habitsync/internal/models"
)

type LoginCmd struct {
	Username string `help:"Account username." short:"u"`
	Password string `help:"Account password. Prompted when omitted." env:"HABITSYNC_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	creds := &forms.Credentials{Username: c.Username, Password: c.Password}
	if creds.Username == "" || creds.Password == "" {
		if err := forms.NewLoginForm(creds).Run(); err != nil {
			return fmt.Errorf("login prompt: %w", err)
		}
	}

	s, err := ctx.Session.Login(ctx.Ctx(), creds.Username, creds.Password)
	if err != nil {
		return err
	}

	printIdentity(ctx, "Logged in", s)
	return nil
}

type SignupCmd struct {
	Username string `help:"Account username." short:"u"`
	Email    string `help:"Account email address." short:"e"`
	Password string `help:"Account password. Prompted when omitted." env:"HABITSYNC_PASSWORD"`
}

func (c *SignupCmd) Run(ctx *cli.Context) error {
	creds := &forms.Credentials{Username: c.Username, Email: c.Email, Password: c.Password}
	if creds.Username == "" || creds.Email == "" || creds.Password == "" {
		if err := forms.NewSignupForm(creds).Run(); err != nil {
			return fmt.Errorf("signup prompt: %w", err)
		}
	}

	s, err := ctx.Session.Signup(ctx.Ctx(), creds.Username, creds.Email, creds.Password)
	if err != nil {
		return err
	}

	printIdentity(ctx, "Signed up", s)
	return nil
}

func printIdentity(ctx *cli.Context, verb string, s models.Session) {
	ctx.Printf("✓ %s as %s (user %s)\n", verb, s.Username, s.UserID)
}
