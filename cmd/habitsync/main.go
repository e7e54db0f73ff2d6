package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitsync/internal/api"
	"github.com/julianstephens/habitsync/internal/cache"
	"github.com/julianstephens/habitsync/internal/cli"
	"github.com/julianstephens/habitsync/internal/cli/auth"
	"github.com/julianstephens/habitsync/internal/cli/habits"
	"github.com/julianstephens/habitsync/internal/cli/system"
	"github.com/julianstephens/habitsync/internal/config"
	"github.com/julianstephens/habitsync/internal/constants"
	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/keyring"
	"github.com/julianstephens/habitsync/internal/logger"
	"github.com/julianstephens/habitsync/internal/progress"
	"github.com/julianstephens/habitsync/internal/session"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_path}"`
	APIURL  string `name:"api-url" help:"Habit service base URL (overrides config)."`
	Debug   bool   `help:"Enable debug logging."`

	Login  auth.LoginCmd    `cmd:"" help:"Log in to the habit service."`
	Signup auth.SignupCmd   `cmd:"" help:"Create an account and log in."`
	Logout auth.LogoutCmd   `cmd:"" help:"Forget the stored session."`
	Whoami auth.WhoamiCmd   `cmd:"" help:"Show the current session."`
	Habit  habits.HabitCmd  `cmd:"" help:"Manage habits and completions."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Init   system.InitCmd   `cmd:"" help:"Write a config file."`
	Conf   system.ConfigCmd `cmd:"" name:"config" help:"Show the effective configuration."`
	Tui    system.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("habitsync"),
		kong.Description("Track habits against a remote habit service"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": config.DefaultPath(),
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.APIURL != "" {
		cfg.API.URL = CLI.APIURL
	}
	if CLI.Debug {
		cfg.Log.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Log.Debug, LogDir: cfg.Log.Dir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	base, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx, err := newContext(base, cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	appCtx.ConfigPath = CLI.Config

	if err := ctx.Run(appCtx); err != nil {
		stop()
		apperrors.Fatal(err)
	}
}

func newContext(base context.Context, cfg *config.Config) (*cli.Context, error) {
	tokens, err := keyring.Open(cfg.Token.Backend, cfg.Token.FileDir, cfg.Token.FilePassword)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.URL, cfg.API.Timeout)
	nav := cli.NewNavigator(os.Stdout)

	store, err := session.New(api.NewAuthGateway(client), tokens, nav)
	if err != nil {
		return nil, err
	}

	gw := api.NewHabitGateway(client, store)
	habitCache := cache.New(gw)
	store.Subscribe(habitCache.OnSessionChange)

	logger.Debug("Context ready", "api", cfg.API.URL, "token_backend", cfg.Token.Backend)

	return &cli.Context{
		Config:   cfg,
		Session:  store,
		Habits:   habitCache,
		Progress: progress.New(gw),
		Nav:      nav,
		Out:      os.Stdout,
		Base:     base,
	}, nil
}
