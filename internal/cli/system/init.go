package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitsync/internal/cli"
	"github.com/julianstephens/habitsync/internal/config"
)

// InitCmd writes the active configuration to the config file.
type InitCmd struct {
	Force bool `help:"Overwrite an existing config file."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	path := ctx.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to access config file: %w", err)
	}

	if err := config.Save(path, ctx.Config); err != nil {
		return err
	}
	ctx.Printf("Initialized habitsync config at: %s\n", path)
	return nil
}

// ConfigCmd prints the effective configuration.
type ConfigCmd struct{}

func (c *ConfigCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config
	password := ""
	if cfg.Token.FilePassword != "" {
		password = "****"
	}

	ctx.Printf("config file:         %s\n", ctx.ConfigPath)
	ctx.Printf("api.url:             %s\n", cfg.API.URL)
	ctx.Printf("api.timeout:         %s\n", cfg.API.Timeout)
	ctx.Printf("token.backend:       %s\n", cfg.Token.Backend)
	ctx.Printf("token.file_dir:      %s\n", cfg.Token.FileDir)
	ctx.Printf("token.file_password: %s\n", password)
	ctx.Printf("log.debug:           %t\n", cfg.Log.Debug)
	ctx.Printf("log.dir:             %s\n", cfg.Log.Dir)
	return nil
}
