// Package clitest wires a complete command context against an in-process
// fake service for command and TUI tests.
package clitest

import (
	"bytes"
	"context"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitsync/internal/api"
	"github.com/julianstephens/habitsync/internal/cache"
	"github.com/julianstephens/habitsync/internal/cli"
	"github.com/julianstephens/habitsync/internal/config"
	"github.com/julianstephens/habitsync/internal/keyring"
	"github.com/julianstephens/habitsync/internal/progress"
	"github.com/julianstephens/habitsync/internal/session"
	"github.com/julianstephens/habitsync/internal/testutil/fakeapi"
)

// Env is a wired command context plus the fake service behind it.
type Env struct {
	Ctx    *cli.Context
	Server *fakeapi.Server
	Out    *bytes.Buffer
}

// New builds an Env with a mocked OS keyring and no session.
func New(t *testing.T) *Env {
	t.Helper()
	gokeyring.MockInit()

	srv := fakeapi.New()
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.URL = srv.URL

	out := &bytes.Buffer{}
	client := api.NewClient(cfg.API.URL, 5*time.Second)
	nav := cli.NewNavigator(out)

	store, err := session.New(api.NewAuthGateway(client), keyring.NewOSStore(), nav)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	gw := api.NewHabitGateway(client, store)
	habits := cache.New(gw)
	unsubscribe := store.Subscribe(habits.OnSessionChange)
	t.Cleanup(unsubscribe)

	return &Env{
		Ctx: &cli.Context{
			Config:   cfg,
			Session:  store,
			Habits:   habits,
			Progress: progress.New(gw),
			Nav:      nav,
			Out:      out,
			Base:     context.Background(),
		},
		Server: srv,
		Out:    out,
	}
}

// Login registers username on the fake service and logs in as it. It
// returns the new user's id.
func (e *Env) Login(t *testing.T, username string) string {
	t.Helper()
	userID := e.Server.AddUser(username, username+"@example.com", "secret")
	if _, err := e.Ctx.Session.Login(e.Ctx.Ctx(), username, "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	e.Out.Reset()
	return userID
}
