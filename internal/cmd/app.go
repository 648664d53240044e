package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/api"
	"github.com/felixgeelhaar/nvms/internal/config"
	"github.com/felixgeelhaar/nvms/internal/errors"
	"github.com/felixgeelhaar/nvms/internal/log"
	"github.com/felixgeelhaar/nvms/internal/nav"
	"github.com/felixgeelhaar/nvms/internal/session"
	"github.com/felixgeelhaar/nvms/internal/tokenstore"
	"github.com/felixgeelhaar/nvms/internal/ux"
)

// app is the object graph one command runs against.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	tokens  tokenstore.Store
	client  *api.Client
	session *session.Store
	out     io.Writer
	errOut  io.Writer
}

// loadApp reads configuration and wires the client for cmd.
func loadApp(cmd *cobra.Command) (*app, error) {
	if err := config.LoadEnvFile(config.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, tokenstore.NewFileStore(cfg.Auth.TokenFile), cmd.OutOrStdout(), cmd.ErrOrStderr()), nil
}

func newApp(cfg *config.Config, tokens tokenstore.Store, out, errOut io.Writer) *app {
	logCfg := log.FromStrings(cfg.Log.Level, cfg.Log.Format)
	logCfg.Output = log.NewOutput(errOut)
	logger := log.New(logCfg)
	log.SetDefaultLogger(logger)

	a := &app{cfg: cfg, logger: logger, tokens: tokens, out: out, errOut: errOut}
	a.client = api.New(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		Tokens:    tokens,
		Navigator: api.NavigatorFunc(a.toLogin),
		Logger:    logger,
	})
	a.session = session.NewStore(a.client, logger)
	return a
}

// toLogin is the terminal's login screen: there is nowhere to redirect, so the
// user is told how to sign in again.
func (a *app) toLogin() {
	fmt.Fprintln(a.errOut, "Session ended. Run 'nvms auth login' to sign in again.")
}

// requireLogin fails fast when no access token is stored.
func (a *app) requireLogin() error {
	if !a.client.HasToken() {
		return errors.NewNotLoggedInError()
	}
	return nil
}

func (a *app) navPolicy() nav.Policy {
	return nav.Policy{AdminGroup: a.cfg.Nav.AdminGroup, AdminOverride: a.cfg.Nav.AdminOverride}
}

// print writes data in the configured output format.
func (a *app) print(data any) error {
	formatter, err := ux.NewFormatter(a.cfg.Output.Format, &ux.FormatterOptions{Writer: a.out})
	if err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}
	return formatter.Format(data)
}
