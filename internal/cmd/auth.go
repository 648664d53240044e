package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/errors"
	"github.com/felixgeelhaar/nvms/internal/session"
	"github.com/felixgeelhaar/nvms/internal/tokenstore"
	"github.com/felixgeelhaar/nvms/internal/tui"
	"github.com/felixgeelhaar/nvms/internal/ux"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign out and inspect the session",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the NVMS backend",
	Long: `Sign in with a username and password. The access and refresh tokens are
stored in the token file (auth.token_file) and reused by every other command.

Examples:
  nvms auth login
  nvms auth login --username alice --password "$NVMS_PASSWORD"`,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored tokens",
	Long:  `Remove the stored tokens. The backend is not contacted.`,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current user, groups and token expiry",
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().String("username", "", "username")
	authLoginCmd.Flags().String("password", "", "password (prompted when omitted on a terminal)")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	if username == "" || password == "" {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("--username and --password are required when not running interactively")
		}
		creds, err := tui.PromptForLogin(username)
		if err != nil {
			return err
		}
		username, password = creds.Username, creds.Password
	}

	return login(cmd.Context(), a, username, password)
}

func login(ctx context.Context, a *app, username, password string) error {
	if err := a.session.Login(ctx, username, password); err != nil {
		return err
	}
	snap := a.session.Snapshot()
	fmt.Fprintf(a.out, "Logged in as %s\n", snap.User.Username)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	a.session.Logout()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	status, err := sessionStatus(cmd.Context(), a, time.Now())
	if err != nil {
		return err
	}
	return a.print(status.view())
}

// authStatus is what `auth status` reports.
type authStatus struct {
	State     string     `json:"state" yaml:"state"`
	Username  string     `json:"username,omitempty" yaml:"username,omitempty"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Email     string     `json:"email,omitempty" yaml:"email,omitempty"`
	Groups    []string   `json:"groups,omitempty" yaml:"groups,omitempty"`
	Admin     bool       `json:"admin" yaml:"admin"`
	ExpiresAt *time.Time `json:"access_expires_at,omitempty" yaml:"access_expires_at,omitempty"`
	Expired   bool       `json:"access_expired" yaml:"access_expired"`
}

func sessionStatus(ctx context.Context, a *app, now time.Time) (*authStatus, error) {
	// Read the expiry before mounting; a refresh during mount replaces the token.
	var claims *tokenstore.Claims
	if access, err := a.tokens.Get(tokenstore.AccessKey); err == nil && access != "" {
		if c, err := tokenstore.Inspect(access); err == nil {
			claims = c
		} else {
			a.logger.Debug("access token not inspectable", "error", err.Error())
		}
	}

	snap := a.session.Mount(ctx)
	if snap.State != session.StateAuthenticated {
		if !a.client.HasToken() {
			return nil, errors.NewNotLoggedInError()
		}
		return &authStatus{State: snap.State.String()}, nil
	}

	status := &authStatus{
		State:    snap.State.String(),
		Username: snap.User.Username,
		Name:     snap.User.Names,
		Email:    snap.User.Email,
		Groups:   a.session.Groups(),
		Admin:    a.navPolicy().IsAdmin(a.session.Groups()),
	}
	if claims != nil {
		status.ExpiresAt = &claims.ExpiresAt
		status.Expired = claims.Expired(now)
	}
	return status, nil
}

func (s *authStatus) view() ux.KeyValues {
	kv := ux.KeyValues{Records: s}.Add("State", s.State)
	if s.Username == "" {
		return kv.Add("Hint", "the profile could not be loaded; check the API URL or run 'nvms auth login'")
	}
	kv = kv.Add("Username", s.Username).
		Add("Name", s.Name).
		Add("Email", s.Email).
		Add("Groups", strings.Join(s.Groups, ", ")).
		Add("Admin", fmt.Sprint(s.Admin))
	if s.ExpiresAt != nil {
		expiry := s.ExpiresAt.Local().Format(time.DateTime)
		if s.Expired {
			expiry += " (expired, refreshed on next request)"
		}
		kv = kv.Add("Access token", expiry)
	}
	return kv
}
