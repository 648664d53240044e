package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/nvms/internal/session"
	"github.com/felixgeelhaar/nvms/internal/tokenstore"
)

// Pinger reaches the backend without credentials. *api.Client implements it.
type Pinger interface {
	Ping(ctx context.Context, path string) (int, error)
	BaseURL() string
}

// APIChecker verifies that the backend answers HTTP.
type APIChecker struct {
	Client Pinger
	Path   string
}

// Name implements Checker.
func (c APIChecker) Name() string { return "api" }

// Check implements Checker. Any status below 500 counts as reachable: an
// unauthenticated probe is expected to get 401.
func (c APIChecker) Check(ctx context.Context) *Result {
	start := time.Now()
	status, err := c.Client.Ping(ctx, c.Path)
	if err != nil {
		return Unhealthy("backend unreachable").
			WithDetail("base_url", c.Client.BaseURL()).
			WithDetail("error", err.Error())
	}

	var r *Result
	if status >= http.StatusInternalServerError {
		r = Degraded(fmt.Sprintf("backend answered %d", status))
	} else {
		r = Healthy("backend reachable")
	}
	r.Latency = time.Since(start)
	return r.WithDetail("base_url", c.Client.BaseURL()).WithDetail("status", fmt.Sprint(status))
}

// TokenChecker inspects the stored token pair.
type TokenChecker struct {
	Tokens tokenstore.Store
	Now    func() time.Time
}

// Name implements Checker.
func (c TokenChecker) Name() string { return "token" }

// Check implements Checker.
func (c TokenChecker) Check(ctx context.Context) *Result {
	pair, err := tokenstore.LoadPair(c.Tokens)
	if err != nil {
		return Unhealthy("token store unreadable").WithDetail("error", err.Error())
	}
	if pair.Access == "" {
		return Degraded("not logged in").WithDetail("hint", "run 'nvms auth login'")
	}

	claims, err := tokenstore.Inspect(pair.Access)
	if err != nil {
		return Degraded("access token is not a JWT; expiry unknown")
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	expires := claims.ExpiresAt.Format(time.RFC3339)
	switch {
	case !claims.Expired(now()):
		return Healthy("access token valid").WithDetail("expires_at", expires)
	case pair.Refresh != "":
		return Degraded("access token expired; it is refreshed on the next request").WithDetail("expired_at", expires)
	default:
		return Unhealthy("access token expired and no refresh token stored").WithDetail("hint", "run 'nvms auth login'")
	}
}

// SessionChecker resolves the stored token to a user profile.
type SessionChecker struct {
	Session  *session.Store
	HasToken func() bool
}

// Name implements Checker.
func (c SessionChecker) Name() string { return "session" }

// Check implements Checker.
func (c SessionChecker) Check(ctx context.Context) *Result {
	if c.HasToken != nil && !c.HasToken() {
		return Degraded("anonymous")
	}
	snap := c.Session.Mount(ctx)
	if snap.State != session.StateAuthenticated {
		return Unhealthy("profile could not be loaded with the stored token")
	}
	return Healthy("signed in as " + snap.User.Username).
		WithDetail("groups", fmt.Sprint(snap.User.GroupNames))
}
