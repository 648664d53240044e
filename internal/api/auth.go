package api

import (
	"context"
	stderrors "errors"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/felixgeelhaar/nvms/internal/errors"
	"github.com/felixgeelhaar/nvms/internal/tokenstore"
)

// Auth endpoints, relative to the base URL.
const (
	LoginPath   = "auth/login/"
	RefreshPath = "auth/refresh/"
	MePath      = "auth/me/"
)

var errNoRefreshToken = fmt.Errorf("no refresh token stored")

// LoginRequest is the body of POST auth/login/.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// UserProfile is the current user as reported by auth/me/.
// The client never edits it; it is re-fetched after anything that may change it.
type UserProfile struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Names       string   `json:"names"`
	Email       string   `json:"email"`
	GroupNames  []string `json:"group_names"`
	IsAdmin     bool     `json:"is_admin"`
	IsStaff     bool     `json:"is_staff"`
	IsSuperuser bool     `json:"is_superuser"`
}

// InGroup reports whether the user belongs to group.
func (u *UserProfile) InGroup(group string) bool {
	for _, g := range u.GroupNames {
		if g == group {
			return true
		}
	}
	return false
}

// Login exchanges credentials for a token pair and persists both tokens before
// returning. Auth endpoints bypass the refresh path and carry no bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (tokenstore.TokenPair, error) {
	req := &request{method: http.MethodPost, path: LoginPath}
	payload, err := json.Marshal(LoginRequest{Username: username, Password: password})
	if err != nil {
		return tokenstore.TokenPair{}, errors.Wrap(errors.ErrCodeAPIEncode, "failed to marshal login request", err)
	}
	req.body = payload

	status, raw, requestID, err := c.roundTrip(ctx, req, "")
	if err != nil {
		return tokenstore.TokenPair{}, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return tokenstore.TokenPair{}, errors.NewLoginRejectedError(username, newStatusError(req.method, req.path, status, raw, requestID))
	}
	if status < 200 || status >= 300 {
		return tokenstore.TokenPair{}, newStatusError(req.method, req.path, status, raw, requestID)
	}

	var pair tokenstore.TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return tokenstore.TokenPair{}, errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode login response", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		return tokenstore.TokenPair{}, errors.New(errors.ErrCodeAPIDecode, "login response is missing tokens")
	}

	if err := tokenstore.SavePair(c.tokens, pair); err != nil {
		return tokenstore.TokenPair{}, err
	}
	c.logger.Info("logged in", "username", username)
	return pair, nil
}

// Logout drops both tokens and navigates to login. No request is made.
func (c *Client) Logout() {
	if err := tokenstore.Clear(c.tokens); err != nil {
		c.logger.LogError("failed to clear tokens", err)
	}
	c.navigator.ToLogin()
}

// HasToken reports whether an access token is stored.
func (c *Client) HasToken() bool {
	token, err := c.tokens.Get(tokenstore.AccessKey)
	return err == nil && token != ""
}

// Me fetches the current user's profile.
func (c *Client) Me(ctx context.Context) (*UserProfile, error) {
	raw, err := c.DoRaw(ctx, http.MethodGet, MePath, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

// decodeProfile accepts group_names, or a groups list of names or {name} objects.
func decodeProfile(raw []byte) (*UserProfile, error) {
	var profile UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode user profile", err)
	}

	if len(profile.GroupNames) == 0 {
		gjson.GetBytes(raw, "groups").ForEach(func(_, g gjson.Result) bool {
			name := g.String()
			if g.IsObject() {
				name = g.Get("name").String()
			}
			if name != "" {
				profile.GroupNames = append(profile.GroupNames, name)
			}
			return true
		})
	}
	if profile.GroupNames == nil {
		profile.GroupNames = []string{}
	}
	return &profile, nil
}

// recoverAuth runs after a 401 for a request sent with failedToken.
//
// If another request already replaced the access token, nothing is refreshed and
// the caller retries with the stored token. Otherwise one refresh is performed;
// concurrent callers holding the same refresh token share it.
func (c *Client) recoverAuth(ctx context.Context, failedToken string) error {
	current, err := c.tokens.Get(tokenstore.AccessKey)
	if err != nil {
		return err
	}
	if current != "" && current != failedToken {
		return nil
	}

	refresh, err := c.tokens.Get(tokenstore.RefreshKey)
	if err != nil {
		return err
	}
	if refresh == "" {
		c.expire(errNoRefreshToken)
		return errors.NewAuthExpiredError(errNoRefreshToken)
	}

	// The flight outlives any single caller: one caller giving up must not fail
	// or log out the others. The HTTP client timeout still bounds it.
	flightCtx := context.WithoutCancel(ctx)
	flight := c.refreshes.DoChan(refresh, func() (any, error) {
		// A flight that finished just before this one may already have replaced
		// the token.
		if stored, _ := c.tokens.Get(tokenstore.AccessKey); stored != "" && stored != failedToken {
			return nil, nil
		}
		if err := c.refresh(flightCtx, refresh); err != nil {
			if !isContextError(err) {
				c.expire(err)
			}
			return nil, err
		}
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-flight:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if res.Err != nil {
			if isContextError(res.Err) {
				return res.Err
			}
			return errors.NewAuthExpiredError(res.Err)
		}
		return nil
	}
}

func isContextError(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// refresh mints a new access token and persists it (plus a rotated refresh token
// when the backend returns one).
func (c *Client) refresh(ctx context.Context, refreshToken string) error {
	payload, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return err
	}
	req := &request{method: http.MethodPost, path: RefreshPath, body: payload}

	status, raw, requestID, err := c.roundTrip(ctx, req, "")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return newStatusError(req.method, req.path, status, raw, requestID)
	}

	var pair tokenstore.TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode refresh response", err)
	}
	if pair.Access == "" {
		return errors.New(errors.ErrCodeAPIDecode, "refresh response has no access token")
	}

	if err := c.tokens.Set(tokenstore.AccessKey, pair.Access); err != nil {
		return err
	}
	if pair.Refresh != "" {
		if err := c.tokens.Set(tokenstore.RefreshKey, pair.Refresh); err != nil {
			return err
		}
	}
	c.logger.Debug("access token refreshed")
	return nil
}

// expire clears credentials and sends the user to login.
func (c *Client) expire(cause error) {
	c.logger.Warn("session expired", "cause", cause.Error())
	if err := tokenstore.Clear(c.tokens); err != nil {
		c.logger.LogError("failed to clear tokens", err)
	}
	c.navigator.ToLogin()
}
