package huntstand

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"
)

// ErrNoSession is reported when no session cookie could be obtained and the
// login fallback is disabled or failed.
var ErrNoSession = errors.New("no usable session cookie")

const (
	rootPath  = "/"
	loginPath = "/login"

	// pause between the two login attempts, the upstream rate-limits
	// the login endpoint aggressively
	loginCooldown = time.Second
)

// LoadCookiesFromFile reads a JSON file of the form
// {"sessionid": "...", "csrftoken": "..."}, accepting a few aliased key
// names for each token. Any failure logs and yields empty values, never an
// error: a broken cookies file just demotes the run to the next credential
// source.
func LoadCookiesFromFile(path string) (sessionid, csrftoken string) {
	contents, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read cookies file", "path", path, "err", err)
		return "", ""
	}
	var data map[string]any
	if err := json.Unmarshal(contents, &data); err != nil {
		slog.Error("failed to parse cookies file", "path", path, "err", err)
		return "", ""
	}
	sessionid = stringField(data, "sessionid", "session_id", "sessionId")
	csrftoken = stringField(data, "csrftoken", "csrf", "csrftoken_cookie")
	slog.Info("loaded cookies file", "path", path)
	return sessionid, csrftoken
}

// NewSessionFromCookies builds a client and, when provided, installs the
// session and CSRF cookies scoped to the service's own domain (derived from
// the base URL, never an external domain).
func NewSessionFromCookies(opts ClientOptions, sessionid, csrftoken string) (*Client, error) {
	c, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	if sessionid != "" {
		c.setCookie("sessionid", sessionid)
		slog.Info("installed sessionid cookie", "domain", c.BaseUrl.Hostname())
	}
	if csrftoken != "" {
		c.setCookie("csrftoken", csrftoken)
		slog.Info("installed csrftoken cookie", "domain", c.BaseUrl.Hostname())
	}
	return c, nil
}

// AttemptLogin tries the username/password fallback. It GETs the service
// root to harvest a CSRF cookie, then POSTs the login form twice: the
// upstream form's user field has been observed under both "login" and
// "username", so both are tried in that order. Success is the appearance of
// a sessionid cookie, regardless of HTTP status -- the upstream is known to
// return misleading statuses on successful logins.
func (c *Client) AttemptLogin(ctx context.Context, username, password string) bool {
	slog.Info("attempting login fallback")

	_, err := c.Http.R().SetContext(ctx).Get(rootPath)
	if err != nil {
		// keep going, the server may still accept the POST
		slog.Warn("root GET failed during login attempt", "err", err)
	}

	csrf := c.Cookie("csrftoken")
	if csrf == "" {
		slog.Warn("no csrftoken cookie available before login attempt; login may fail")
	}

	for i, userField := range []string{"login", "username"} {
		if i > 0 {
			time.Sleep(loginCooldown)
		}
		form := map[string]string{
			"csrfmiddlewaretoken": csrf,
			"password":            password,
			"source":              "web",
			userField:             username,
		}
		res, err := c.Http.R().
			SetContext(ctx).
			SetFormData(form).
			SetHeader("Origin", c.BaseUrl.Scheme+"://"+c.BaseUrl.Host).
			Post(loginPath)
		if err != nil {
			slog.Debug("login attempt failed", "field", userField, "err", err)
			continue
		}
		if c.Cookie("sessionid") != "" {
			slog.Info("login succeeded", "field", userField)
			return true
		}
		slog.Debug(
			"login POST yielded no session cookie",
			"field", userField,
			"status", res.StatusCode(),
		)
	}
	return false
}
