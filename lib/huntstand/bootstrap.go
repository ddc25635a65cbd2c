package huntstand

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log/slog"
	"strings"
)

type Credentials struct {
	SessionID string
	CSRFToken string
	Username  string
	Password  string
}

// EstablishSession builds an authenticated client following the credential
// priority order: pre-resolved cookies (file over environment, merged by the
// caller), then the username/password login fallback, then unauthenticated
// with a warning -- some read endpoints tolerate that. With allowLogin false
// and no session cookie it fails with ErrNoSession instead.
//
// A TLS-specific failure probing the service root disables certificate
// verification for the rest of the run, with a prominent warning.
func EstablishSession(ctx context.Context, opts ClientOptions, creds Credentials, allowLogin bool) (*Client, error) {
	c, err := NewSessionFromCookies(opts, creds.SessionID, creds.CSRFToken)
	if err != nil {
		return nil, err
	}

	_, err = c.Http.R().SetContext(ctx).Get(rootPath)
	if err != nil {
		if isTLSError(err) {
			slog.Warn("TLS verification failed against service root", "err", err)
			c.DisableTLSVerify()
		} else {
			slog.Debug("root GET warning", "err", err)
		}
	}

	if c.Cookie("sessionid") != "" {
		return c, nil
	}
	if !allowLogin {
		return nil, ErrNoSession
	}
	if creds.Username != "" && creds.Password != "" {
		if !c.AttemptLogin(ctx, creds.Username, creds.Password) {
			slog.Warn("login attempt did not produce a session cookie; some endpoints may fail")
		}
	} else {
		slog.Warn("no session cookie and no credentials configured; some endpoints may fail")
	}
	return c, nil
}

func isTLSError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tls") ||
		strings.Contains(msg, "x509") ||
		strings.Contains(msg, "certificate")
}
