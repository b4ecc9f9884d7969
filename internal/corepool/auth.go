package corepool

import (
	"context"
	"fmt"
	"net/http"

	"corepool-exporter/internal/components/assert"
	"corepool-exporter/internal/components/telemetry"
)

const (
	report_auth_login = "auth.login"
)

// Authenticator logs an account in with a username and a password.
type Authenticator struct {
	username string
	password string
	tel      telemetry.API
}

func NewAuthenticator(username, password string, tel telemetry.API) Authenticator {
	assert.NotEmptyStr(username, "username")
	assert.NotEmptyStr(password, "password")
	assert.NotNil(tel, "tel")

	return Authenticator{
		username: username,
		password: password,
		tel:      telemetry.NewScopedAPI("corepool.auth", tel),
	}
}

// Login posts the login form once. Only a 200 counts as a successful login, in which
// case the cookies the client now holds are returned. Anything else is ErrLoginFailed
// and is not retried.
func (a Authenticator) Login(ctx context.Context, client Client) (CookieJar, error) {
	a.tel.ReportInfo("trying to login", "username", a.username)

	res, err := client.PostForm(ctx, loginPath, map[string]string{
		"username":          a.username,
		"password":          a.password,
		"remember_password": "on",
	})
	if err != nil {
		a.tel.ReportBroken(report_auth_login, fmt.Errorf("login request: %w", err))
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if res.Status != http.StatusOK {
		a.tel.ReportBroken(report_auth_login, "unexpected status", res.Status)
		return nil, fmt.Errorf("%w: login returned status %d", ErrLoginFailed, res.Status)
	}

	a.tel.ReportInfo("login succeeded", "username", a.username)
	return client.Cookies(), nil
}
