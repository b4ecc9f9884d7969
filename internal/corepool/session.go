package corepool

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"corepool-exporter/internal/components/assert"
	"corepool-exporter/internal/components/telemetry"
)

const (
	report_session_load_client     = "session.load-client"
	report_session_load_cookies    = "session.load-cookies"
	report_session_fetch_dashboard = "session.fetch-dashboard"
	report_session_fetch_pool      = "session.fetch-pool"
)

// SessionStore persists the client state and the cookie jar independently. Loads
// return ErrNotFound when nothing was persisted yet.
type SessionStore interface {
	LoadClient() (ClientState, error)
	SaveClient(state ClientState) error
	LoadCookies() (CookieJar, error)
	SaveCookies(jar CookieJar) error
}

// ClientProvider creates challenge-passing clients.
type ClientProvider interface {
	Acquire(ctx context.Context) (Client, ClientState, error)
	Restore(state ClientState) (Client, error)
}

// LoginAPI logs a client in and returns the resulting cookies.
type LoginAPI interface {
	Login(ctx context.Context, client Client) (CookieJar, error)
}

type State int

const (
	StateNoClient State = iota
	StateClientReady
	StateAuthenticated
	StateFetching
	StateReauthenticating
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNoClient:
		return "no-client"
	case StateClientReady:
		return "client-ready"
	case StateAuthenticated:
		return "authenticated"
	case StateFetching:
		return "fetching"
	case StateReauthenticating:
		return "reauthenticating"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionManager owns the client and its session for a single run. It is not safe for
// concurrent use.
type SessionManager struct {
	store   SessionStore
	clients ClientProvider
	auth    LoginAPI
	tel     telemetry.API

	client Client
	state  State
	logins int
}

func NewSessionManager(store SessionStore, clients ClientProvider, auth LoginAPI, tel telemetry.API) *SessionManager {
	assert.NotNil(store, "store")
	assert.NotNil(clients, "clients")
	assert.NotNil(auth, "auth")
	assert.NotNil(tel, "tel")

	return &SessionManager{
		store:   store,
		clients: clients,
		auth:    auth,
		tel:     telemetry.NewScopedAPI("corepool.session", tel),
		state:   StateNoClient,
	}
}

func (m *SessionManager) State() State {
	return m.state
}

// Logins is the number of login attempts made during this run.
func (m *SessionManager) Logins() int {
	return m.logins
}

// Ready loads or creates the client, then loads the persisted cookies or logs in.
// It is a no-op once the manager is past StateClientReady.
func (m *SessionManager) Ready(ctx context.Context) error {
	if m.state == StateNoClient {
		err := m.loadClient(ctx)
		if err != nil {
			return err
		}
		m.state = StateClientReady
	}
	if m.state == StateClientReady {
		err := m.loadCookies(ctx)
		if err != nil {
			return err
		}
		m.state = StateAuthenticated
	}
	return nil
}

func (m *SessionManager) loadClient(ctx context.Context) error {
	state, err := m.store.LoadClient()
	switch {
	case err == nil:
		m.tel.ReportInfo("found a persisted client, loading it", "user-agent", state.UserAgent())
		client, err := m.clients.Restore(state)
		if err != nil {
			m.tel.ReportBroken(report_session_load_client, fmt.Errorf("restore: %w", err))
			return fmt.Errorf("restore persisted client: %w", err)
		}
		m.client = client
		return nil
	case errors.Is(err, ErrNotFound):
		m.tel.ReportInfo("no persisted client, creating a challenge-passing client")
		client, state, err := m.clients.Acquire(ctx)
		if err != nil {
			return err
		}
		err = m.store.SaveClient(state)
		if err != nil {
			m.tel.ReportBroken(report_session_load_client, fmt.Errorf("persist: %w", err))
			return err
		}
		m.client = client
		return nil
	default:
		m.tel.ReportBroken(report_session_load_client, err)
		return err
	}
}

func (m *SessionManager) loadCookies(ctx context.Context) error {
	jar, err := m.store.LoadCookies()
	switch {
	case err == nil:
		m.tel.ReportInfo("found persisted cookies, importing them", "count", len(jar))
		m.client.SetCookies(jar)
		return nil
	case errors.Is(err, ErrNotFound):
		m.tel.ReportInfo("no persisted cookies, logging in")
		return m.login(ctx)
	default:
		m.tel.ReportBroken(report_session_load_cookies, err)
		return err
	}
}

func (m *SessionManager) login(ctx context.Context) error {
	m.logins++
	jar, err := m.auth.Login(ctx, m.client)
	if err != nil {
		return err
	}
	return m.store.SaveCookies(jar)
}

// FetchDashboard returns the body of the account dashboard. The dashboard is requested
// without following redirects, since a redirect to the login page is the only sign that
// the session cookies expired. On a redirect the manager logs in once, persists the new
// cookies and retries; a second redirect is ErrSessionExpired.
func (m *SessionManager) FetchDashboard(ctx context.Context) (string, error) {
	err := m.Ready(ctx)
	if err != nil {
		return "", err
	}

	m.state = StateFetching
	res, err := m.client.GetNoRedirect(ctx, dashboardPath)
	if err != nil {
		m.tel.ReportBroken(report_session_fetch_dashboard, err)
		return "", err
	}

	if res.IsRedirect() {
		m.state = StateReauthenticating
		m.tel.ReportInfo("session expired, logging in again", "status", res.Status, "location", res.Location)

		err = m.login(ctx)
		if err != nil {
			return "", err
		}

		m.state = StateFetching
		res, err = m.client.GetNoRedirect(ctx, dashboardPath)
		if err != nil {
			m.tel.ReportBroken(report_session_fetch_dashboard, err)
			return "", err
		}
		if res.IsRedirect() {
			m.tel.ReportBroken(report_session_fetch_dashboard, ErrSessionExpired, "status", res.Status, "location", res.Location)
			return "", fmt.Errorf("%w: dashboard redirected to %q", ErrSessionExpired, res.Location)
		}
	}

	switch res.Status {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusServiceUnavailable:
		m.tel.ReportWarning(
			report_session_fetch_dashboard,
			"unexpected status", res.Status,
			"hint", "the persisted client may have lost its challenge clearance, run reset to acquire a new one",
		)
	default:
		m.tel.ReportWarning(report_session_fetch_dashboard, "unexpected status", res.Status)
	}
	m.state = StateDone
	return res.Body, nil
}

// FetchPool returns the body of the site root, which carries the pool-wide statistics.
func (m *SessionManager) FetchPool(ctx context.Context) (string, error) {
	err := m.Ready(ctx)
	if err != nil {
		return "", err
	}

	res, err := m.client.Get(ctx, rootPath)
	if err != nil {
		m.tel.ReportBroken(report_session_fetch_pool, err)
		return "", err
	}
	if res.Status != http.StatusOK {
		m.tel.ReportWarning(report_session_fetch_pool, "unexpected status", res.Status)
	}
	return res.Body, nil
}
