package corepool

import (
	"context"
	"net/http"
	"time"
)

const (
	rootPath      = "/"
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

// ClientState is everything needed to rebuild a client that already passed the
// challenge. It is produced once per successful challenge and never patched afterwards,
// a new challenge run produces a new state.
type ClientState struct {
	BaseUrl string
	// Headers is the identity presented to the upstream (User-Agent, Accept, ...), it is
	// re-applied verbatim to every request of a rebuilt client.
	Headers map[string]string
	// ChallengeCookies are the cookies the upstream handed out while the challenge was
	// being passed (clearance cookies), they belong to the transport identity and not
	// to the login session.
	ChallengeCookies CookieJar
	CreatedAt        time.Time
}

func (s ClientState) UserAgent() string {
	return s.Headers["User-Agent"]
}

// Cookie is a persisted cookie with the metadata needed to put it back in a jar.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time
	Secure   bool
	HttpOnly bool
}

func (c Cookie) toHttp() *http.Cookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     path,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
}

// CookieJar maps a cookie name to the cookie.
type CookieJar map[string]Cookie

// Response is the subset of an http response the pipeline looks at.
type Response struct {
	Status   int
	Body     string
	Location string
}

func (r Response) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400
}

// Client is an http client that passed the challenge and carries the session cookies.
type Client interface {
	// Get follows redirects within the upstream host.
	Get(ctx context.Context, path string) (Response, error)
	// GetNoRedirect returns a redirect response as is instead of following it.
	GetNoRedirect(ctx context.Context, path string) (Response, error)
	PostForm(ctx context.Context, path string, form map[string]string) (Response, error)
	// Cookies returns the cookies the client would currently send to the upstream.
	Cookies() CookieJar
	// SetCookies merges jar into the client's cookies, replacing cookies of the same name.
	SetCookies(jar CookieJar)
}
