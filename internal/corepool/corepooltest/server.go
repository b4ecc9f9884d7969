// Package corepooltest serves a fake core-pool.com for tests: a challenge on the site
// root, a login form and a dashboard that redirects to the login page without a valid
// session.
package corepooltest

import (
	_ "embed"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const (
	ClearanceCookie = "cf_clearance"
	SessionCookie   = "core_session"
)

//go:embed testdata/dashboard.html
var DashboardPage string

//go:embed testdata/home.html
var HomePage string

type FakePool struct {
	Server   *httptest.Server
	Username string
	Password string

	mu                sync.Mutex
	challengeFailures int
	clearances        map[string]bool
	sessions          map[string]bool
	alwaysExpire      bool
	loginStatus       int
	requests          map[string]int
	userAgents        []string
	issued            int
	dashboardPage     string
	homePage          string
}

// NewFakePool starts a fake upstream that accepts username/password. The server is
// closed when the test finishes.
func NewFakePool(t testing.TB, username, password string) *FakePool {
	t.Helper()

	p := &FakePool{
		Username:   username,
		Password:   password,
		clearances: map[string]bool{},
		sessions:   map[string]bool{},
		requests:   map[string]int{},

		dashboardPage: DashboardPage,
		homePage:      HomePage,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", p.handleRoot)
	mux.HandleFunc("/login", p.handleLogin)
	mux.HandleFunc("/dashboard", p.handleDashboard)

	p.Server = httptest.NewServer(p.record(mux))
	t.Cleanup(p.Server.Close)
	return p
}

func (p *FakePool) URL() string {
	return p.Server.URL
}

// FailChallenges makes the next n challenge probes answer 503.
func (p *FakePool) FailChallenges(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.challengeFailures = n
}

// ExpireSessions forgets every session handed out so far, clearance cookies stay valid.
func (p *FakePool) ExpireSessions() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = map[string]bool{}
}

// RevokeClearances forgets every clearance cookie handed out so far, as if they expired
// upstream.
func (p *FakePool) RevokeClearances() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearances = map[string]bool{}
}

// AlwaysExpire makes the dashboard redirect to the login page even with a fresh session.
func (p *FakePool) AlwaysExpire() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alwaysExpire = true
}

// SetLoginStatus forces the status of every login response, 0 restores normal behavior.
func (p *FakePool) SetLoginStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loginStatus = status
}

// SetPages replaces the bodies served for the dashboard and the site root.
func (p *FakePool) SetPages(dashboard, home string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dashboardPage = dashboard
	p.homePage = home
}

// Requests returns how many requests were made with the given method and path, for
// example "GET /dashboard".
func (p *FakePool) Requests(route string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[route]
}

// UserAgents returns the User-Agent of every request in order.
func (p *FakePool) UserAgents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.userAgents...)
}

func (p *FakePool) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.requests[r.Method+" "+r.URL.Path]++
		p.userAgents = append(p.userAgents, r.UserAgent())
		p.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (p *FakePool) hasCookie(r *http.Request, name string, valid map[string]bool) bool {
	cookie, err := r.Cookie(name)
	if err != nil {
		return false
	}
	return valid[cookie.Value]
}

func (p *FakePool) nextToken(prefix string) string {
	p.issued++
	return fmt.Sprintf("%s-%d", prefix, p.issued)
}

func (p *FakePool) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	p.mu.Lock()
	cleared := p.hasCookie(r, ClearanceCookie, p.clearances)
	if !cleared {
		if p.challengeFailures > 0 {
			p.challengeFailures--
			p.mu.Unlock()
			http.Error(w, "Just a moment...", http.StatusServiceUnavailable)
			return
		}
		token := p.nextToken("clearance")
		p.clearances[token] = true
		http.SetCookie(w, &http.Cookie{
			Name:     ClearanceCookie,
			Value:    token,
			Path:     "/",
			MaxAge:   3600,
			HttpOnly: true,
		})
	}
	page := p.homePage
	p.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

func (p *FakePool) handleLogin(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasCookie(r, ClearanceCookie, p.clearances) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<form method="post"><input name="username"><input name="password"></form>`)
		return
	}
	if p.loginStatus != 0 {
		w.WriteHeader(p.loginStatus)
		return
	}

	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("username") != p.Username ||
		r.PostForm.Get("password") != p.Password ||
		r.PostForm.Get("remember_password") != "on" {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token := p.nextToken("session")
	p.sessions[token] = true
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<p>Welcome back</p>")
}

func (p *FakePool) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasCookie(r, ClearanceCookie, p.clearances) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if p.alwaysExpire || !p.hasCookie(r, SessionCookie, p.sessions) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, p.dashboardPage)
}
