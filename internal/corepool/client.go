package corepool

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"corepool-exporter/internal/components/assert"
	"corepool-exporter/internal/components/telemetry"
	"corepool-exporter/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_get       = "client.get"
	report_client_post_form = "client.post-form"
)

type ClientOptions struct {
	// Timeout bounds a single request including redirects, 0 means no timeout.
	Timeout time.Duration
	// RequestsPerSecond limits outgoing requests, 0 disables the limit.
	RequestsPerSecond float64
	// Dump receives the full text of every exchange, nil disables dumping.
	Dump restyutil.InstrumentOutput
}

// HttpClient is the resty-backed Client. Requests go through the Cloudflare bypass
// transport and carry the headers of the ClientState it was built from.
type HttpClient struct {
	state   ClientState
	baseUrl *url.URL
	http    *resty.Client
	jar     *recordingJar
	tel     telemetry.API
}

var _ Client = (*HttpClient)(nil)

// NewClient builds a client from state. The challenge cookies of state are put in the
// jar so a persisted state can be reused without passing the challenge again.
func NewClient(state ClientState, opts ClientOptions, tel telemetry.API) (*HttpClient, error) {
	assert.NotNil(tel, "tel")
	assert.NotEmptyStr(state.BaseUrl, "state.BaseUrl")

	baseUrl, err := url.Parse(state.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	jar, err := newRecordingJar()
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(state.BaseUrl)
	httpClient.SetCookieJar(jar)
	httpClient.SetHeaders(state.Headers)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(
		httpClient.GetClient().Transport,
		cloudflarebp.Options{
			AddMissingHeaders: true,
			Headers:           maps.Clone(state.Headers),
		},
	)
	httpClient.SetRedirectPolicy(
		noRedirectPolicy(),
		resty.FlexibleRedirectPolicy(10),
		resty.DomainCheckRedirectPolicy(baseUrl.Hostname()),
	)
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	if opts.RequestsPerSecond > 0 {
		// max burst >= 2 just means that no requests will be dropped
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, "corepool/http")
	restyutil.DumpExchanges(httpClient, opts.Dump)

	c := &HttpClient{
		state:   state,
		baseUrl: baseUrl,
		http:    httpClient,
		jar:     jar,
		tel:     tel,
	}
	c.SetCookies(state.ChallengeCookies)
	return c, nil
}

func (c *HttpClient) State() ClientState {
	return c.state
}

func (c *HttpClient) Get(ctx context.Context, path string) (Response, error) {
	return c.get(ctx, path)
}

func (c *HttpClient) GetNoRedirect(ctx context.Context, path string) (Response, error) {
	return c.get(withoutRedirects(ctx), path)
}

func (c *HttpClient) get(ctx context.Context, path string) (Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		c.tel.ReportBroken(report_client_get, fmt.Errorf("fetch: %w", err), path)
		return Response{}, fmt.Errorf("GET %s: %w", path, err)
	}
	return toResponse(res), nil
}

func (c *HttpClient) PostForm(ctx context.Context, path string, form map[string]string) (Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(path)
	if err != nil {
		c.tel.ReportBroken(report_client_post_form, fmt.Errorf("fetch: %w", err), path)
		return Response{}, fmt.Errorf("POST %s: %w", path, err)
	}
	return toResponse(res), nil
}

func (c *HttpClient) Cookies() CookieJar {
	return c.jar.snapshot(c.baseUrl)
}

func (c *HttpClient) SetCookies(jar CookieJar) {
	if len(jar) == 0 {
		return
	}
	cookies := make([]*http.Cookie, 0, len(jar))
	for _, cookie := range jar {
		cookies = append(cookies, cookie.toHttp())
	}
	c.jar.SetCookies(c.baseUrl, cookies)
}

func toResponse(res *resty.Response) Response {
	return Response{
		Status:   res.StatusCode(),
		Body:     string(res.Body()),
		Location: res.Header().Get("Location"),
	}
}

type noRedirectKeyType int

var noRedirectKey noRedirectKeyType

func withoutRedirects(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRedirectKey, true)
}

// noRedirectPolicy stops at the first redirect of a request made with
// withoutRedirects and hands the 3xx response back to the caller.
func noRedirectPolicy() resty.RedirectPolicy {
	return resty.RedirectPolicyFunc(func(req *http.Request, _ []*http.Request) error {
		if disabled, _ := req.Context().Value(noRedirectKey).(bool); disabled {
			return http.ErrUseLastResponse
		}
		return nil
	})
}

// recordingJar is a cookiejar.Jar that also remembers the attributes of every cookie it
// was given, cookiejar.Jar only hands back names and values.
type recordingJar struct {
	*cookiejar.Jar

	mu   sync.Mutex
	meta map[string]Cookie
}

func newRecordingJar() (*recordingJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &recordingJar{Jar: jar, meta: map[string]Cookie{}}, nil
}

func (j *recordingJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.Jar.SetCookies(u, cookies)

	now := time.Now()
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range cookies {
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		j.meta[c.Name] = Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     path,
			Expires:  expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
	}
}

// snapshot returns the live cookies for u, expired and deleted cookies are already gone
// from the underlying jar.
func (j *recordingJar) snapshot(u *url.URL) CookieJar {
	out := CookieJar{}
	live := j.Jar.Cookies(u)

	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range live {
		entry, ok := j.meta[c.Name]
		if !ok {
			entry = Cookie{Name: c.Name, Path: "/"}
		}
		entry.Value = c.Value
		out[c.Name] = entry
	}
	return out
}
