package corepool

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"corepool-exporter/internal/components/assert"
	"corepool-exporter/internal/components/chrono"
	"corepool-exporter/internal/components/telemetry"

	"github.com/cenkalti/backoff/v4"
)

const (
	report_factory_acquire = "client-factory.acquire"
)

// RetryPolicy is a fixed-delay retry policy.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, 0 retries until success or until the
	// context is cancelled.
	MaxAttempts int
	Delay       time.Duration
	// Timer waits out the delay between attempts, nil uses a real timer.
	Timer backoff.Timer
}

// DefaultRetryPolicy retries forever, 5 seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Delay: 5 * time.Second}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = backoff.NewConstantBackOff(p.Delay)
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}
	return backoff.WithContext(b, ctx)
}

// ClientFactory produces clients that passed the anti-bot challenge.
type ClientFactory struct {
	baseUrl  string
	opts     ClientOptions
	policy   RetryPolicy
	identity func() map[string]string
	time     chrono.TimeAPI
	tel      telemetry.API
}

func NewClientFactory(
	baseUrl string,
	opts ClientOptions,
	policy RetryPolicy,
	time chrono.TimeAPI,
	tel telemetry.API,
) ClientFactory {
	assert.NotEmptyStr(baseUrl, "baseUrl")
	assert.Positive(policy.Delay, "policy.Delay")
	assert.NotNil(time, "time")
	assert.NotNil(tel, "tel")

	return ClientFactory{
		baseUrl:  baseUrl,
		opts:     opts,
		policy:   policy,
		identity: NewBrowserIdentity,
		time:     time,
		tel:      telemetry.NewScopedAPI("corepool.challenge", tel),
	}
}

// WithIdentity replaces the source of fresh identities.
func (f ClientFactory) WithIdentity(identity func() map[string]string) ClientFactory {
	f.identity = identity
	return f
}

// Restore rebuilds a client from a persisted state without probing the upstream.
func (f ClientFactory) Restore(state ClientState) (Client, error) {
	return NewClient(state, f.opts, f.tel)
}

// Acquire builds a client with a fresh identity and probes the site root with it until
// the probe answers 200, waiting the policy delay between attempts. Both non-200
// statuses and transport errors count as a failed challenge. The returned state is the
// one to persist for later runs.
func (f ClientFactory) Acquire(ctx context.Context) (Client, ClientState, error) {
	var client *HttpClient
	var state ClientState
	attempt := 0

	operation := func() error {
		attempt++
		candidate := ClientState{
			BaseUrl:   f.baseUrl,
			Headers:   f.identity(),
			CreatedAt: f.time.Now(),
		}
		c, err := NewClient(candidate, f.opts, f.tel)
		if err != nil {
			return backoff.Permanent(err)
		}

		f.tel.ReportInfo(
			"trying to pass the challenge",
			"attempt", attempt,
			"user-agent", candidate.UserAgent(),
		)
		res, err := c.Get(ctx, rootPath)
		if err != nil {
			return fmt.Errorf("%w: probe: %w", ErrChallengeFailed, err)
		}
		if res.Status != http.StatusOK {
			return fmt.Errorf("%w: probe returned status %d", ErrChallengeFailed, res.Status)
		}

		candidate.ChallengeCookies = c.Cookies()
		client = c
		state = candidate
		return nil
	}

	notify := func(err error, next time.Duration) {
		f.tel.ReportWarning(report_factory_acquire, err, "retry in", next.String())
	}

	err := backoff.RetryNotifyWithTimer(operation, f.policy.backOff(ctx), notify, f.policy.Timer)
	if err != nil {
		f.tel.ReportBroken(report_factory_acquire, err, "attempts", attempt)
		return nil, ClientState{}, err
	}

	f.tel.ReportInfo("challenge passed", "attempts", attempt)
	return client, state, nil
}
