package telemetry

import (
	"fmt"
)

// API is the logging/reporting surface every component depends on instead of calling
// slog directly, so tests can assert on what was reported.
type API interface {
	// ReportBroken reports a component that failed in a way an operator has to look at.
	//
	// `id` names the component and method that broke, not the specific line, for example
	// `client-factory.acquire` or `session.fetch-dashboard`. Use lowercase, underscores
	// for large components and dashes for methods. Extra context (the wrapped error, the
	// status code, the url) goes into params.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that is not broken yet but is worth a look, like a
	// farmer status the extractor does not recognize.
	ReportWarning(id string, params ...any)

	// ReportDebug reports information that is dropped unless debug logging is enabled.
	ReportDebug(msg string, params ...any)

	// ReportInfo reports a normal step of a run (challenge passed, login succeeded).
	ReportInfo(msg string, params ...any)

	// ReportCount reports the current count of something at this point in time.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id/message with a namespace, like a sub-logger.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportInfo(msg string, params ...any) {
	s.inner.ReportInfo(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
