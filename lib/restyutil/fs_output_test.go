package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDumpExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "secret"})
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello from " + r.URL.Path))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New().SetBaseURL(server.URL)
	DumpExchanges(client, output)

	_, err = client.R().Get("/dashboard")
	require.NoError(t, err)
	_, err = client.R().
		SetFormData(map[string]string{"username": "alice", "password": "hunter2"}).
		Post("/login")
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(dir, "1-GET.txt"))
	require.NoError(t, err)
	require.Contains(t, string(first), "hello from /dashboard")
	require.Contains(t, string(first), "Set-Cookie: <redacted>")
	require.NotContains(t, string(first), "secret")
	require.Contains(t, string(first), "<NO BODY AVAILABLE>")

	second, err := os.ReadFile(filepath.Join(dir, "2-POST.txt"))
	require.NoError(t, err)
	require.Contains(t, string(second), "<redacted form body>")
	require.NotContains(t, string(second), "hunter2")
}

func TestFormatRequestBodyWithoutBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	require.NoError(t, err)
	require.Equal(t, "<NO BODY AVAILABLE>", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "<NO BODY AVAILABLE>", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
	require.Equal(t, "<NO BODY AVAILABLE>", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("a=1")), nil
	}
	require.Equal(t, "a=1", formatRequestBody(req))
}

func TestDumpExchangesNilOutput(t *testing.T) {
	client := resty.New()
	DumpExchanges(client, nil)
}
