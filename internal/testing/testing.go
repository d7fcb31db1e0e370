// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotyt/internal/models"
)

// Credential file fixtures shared by package tests.
const (
	SpotifyJSON = `{"client_id": "test-client", "client_secret": "test-secret"}`
	HeadersJSON = `{"authorization": "SAPISIDHASH 1_abc", "cookie": "SAPISID=abc", "x-goog-authuser": "0", "x-origin": "https://music.youtube.com"}`
	CookiesTXT  = "# Netscape HTTP Cookie File\n.youtube.com\tTRUE\t/\tTRUE\t1893456000\tSAPISID\tabc\n"
	OAuthJSON   = `{"oauth_credentials": {"access_token": "ya29.a", "token_type": "Bearer", "expires_in": 3599, "refresh_token": "r", "scope": "s"}}`
)

// MockFetcher is a test double for [services.PlaylistFetcher]
type MockFetcher struct {
	Export *models.PlaylistExport
	Err    error
	Refs   []string
}

func (m *MockFetcher) FetchPlaylist(ctx context.Context, ref string) (*models.PlaylistExport, error) {
	m.Refs = append(m.Refs, ref)
	return m.Export, m.Err
}

func (m *MockFetcher) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// RoundTripFunc adapts a function to [http.RoundTripper]
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewResponse builds a minimal [http.Response] with the given status and body
func NewResponse(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

// WriteCredentialDir writes the given files into a fresh temporary directory and returns it
func WriteCredentialDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
