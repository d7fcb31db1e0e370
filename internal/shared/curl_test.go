package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const devtoolsCurl = `curl 'https://music.youtube.com/youtubei/v1/browse?prettyPrint=false' \
  -H 'accept: */*' \
  -H 'authorization: SAPISIDHASH 1700000000_abcdef' \
  -H 'content-type: application/json' \
  -H 'cookie: VISITOR_INFO1_LIVE=xyz; SAPISID=abc/def' \
  -H 'x-goog-authuser: 0' \
  -H 'x-origin: https://music.youtube.com' \
  --data-raw '{"context":{}}'`

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantHeaders map[string]string
		wantCookie  string
		wantErr     bool
	}{
		{
			name:        "single quoted header",
			curlCmd:     `curl -H 'Authorization: Bearer token123' https://api.example.com`,
			wantHeaders: map[string]string{"Authorization": "Bearer token123"},
		},
		{
			name:        "double quoted header",
			curlCmd:     `curl -H "Authorization: Bearer token123" https://api.example.com`,
			wantHeaders: map[string]string{"Authorization": "Bearer token123"},
		},
		{
			name:        "cookie via -b",
			curlCmd:     `curl -b 'session=abc123' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "session=abc123",
		},
		{
			name:        "cookie header is not a regular header",
			curlCmd:     `curl -H 'Cookie: session=abc123' -H 'Authorization: Bearer token' https://api.example.com`,
			wantHeaders: map[string]string{"Authorization": "Bearer token"},
			wantCookie:  "session=abc123",
		},
		{
			name:        "-b wins over cookie header",
			curlCmd:     `curl -H 'Cookie: old=value' -b 'new=value' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "new=value",
		},
		{
			name:    "windows line continuations",
			curlCmd: "curl -H 'x-origin: https://music.youtube.com' \\\r\n -H 'x-goog-authuser: 1'",
			wantHeaders: map[string]string{
				"x-origin":        "https://music.youtube.com",
				"x-goog-authuser": "1",
			},
		},
		{
			name:        "spaces around colon",
			curlCmd:     `curl -H 'Authorization : Bearer token' https://api.example.com`,
			wantHeaders: map[string]string{"Authorization": "Bearer token"},
		},
		{
			name:    "no headers or cookies",
			curlCmd: `curl https://api.example.com`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand(tc.curlCmd)

			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("ParseCurlCommand() error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCurlCommand() unexpected error = %v", err)
			}

			if len(result.Headers) != len(tc.wantHeaders) {
				t.Errorf("ParseCurlCommand() headers = %v, want %v", result.Headers, tc.wantHeaders)
			}
			for key, want := range tc.wantHeaders {
				if got := result.Headers[key]; got != want {
					t.Errorf("ParseCurlCommand() header[%s] = %q, want %q", key, got, want)
				}
			}
			if result.Cookie != tc.wantCookie {
				t.Errorf("ParseCurlCommand() cookie = %q, want %q", result.Cookie, tc.wantCookie)
			}
		})
	}
}

func TestCurlHeaders(t *testing.T) {
	parsed, err := ParseCurlCommand(devtoolsCurl)
	if err != nil {
		t.Fatalf("ParseCurlCommand() error = %v", err)
	}

	t.Run("Get is case-insensitive", func(t *testing.T) {
		if got := parsed.Get("Authorization"); got != "SAPISIDHASH 1700000000_abcdef" {
			t.Errorf("Get(Authorization) = %q", got)
		}
		if got := parsed.Get("COOKIE"); got != "VISITOR_INFO1_LIVE=xyz; SAPISID=abc/def" {
			t.Errorf("Get(COOKIE) = %q", got)
		}
		if got := parsed.Get("x-missing"); got != "" {
			t.Errorf("Get(x-missing) = %q, want empty", got)
		}
	})

	t.Run("ToHeaderMap includes cookie", func(t *testing.T) {
		m := parsed.ToHeaderMap()
		for _, key := range []string{"authorization", "cookie", "x-goog-authuser", "x-origin", "accept"} {
			if m[key] == "" {
				t.Errorf("ToHeaderMap() missing %s", key)
			}
		}
		if len(m) != 6 {
			t.Errorf("ToHeaderMap() len = %d, want 6", len(m))
		}
	})
}

func TestParseCurlFile(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "curl.sh")
		if err := os.WriteFile(path, []byte(devtoolsCurl), 0644); err != nil {
			t.Fatalf("failed to write curl file: %v", err)
		}

		result, err := ParseCurlFile(path)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}
		if result.Get("x-origin") != "https://music.youtube.com" {
			t.Errorf("ParseCurlFile() x-origin = %q", result.Get("x-origin"))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ParseCurlFile(filepath.Join(t.TempDir(), "nope.sh")); err == nil {
			t.Error("ParseCurlFile() expected error for missing file")
		}
	})
}
