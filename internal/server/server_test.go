package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotyt/internal/shared"
	"golang.org/x/oauth2"
)

// tokenServer fakes a Google token endpoint that accepts the code "good-code".
func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"ya29.token","token_type":"Bearer","refresh_token":"1//refresh","expires_in":3600,"scope":"https://www.googleapis.com/auth/youtube"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.example.com/auth",
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: "http://127.0.0.1/callback",
	}
}

func TestBasicRouter(t *testing.T) {
	t.Run("Method Filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("GET /ping = %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST /ping = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("order = %s", got)
		}
	})

	t.Run("Request Logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		router := NewBasicRouter()
		router.Use(RequestLogger(logger))
		router.Handle(http.MethodGet, "/callback", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?code=secret", nil))

		out := buf.String()
		if !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/callback") {
			t.Errorf("log output missing fields: %q", out)
		}
		if strings.Contains(out, "secret") {
			t.Errorf("log output leaked the query string: %q", out)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	srv := tokenServer(t)

	t.Run("Exchanges Code", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(srv.URL), "state-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=good-code", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
		}
		res := <-h.Result()
		if res.Error() != nil {
			t.Fatalf("result error: %v", res.Error())
		}
		if res.Token.AccessToken != "ya29.token" || res.Token.RefreshToken != "1//refresh" {
			t.Errorf("token = %+v", res.Token)
		}
	})

	t.Run("Second Callback Rejected", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(srv.URL), "state-1")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=good-code", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=good-code", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("second callback status = %d", rec.Code)
		}
	})

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"Invalid State", "state=other&code=good-code", http.StatusBadRequest},
		{"Consent Denied", "state=state-1&error=access_denied", http.StatusBadRequest},
		{"Exchange Fails", "state=state-1&code=bad-code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOAuthHandler(testConfig(srv.URL), "state-1")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			res := <-h.Result()
			if !errors.Is(res.Error(), shared.ErrAuthFailed) {
				t.Errorf("error = %v, want ErrAuthFailed", res.Error())
			}
		})
	}
}

func TestRunOAuthFlow(t *testing.T) {
	srv := tokenServer(t)
	logger := log.New(&bytes.Buffer{})

	t.Run("Completes Via Callback", func(t *testing.T) {
		cfg := testConfig(srv.URL)
		var opened string

		open := func(authURL string) error {
			opened = authURL
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			q := u.Query()
			callback := q.Get("redirect_uri") + "?code=good-code&state=" + url.QueryEscape(q.Get("state"))
			resp, err := http.Get(callback)
			if err != nil {
				return err
			}
			resp.Body.Close()
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tok, err := RunOAuthFlow(ctx, cfg, FlowOptions{Addr: "127.0.0.1:0", Open: open, Logger: logger})
		if err != nil {
			t.Fatalf("RunOAuthFlow: %v", err)
		}
		if tok.AccessToken != "ya29.token" {
			t.Errorf("AccessToken = %q", tok.AccessToken)
		}
		if !strings.HasPrefix(opened, "https://accounts.example.com/auth?") {
			t.Errorf("opened %q", opened)
		}
		if !strings.Contains(opened, "access_type=offline") {
			t.Errorf("auth URL missing offline access: %q", opened)
		}
		if cfg.RedirectURL != "http://127.0.0.1/callback" {
			t.Errorf("caller config mutated: RedirectURL = %q", cfg.RedirectURL)
		}
	})

	t.Run("Context Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		open := func(string) error {
			cancel()
			return nil
		}

		_, err := RunOAuthFlow(ctx, testConfig(srv.URL), FlowOptions{Addr: "127.0.0.1:0", Open: open, Logger: logger})
		if !errors.Is(err, shared.ErrAuthFailed) || !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want ErrAuthFailed wrapping context.Canceled", err)
		}
	})

	t.Run("Browser Failure Is Not Fatal", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		open := func(string) error { return errors.New("no display") }
		_, err := RunOAuthFlow(ctx, testConfig(srv.URL), FlowOptions{Addr: "127.0.0.1:0", Open: open, Logger: logger})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error = %v, want deadline exceeded", err)
		}
	})
}
