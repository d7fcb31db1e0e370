// YouTube Music HTTP client authenticated from the loaded auth file
package services

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotyt/internal/credentials"
	"github.com/desertthunder/spotyt/internal/shared"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

// YouTubeMusicOrigin is the origin every authenticated YouTube Music request is made from.
const YouTubeMusicOrigin = "https://music.youtube.com"

// Cookies carrying the SAPISID value, in lookup order.
var sapisidCookies = []string{"SAPISID", "__Secure-3PAPISID"}

var now = time.Now

// Google OAuth endpoints and the scope YouTube Music accepts.
const (
	GoogleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	GoogleTokenURL = "https://oauth2.googleapis.com/token"
	YouTubeScope   = "https://www.googleapis.com/auth/youtube"
)

// YouTubeOAuthConfig returns the authorization code config for a Google desktop OAuth client.
// RedirectURL is left for the caller to fill in.
func YouTubeOAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   GoogleAuthURL,
			TokenURL:  GoogleTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{YouTubeScope},
	}
}

// NewYouTubeMusicClient returns an [http.Client] whose requests carry the credentials in auth.
//
// base is the underlying transport; nil means [http.DefaultTransport].
func NewYouTubeMusicClient(auth credentials.YouTubeMusicAuth, base http.RoundTripper) (*http.Client, error) {
	if base == nil {
		base = http.DefaultTransport
	}

	switch a := auth.(type) {
	case credentials.HeaderAuth:
		return &http.Client{Transport: &headerTransport{base: base, headers: a.Headers()}}, nil

	case credentials.CookieAuth:
		jar, err := cookieJar(a.Cookies)
		if err != nil {
			return nil, err
		}
		return &http.Client{
			Jar: jar,
			Transport: &sapisidTransport{
				base:    base,
				sapisid: findSAPISID(a.Cookies),
				origin:  YouTubeMusicOrigin,
			},
		}, nil

	case credentials.OAuthAuth:
		return &http.Client{
			Transport: &oauth2.Transport{Source: oauth2.StaticTokenSource(a.Token()), Base: base},
		}, nil

	default:
		return nil, fmt.Errorf("%w: %T", shared.ErrUnsupportedAuth, auth)
	}
}

// Describe summarizes auth for status output without revealing secrets.
func Describe(auth credentials.YouTubeMusicAuth) string {
	switch a := auth.(type) {
	case credentials.HeaderAuth:
		return fmt.Sprintf("browser headers (x-goog-authuser %s, %d extra headers)", a.GoogAuthUser, len(a.Extra))

	case credentials.CookieAuth:
		state := "missing SAPISID"
		if findSAPISID(a.Cookies) != "" {
			state = "SAPISID present"
		}
		return fmt.Sprintf("Netscape cookies (%d cookies, %s)", len(a.Cookies), state)

	case credentials.OAuthAuth:
		switch {
		case a.ExpiresAt == 0:
			return fmt.Sprintf("OAuth token (%s, expiry unknown)", a.Scope)
		case a.Expired(now()):
			return fmt.Sprintf("OAuth token (%s, expired %s)", a.Scope, time.Unix(a.ExpiresAt, 0).Format(time.RFC3339))
		default:
			return fmt.Sprintf("OAuth token (%s, expires %s)", a.Scope, time.Unix(a.ExpiresAt, 0).Format(time.RFC3339))
		}

	default:
		return fmt.Sprintf("unsupported (%T)", auth)
	}
}

// SAPISIDHash computes the authorization value YouTube expects from cookie sessions:
// "SAPISIDHASH <unix>_<sha1(unix + ' ' + SAPISID + ' ' + origin)>".
func SAPISIDHash(sapisid, origin string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	sum := sha1.Sum([]byte(ts + " " + sapisid + " " + origin))
	return "SAPISIDHASH " + ts + "_" + hex.EncodeToString(sum[:])
}

func cookieJar(cookies []credentials.Cookie) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	for _, c := range cookies {
		scheme := "http"
		if c.Secure {
			scheme = "https"
		}
		u := &url.URL{Scheme: scheme, Host: strings.TrimPrefix(c.Domain, "."), Path: "/"}
		jar.SetCookies(u, []*http.Cookie{c.HTTPCookie()})
	}

	return jar, nil
}

func findSAPISID(cookies []credentials.Cookie) string {
	for _, name := range sapisidCookies {
		for _, c := range cookies {
			if c.Name == name && c.Value != "" {
				return c.Value
			}
		}
	}
	return ""
}

// headerTransport replays stored browser headers on every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// sapisidTransport derives the authorization header for cookie sessions.
type sapisidTransport struct {
	base    http.RoundTripper
	sapisid string
	origin  string
}

func (t *sapisidTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Origin", t.origin)
	req.Header.Set("Origin", t.origin)
	if t.sapisid != "" {
		req.Header.Set("Authorization", SAPISIDHash(t.sapisid, t.origin, now()))
	}
	return t.base.RoundTrip(req)
}
