package credentials

import (
	"fmt"
	"strings"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultDir is the configuration directory used when none is given.
const DefaultDir = "config"

// Credential file names inside the configuration directory.
const (
	SpotifyFile     = "spotify.json"
	HeadersAuthFile = "headers_auth.json"
	CookiesFile     = "cookies.txt"
	OAuthFile       = "ytmusic.json"
)

// YouTubeMusicPrecedence is the order in which YouTube Music auth files are probed.
var YouTubeMusicPrecedence = []string{HeadersAuthFile, CookiesFile, OAuthFile}

// AuthMethod names a YouTube Music authentication method.
type AuthMethod string

const (
	MethodHeaders AuthMethod = "headers"
	MethodCookies AuthMethod = "cookies"
	MethodOAuth   AuthMethod = "oauth"
)

// SpotifyCredential holds the client credentials from spotify.json.
type SpotifyCredential struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// String masks the client secret so the credential is safe to log.
func (c SpotifyCredential) String() string {
	return fmt.Sprintf("SpotifyCredential{client_id=%s, client_secret=%s}", c.ClientID, Redact(c.ClientSecret))
}

// ClientCredentials returns the OAuth2 client credentials grant config for the Spotify accounts service.
func (c SpotifyCredential) ClientCredentials() *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
}

// YouTubeMusicAuth is one of [HeaderAuth], [CookieAuth] or [OAuthAuth].
type YouTubeMusicAuth interface {
	// Method reports which authentication method the value carries.
	Method() AuthMethod
	// Filename is the file inside the configuration directory the value is stored in.
	Filename() string

	isYouTubeMusicAuth()
}

// Header names stored in headers_auth.json.
const (
	HeaderAuthorization = "authorization"
	HeaderCookie        = "cookie"
	HeaderGoogAuthUser  = "x-goog-authuser"
	HeaderOrigin        = "x-origin"
)

var requiredHeaders = []string{HeaderAuthorization, HeaderCookie, HeaderGoogAuthUser, HeaderOrigin}

// HeaderAuth authenticates with request headers copied from a logged-in browser session.
//
// Extra holds any other headers found in the file, keyed by lower-cased name.
type HeaderAuth struct {
	Authorization string
	Cookie        string
	GoogAuthUser  string
	Origin        string
	Extra         map[string]string
}

func (HeaderAuth) Method() AuthMethod  { return MethodHeaders }
func (HeaderAuth) Filename() string    { return HeadersAuthFile }
func (HeaderAuth) isYouTubeMusicAuth() {}

// Headers returns every header the file provides, required ones included.
func (h HeaderAuth) Headers() map[string]string {
	out := make(map[string]string, len(h.Extra)+4)
	for k, v := range h.Extra {
		out[k] = v
	}
	out[HeaderAuthorization] = h.Authorization
	out[HeaderCookie] = h.Cookie
	out[HeaderGoogAuthUser] = h.GoogAuthUser
	out[HeaderOrigin] = h.Origin
	return out
}

// CookieAuth authenticates with cookies exported in Netscape format.
//
// Raw is the file content as read; Cookies are the parsed entries.
type CookieAuth struct {
	Raw     string
	Cookies []Cookie
}

func (CookieAuth) Method() AuthMethod  { return MethodCookies }
func (CookieAuth) Filename() string    { return CookiesFile }
func (CookieAuth) isYouTubeMusicAuth() {}

// OAuthAuth holds OAuth2 tokens from ytmusic.json.
//
// ExpiresAt (unix seconds) is optional; zero means the file did not record it.
type OAuthAuth struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

func (OAuthAuth) Method() AuthMethod  { return MethodOAuth }
func (OAuthAuth) Filename() string    { return OAuthFile }
func (OAuthAuth) isYouTubeMusicAuth() {}

// Token converts the stored credentials to an [oauth2.Token].
//
// The token type defaults to Bearer. Without expires_at the expiry is left unset.
func (o OAuthAuth) Token() *oauth2.Token {
	tokenType := o.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	tok := &oauth2.Token{
		AccessToken:  o.AccessToken,
		TokenType:    tokenType,
		RefreshToken: o.RefreshToken,
	}
	if o.ExpiresAt > 0 {
		tok.Expiry = time.Unix(o.ExpiresAt, 0)
	}
	return tok.WithExtra(map[string]any{"scope": o.Scope})
}

// NewOAuthAuth records tok as ytmusic.json credentials; now anchors expires_in.
func NewOAuthAuth(tok *oauth2.Token, now time.Time) OAuthAuth {
	auth := OAuthAuth{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		auth.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		auth.ExpiresAt = tok.Expiry.Unix()
		auth.ExpiresIn = max(0, int(tok.Expiry.Sub(now).Seconds()))
	}
	return auth
}

// Expired reports whether the access token is past expires_at. Tokens without expires_at never report expired.
func (o OAuthAuth) Expired(now time.Time) bool {
	return o.ExpiresAt > 0 && !now.Before(time.Unix(o.ExpiresAt, 0))
}

// Bundle is the full set of credentials loaded once at startup and treated as read-only afterwards.
type Bundle struct {
	Dir     string
	Spotify SpotifyCredential
	YouTube YouTubeMusicAuth
}

// Redact keeps the last four characters of a secret.
func Redact(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
