package credentials

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Load reads spotify.json and the YouTube Music auth file from dir.
func Load(dir string) (*Bundle, error) {
	if dir == "" {
		dir = DefaultDir
	}

	spotify, err := LoadSpotifyCredential(dir)
	if err != nil {
		return nil, err
	}

	youtube, err := LoadYouTubeMusicAuth(dir)
	if err != nil {
		return nil, err
	}

	return &Bundle{Dir: dir, Spotify: spotify, YouTube: youtube}, nil
}

// LoadSpotifyCredential reads and validates dir/spotify.json.
//
// An empty dir means [DefaultDir].
func LoadSpotifyCredential(dir string) (SpotifyCredential, error) {
	if dir == "" {
		dir = DefaultDir
	}
	path := filepath.Join(dir, SpotifyFile)

	data, err := readCredentialFile(path)
	if err != nil {
		return SpotifyCredential{}, err
	}

	return parseSpotifyCredential(path, data)
}

// LoadYouTubeMusicAuth returns the first YouTube Music auth file found in dir, in [YouTubeMusicPrecedence] order.
//
// An empty dir means [DefaultDir].
func LoadYouTubeMusicAuth(dir string) (YouTubeMusicAuth, error) {
	if dir == "" {
		dir = DefaultDir
	}
	for _, name := range YouTubeMusicPrecedence {
		path := filepath.Join(dir, name)

		data, err := readCredentialFile(path)
		var missing *MissingFileError
		if errors.As(err, &missing) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var auth YouTubeMusicAuth
		switch name {
		case HeadersAuthFile:
			auth, err = parseHeaderAuth(path, data)
		case CookiesFile:
			auth, err = parseCookieAuth(path, data)
		default:
			auth, err = parseOAuthAuth(path, data)
		}
		if err != nil {
			return nil, err
		}
		return auth, nil
	}

	return nil, &NoAuthMethodError{Dir: dir, Tried: YouTubeMusicPrecedence}
}

// Available lists the YouTube Music auth files present in dir, in precedence order.
//
// Only the first entry is ever used; the rest are shadowed.
func Available(dir string) []string {
	var found []string
	for _, name := range YouTubeMusicPrecedence {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			found = append(found, name)
		}
	}
	return found
}

func readCredentialFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &MissingFileError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, &MalformedConfigError{Path: path, Reason: "expected a file, found a directory"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func parseSpotifyCredential(path string, data []byte) (SpotifyCredential, error) {
	var cred SpotifyCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return SpotifyCredential{}, &MalformedConfigError{Path: path, Reason: "invalid JSON", Err: err}
	}

	var missing []string
	if strings.TrimSpace(cred.ClientID) == "" {
		missing = append(missing, "client_id")
	}
	if strings.TrimSpace(cred.ClientSecret) == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return SpotifyCredential{}, &MalformedConfigError{
			Path:   path,
			Reason: "missing or empty " + strings.Join(missing, ", "),
		}
	}

	return cred, nil
}

func parseHeaderAuth(path string, data []byte) (HeaderAuth, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return HeaderAuth{}, &MalformedConfigError{Path: path, Reason: "invalid JSON object", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return HeaderAuth{}, &MalformedConfigError{Path: path, Reason: "trailing data after JSON object", Err: err}
	}

	headers := make(map[string]string, len(raw))
	seen := make(map[string]string, len(raw))
	for key, value := range raw {
		lower := strings.ToLower(key)
		if other, ok := seen[lower]; ok {
			return HeaderAuth{}, &MalformedConfigError{
				Path:   path,
				Reason: fmt.Sprintf("duplicate header %q and %q", other, key),
			}
		}
		seen[lower] = key

		switch v := value.(type) {
		case string:
			headers[lower] = v
		case json.Number:
			headers[lower] = v.String()
		}
	}

	auth, err := NewHeaderAuth(headers)
	if err != nil {
		return HeaderAuth{}, &MalformedConfigError{Path: path, Reason: err.Error()}
	}
	return auth, nil
}

// NewHeaderAuth builds a [HeaderAuth] from lower-cased header names.
//
// The four required headers must be present and non-empty; every other entry is kept in Extra.
func NewHeaderAuth(headers map[string]string) (HeaderAuth, error) {
	var missing []string
	for _, key := range requiredHeaders {
		if strings.TrimSpace(headers[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return HeaderAuth{}, fmt.Errorf("missing or empty %s", strings.Join(missing, ", "))
	}

	auth := HeaderAuth{
		Authorization: headers[HeaderAuthorization],
		Cookie:        headers[HeaderCookie],
		GoogAuthUser:  headers[HeaderGoogAuthUser],
		Origin:        headers[HeaderOrigin],
	}
	for key, value := range headers {
		if slices.Contains(requiredHeaders, key) {
			continue
		}
		if auth.Extra == nil {
			auth.Extra = make(map[string]string)
		}
		auth.Extra[key] = value
	}

	return auth, nil
}

func parseCookieAuth(path string, data []byte) (CookieAuth, error) {
	cookies, err := ParseNetscape(data)
	if err != nil {
		return CookieAuth{}, &MalformedConfigError{Path: path, Reason: "not a Netscape cookie file", Err: err}
	}
	return CookieAuth{Raw: string(data), Cookies: cookies}, nil
}

func parseOAuthAuth(path string, data []byte) (OAuthAuth, error) {
	var file struct {
		OAuthCredentials *OAuthAuth `json:"oauth_credentials"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return OAuthAuth{}, &MalformedConfigError{Path: path, Reason: "invalid JSON", Err: err}
	}

	if file.OAuthCredentials == nil {
		return OAuthAuth{}, &MalformedConfigError{Path: path, Reason: "missing oauth_credentials"}
	}
	if strings.TrimSpace(file.OAuthCredentials.AccessToken) == "" {
		return OAuthAuth{}, &MalformedConfigError{Path: path, Reason: "missing or empty oauth_credentials.access_token"}
	}
	if file.OAuthCredentials.ExpiresIn < 0 {
		return OAuthAuth{}, &MalformedConfigError{
			Path:   path,
			Reason: "negative oauth_credentials.expires_in " + strconv.Itoa(file.OAuthCredentials.ExpiresIn),
		}
	}

	return *file.OAuthCredentials, nil
}
