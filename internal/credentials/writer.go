package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/spotyt/internal/shared"
)

// SaveSpotifyCredential writes cred to dir/spotify.json and returns the path written.
func SaveSpotifyCredential(dir string, cred SpotifyCredential) (string, error) {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal spotify credential: %w", err)
	}
	return writeCredentialFile(dir, SpotifyFile, append(data, '\n'))
}

// SaveYouTubeMusicAuth writes auth to the file its variant is loaded from and returns the path written.
//
// Cookie auth that would not load back is rejected with [shared.ErrInvalidInput] before anything is written.
// Other YouTube Music auth files in dir are left alone; if one with higher precedence exists it still wins on load.
func SaveYouTubeMusicAuth(dir string, auth YouTubeMusicAuth) (string, error) {
	var (
		data []byte
		err  error
	)

	switch a := auth.(type) {
	case HeaderAuth:
		data, err = json.MarshalIndent(a.Headers(), "", "  ")
		data = append(data, '\n')
	case CookieAuth:
		if a.Raw != "" {
			if _, perr := ParseNetscape([]byte(a.Raw)); perr != nil {
				return "", fmt.Errorf("%w: %s: %w", shared.ErrInvalidInput, CookiesFile, perr)
			}
			data = []byte(a.Raw)
		} else {
			if verr := ValidateCookies(a.Cookies); verr != nil {
				return "", fmt.Errorf("%w: %s: %w", shared.ErrInvalidInput, CookiesFile, verr)
			}
			data = FormatNetscape(a.Cookies)
		}
	case OAuthAuth:
		data, err = json.MarshalIndent(struct {
			OAuthCredentials OAuthAuth `json:"oauth_credentials"`
		}{a}, "", "  ")
		data = append(data, '\n')
	default:
		return "", fmt.Errorf("%w: %T", shared.ErrUnsupportedAuth, auth)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", auth.Filename(), err)
	}

	return writeCredentialFile(dir, auth.Filename(), data)
}

func writeCredentialFile(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create credentials directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
