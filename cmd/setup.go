package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotyt/internal/credentials"
	"github.com/desertthunder/spotyt/internal/server"
	"github.com/desertthunder/spotyt/internal/services"
	"github.com/desertthunder/spotyt/internal/shared"
	"github.com/urfave/cli/v3"
)

// oauthTimeout bounds how long setup oauth waits for the browser consent.
const oauthTimeout = 5 * time.Minute

// Request headers that describe a single request and must not be replayed.
var unreplayableHeaders = []string{"content-length", "content-type", "accept-encoding", "host", "connection"}

// SetupSpotify writes spotify.json from the client credential flags.
func (r *Runner) SetupSpotify(ctx context.Context, cmd *cli.Command) error {
	cred := credentials.SpotifyCredential{
		ClientID:     strings.TrimSpace(cmd.String("client-id")),
		ClientSecret: strings.TrimSpace(cmd.String("client-secret")),
	}
	if cred.ClientID == "" || cred.ClientSecret == "" {
		return fmt.Errorf("%w: --client-id and --client-secret must not be empty", shared.ErrMissingArgument)
	}

	dir := r.credentialsDir()
	path, err := credentials.SaveSpotifyCredential(dir, cred)
	if err != nil {
		return err
	}

	if _, err := credentials.LoadSpotifyCredential(dir); err != nil {
		return err
	}

	r.logger.Info("spotify credentials saved", "path", path, "client_id", cred.ClientID)
	r.writePlain("✓ Spotify credentials saved to %s\n", path)
	return nil
}

// SetupYouTube writes headers_auth.json from a browser request copied as cURL.
func (r *Runner) SetupYouTube(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	r.logger.Info("parsing cURL command for YouTube Music headers")

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	headers := curlHeaders.ToHeaderMap()
	for _, name := range unreplayableHeaders {
		delete(headers, name)
	}
	if headers[credentials.HeaderOrigin] == "" {
		headers[credentials.HeaderOrigin] = services.YouTubeMusicOrigin
	}
	r.logger.Debug("extracted headers", "count", len(headers))

	auth, err := credentials.NewHeaderAuth(headers)
	if err != nil {
		return fmt.Errorf("%w: request is not an authenticated YouTube Music request: %w", shared.ErrInvalidInput, err)
	}

	dir := r.credentialsDir()
	path, err := credentials.SaveYouTubeMusicAuth(dir, auth)
	if err != nil {
		return err
	}

	r.logger.Info("headers_auth.json saved", "path", path, "extra_headers", len(auth.Extra))
	r.writePlain("✓ YouTube Music authentication configured successfully\n")
	r.writePlain("Auth file saved to: %s\n", path)
	r.writePlainln("Run 'spotyt check' to validate all credentials")
	return nil
}

// SetupCookies validates a Netscape cookie export and installs it as cookies.txt.
func (r *Runner) SetupCookies(ctx context.Context, cmd *cli.Command) error {
	file := cmd.String("file")

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read cookie file: %w", err)
	}

	cookies, err := credentials.ParseNetscape(data)
	if err != nil {
		return &credentials.MalformedConfigError{Path: file, Reason: "not a Netscape cookie file", Err: err}
	}

	dir := r.credentialsDir()
	path, err := credentials.SaveYouTubeMusicAuth(dir, credentials.CookieAuth{Raw: string(data), Cookies: cookies})
	if err != nil {
		return err
	}

	r.logger.Info("cookies.txt saved", "path", path, "cookies", len(cookies))
	r.writePlain("✓ Installed %d cookies to %s\n", len(cookies), path)

	if available := credentials.Available(dir); len(available) > 0 && available[0] != credentials.CookiesFile {
		r.logger.Warn("cookies.txt is shadowed by a higher precedence auth file", "file", available[0])
	}
	return nil
}

// SetupOAuth runs the authorization code flow against a loopback callback and writes ytmusic.json.
func (r *Runner) SetupOAuth(ctx context.Context, cmd *cli.Command) error {
	clientID := strings.TrimSpace(cmd.String("client-id"))
	clientSecret := strings.TrimSpace(cmd.String("client-secret"))
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: --client-id and --client-secret must not be empty", shared.ErrMissingArgument)
	}

	port := cmd.Int("port")
	if port < 0 || port > 65535 {
		return fmt.Errorf("%w: --port %d out of range", shared.ErrInvalidArgument, port)
	}

	open := r.oauth.Open
	if cmd.Bool("no-browser") {
		open = func(url string) error {
			r.writePlain("Open this URL to authorize spotyt:\n\n  %s\n\n", url)
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, oauthTimeout)
	defer cancel()

	tok, err := server.RunOAuthFlow(ctx, r.oauth.Config(clientID, clientSecret), server.FlowOptions{
		Addr:   net.JoinHostPort(r.oauth.Host, strconv.Itoa(int(port))),
		Open:   open,
		Logger: shared.WithLogger(r.logger, "component", "oauth"),
	})
	if err != nil {
		return err
	}

	auth := credentials.NewOAuthAuth(tok, time.Now())
	dir := r.credentialsDir()
	path, err := credentials.SaveYouTubeMusicAuth(dir, auth)
	if err != nil {
		return err
	}

	r.logger.Info("ytmusic.json saved", "path", path, "scope", auth.Scope, "refreshable", auth.RefreshToken != "")
	r.writePlain("✓ YouTube Music OAuth token saved to %s\n", path)

	if available := credentials.Available(dir); len(available) > 0 && available[0] != credentials.OAuthFile {
		r.logger.Warn("ytmusic.json is shadowed by a higher precedence auth file", "file", available[0])
	}
	return nil
}
