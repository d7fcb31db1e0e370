package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/spotyt/internal/credentials"
	"github.com/desertthunder/spotyt/internal/services"
	"github.com/desertthunder/spotyt/internal/shared"
	"github.com/desertthunder/spotyt/internal/ui"
	"github.com/urfave/cli/v3"
)

// Check loads every credential file and prints a status report.
//
// The first load failure is returned after the report is written, so the exit status reflects it.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	dir := r.credentialsDir()
	report := &ui.Report{Title: "Credentials in " + dir, Hint: shared.SetupHint}

	var firstErr error
	fail := func(label string, err error) {
		report.Add(label, ui.StatusFail, err.Error())
		if firstErr == nil {
			firstErr = err
		}
	}

	spotify, err := credentials.LoadSpotifyCredential(dir)
	if err != nil {
		fail(credentials.SpotifyFile, err)
	} else {
		report.Add(credentials.SpotifyFile, ui.StatusOK, spotify.String())
	}

	auth, err := credentials.LoadYouTubeMusicAuth(dir)
	if err != nil {
		fail("youtube music", err)
	} else {
		status := ui.StatusOK
		if oauth, ok := auth.(credentials.OAuthAuth); ok && oauth.Expired(time.Now()) {
			status = ui.StatusWarn
		}
		report.Add(auth.Filename(), status, services.Describe(auth))

		for _, name := range credentials.Available(dir) {
			if name != auth.Filename() {
				report.Add(name, ui.StatusWarn, "ignored, "+auth.Filename()+" takes precedence")
			}
		}
	}

	if cmd.Bool("online") && spotify.ClientID != "" {
		if _, err := r.spotifyService(ctx, spotify).Token(ctx); err != nil {
			fail("spotify api", err)
		} else {
			report.Add("spotify api", ui.StatusOK, "client credentials accepted")
		}
	}

	if err := report.Render(r.output); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if firstErr != nil {
		return firstErr
	}
	r.logger.Debug("credentials valid", "dir", dir, "youtube", auth.Method())
	return nil
}

// Init creates config.toml from the embedded example and the credentials directory.
//
// No credential files are written: placeholder values would pass validation.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err == nil {
		r.logger.Info("config file exists, leaving it unchanged", "path", r.configPath)
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return err
		}
		r.logger.Info("config file created", "path", r.configPath)

		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return err
		}
		if cmd.String("dir") != "" {
			config.Credentials.Dir = cmd.String("dir")
		}
		r.config = config
	} else {
		return fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
	}

	dir := r.credentialsDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	r.logger.Info("credentials directory ready", "path", dir)

	r.writePlain("Next steps:\n")
	r.writePlain("1. Create a Spotify app and run 'spotyt setup spotify --client-id ... --client-secret ...'\n")
	r.writePlain("   (writes %s)\n", filepath.Join(dir, credentials.SpotifyFile))
	r.writePlain("2. Add one YouTube Music auth file, checked in this order:\n")
	r.writePlain("   - %s: 'spotyt setup youtube --curl-file request.sh'\n", credentials.HeadersAuthFile)
	r.writePlain("   - %s: 'spotyt setup cookies --file exported-cookies.txt'\n", credentials.CookiesFile)
	r.writePlain("   - %s: OAuth token file with oauth_credentials\n", credentials.OAuthFile)
	r.writePlain("3. Run 'spotyt check' to validate\n")

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(shared.SpotifyDashboardURL); err != nil {
			r.logger.Warn("could not open browser", "url", shared.SpotifyDashboardURL, "error", err)
		}
	}

	return nil
}
