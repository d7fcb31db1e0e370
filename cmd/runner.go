package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotyt/internal/credentials"
	"github.com/desertthunder/spotyt/internal/services"
	"github.com/desertthunder/spotyt/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	spotify    services.SpotifyOptions
	fetcher    services.PlaylistFetcher
	oauth      OAuthOpts
	logger     *log.Logger
	output     io.Writer
}

// OAuthOpts overrides the pieces of the YouTube Music OAuth flow that reach outside the process.
type OAuthOpts struct {
	// Config builds the OAuth client config; defaults to [services.YouTubeOAuthConfig].
	Config func(clientID, clientSecret string) *oauth2.Config
	// Open presents the consent URL; defaults to [shared.OpenBrowser].
	Open func(url string) error
	// Host is the callback listen host; defaults to 127.0.0.1.
	Host string
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	// Spotify overrides endpoints and limits of the Spotify client.
	Spotify services.SpotifyOptions
	// Fetcher replaces the Spotify client built from spotify.json.
	Fetcher services.PlaylistFetcher
	OAuth   OAuthOpts
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OAuth.Config == nil {
		opts.OAuth.Config = services.YouTubeOAuthConfig
	}
	if opts.OAuth.Open == nil {
		opts.OAuth.Open = shared.OpenBrowser
	}
	if opts.OAuth.Host == "" {
		opts.OAuth.Host = "127.0.0.1"
	}

	return &Runner{
		config:     opts.Config,
		configPath: "config.toml",
		httpClient: opts.HTTPClient,
		spotify:    opts.Spotify,
		fetcher:    opts.Fetcher,
		oauth:      opts.OAuth,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		checkCommand, initCommand, setupCommand, spotifyCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file and applies global flags.
//
// A missing config file is not an error: defaults apply until `spotyt init` creates one.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else if !errors.Is(err, fs.ErrNotExist) {
		return ctx, fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
	}

	if dir := cmd.String("dir"); dir != "" {
		r.config.Credentials.Dir = dir
	}

	level := r.config.Logging.Level
	if cmd.Bool("debug") {
		level = "debug"
	}
	if err := shared.SetLogLevel(r.logger, level); err != nil {
		return ctx, err
	}

	r.logger.Debug("configuration loaded", "config", r.configPath, "credentials", r.credentialsDir())
	return ctx, nil
}

func (r *Runner) credentialsDir() string {
	if r.config.Credentials.Dir == "" {
		return credentials.DefaultDir
	}
	return r.config.Credentials.Dir
}

// spotifyFetcher returns the injected fetcher or a Spotify client built from spotify.json.
func (r *Runner) spotifyFetcher(ctx context.Context) (services.PlaylistFetcher, error) {
	if r.fetcher != nil {
		return r.fetcher, nil
	}

	cred, err := credentials.LoadSpotifyCredential(r.credentialsDir())
	if err != nil {
		return nil, err
	}
	return r.spotifyService(ctx, cred), nil
}

func (r *Runner) spotifyService(ctx context.Context, cred credentials.SpotifyCredential) *services.SpotifyService {
	opts := r.spotify
	if opts.HTTPClient == nil {
		opts.HTTPClient = r.httpClient
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = r.config.Spotify.RequestsPerSecond
	}
	if opts.PageSize == 0 {
		opts.PageSize = r.config.Spotify.PageSize
	}
	if opts.Logger == nil {
		opts.Logger = r.logger
	}
	return services.NewSpotifyService(ctx, cred, opts)
}

// openDatabase opens the track cache and applies pending migrations.
func (r *Runner) openDatabase(ctx context.Context) (*sql.DB, error) {
	db, err := shared.NewDatabase(ctx, r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Debug("database ready", "path", r.config.Database.Path)
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
