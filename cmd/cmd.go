// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"
)

const version = "0.2.0"

// newApp builds the root command with global flags and every subcommand.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotyt",
		Usage:   "Prepare and validate Spotify & YouTube Music credentials",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("SPOTYT_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Credentials directory (overrides [credentials] dir)",
				Sources: cli.EnvVars("SPOTYT_CREDENTIALS_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:    r.Before,
		Writer:    r.output,
		ErrWriter: r.output,
		Commands:  r.register(),
	}
}

// checkCommand reports credential status
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Load and validate every credential file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "online",
				Usage: "Also request a Spotify access token",
			},
		},
		Action: r.Check,
	}
}

// initCommand scaffolds the config file and credentials directory
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create config.toml and the credentials directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the Spotify developer dashboard in a browser",
			},
		},
		Action: r.Init,
	}
}

// setupCommand writes credential files
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write credential files",
		Commands: []*cli.Command{
			{
				Name:  "spotify",
				Usage: "Write spotify.json from client credentials",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client-id",
						Usage:    "Spotify application client ID",
						Required: true,
						Sources:  cli.EnvVars("SPOTIFY_CLIENT_ID"),
					},
					&cli.StringFlag{
						Name:     "client-secret",
						Usage:    "Spotify application client secret",
						Required: true,
						Sources:  cli.EnvVars("SPOTIFY_CLIENT_SECRET"),
					},
				},
				Action: r.SetupSpotify,
			},
			{
				Name:    "youtube",
				Aliases: []string{"yt", "ytmusic"},
				Usage:   "Write headers_auth.json from a browser request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.SetupYouTube,
			},
			{
				Name:  "cookies",
				Usage: "Validate a Netscape cookie export and install it as cookies.txt",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the exported cookies file",
						Required: true,
					},
				},
				Action: r.SetupCookies,
			},
			{
				Name:  "oauth",
				Usage: "Authorize a Google OAuth client in the browser and write ytmusic.json",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client-id",
						Usage:    "Google OAuth client ID",
						Sources:  cli.EnvVars("YTMUSIC_CLIENT_ID"),
						Required: true,
					},
					&cli.StringFlag{
						Name:     "client-secret",
						Usage:    "Google OAuth client secret",
						Sources:  cli.EnvVars("YTMUSIC_CLIENT_SECRET"),
						Required: true,
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "Loopback port for the OAuth callback (0 picks a free port)",
						Value: 8085,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the consent URL instead of opening a browser",
					},
				},
				Action: r.SetupOAuth,
			},
		},
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "playlist",
				Usage: "Fetch a playlist by URL, URI or ID",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "playlist",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, csv or json",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save the playlist to the local track cache",
					},
				},
				Action: r.SpotifyPlaylist,
			},
			{
				Name:      "export",
				Usage:     "Export several playlists into a directory with a manifest",
				ArgsUsage: "<playlist>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, csv or json",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "out-dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: spotify_export_<unix time>)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of playlists fetched concurrently",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save every playlist to the local track cache",
					},
				},
				Action: r.SpotifyExport,
			},
		},
	}
}

// cacheCommand reads the local track cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect cached playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:  "show",
				Usage: "Show the cached tracks of a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "playlist",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, csv or json",
						Value: "text",
					},
				},
				Action: r.CacheShow,
			},
		},
	}
}
