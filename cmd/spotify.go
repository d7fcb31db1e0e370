package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotyt/internal/formatter"
	"github.com/desertthunder/spotyt/internal/models"
	"github.com/desertthunder/spotyt/internal/repositories"
	"github.com/desertthunder/spotyt/internal/shared"
	"github.com/desertthunder/spotyt/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SpotifyPlaylist fetches a playlist and renders it, optionally saving it to the track cache.
func (r *Runner) SpotifyPlaylist(ctx context.Context, cmd *cli.Command) error {
	ref := strings.TrimSpace(cmd.StringArg("playlist"))
	if ref == "" {
		return fmt.Errorf("%w: playlist URL, URI or ID", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	fetcher, err := r.spotifyFetcher(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("fetching playlist", "service", fetcher.Name(), "ref", ref)
	export, err := fetcher.FetchPlaylist(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	if cmd.Bool("save") {
		if err := r.saveExport(ctx, export); err != nil {
			return err
		}
	}

	return r.writeExport(export, format, cmd.String("output"))
}

func (r *Runner) saveExport(ctx context.Context, export *models.PlaylistExport) error {
	db, err := r.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := repositories.NewTrackRepository(db).ReplacePlaylist(ctx, export)
	if err != nil {
		return fmt.Errorf("failed to cache playlist: %w", err)
	}

	r.logger.Info("playlist cached", "id", id, "playlist", export.Playlist.ID, "tracks", len(export.Tracks))
	return nil
}

func (r *Runner) writeExport(export *models.PlaylistExport, format formatter.Format, output string) error {
	if output != "" {
		path, err := formatter.WriteExport(export, format, output)
		if err != nil {
			return err
		}
		r.logger.Info("playlist written", "path", path, "format", format)
		return nil
	}

	data, err := formatter.Render(export, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// SpotifyExport exports every playlist given as an argument with the bulk export task.
func (r *Runner) SpotifyExport(ctx context.Context, cmd *cli.Command) error {
	refs := cmd.Args().Slice()
	if len(refs) == 0 {
		return fmt.Errorf("%w: at least one playlist URL, URI or ID", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	fetcher, err := r.spotifyFetcher(ctx)
	if err != nil {
		return err
	}

	var cache tasks.Cacher
	if cmd.Bool("save") {
		db, err := r.openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		cache = repositories.NewTrackRepository(db)
	}

	prog := make(chan tasks.ProgressUpdate, len(refs)*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.logger.Info(update.Message, "step", update.Step, "total", update.Total, "phase", update.Phase)
		}
	}()

	engine := tasks.NewExportEngine(fetcher, cache, r.logger)
	result, err := engine.BulkExport(ctx, prog, refs, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("out-dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  r.config.Spotify.RequestsPerSecond,
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("Exported %d of %d playlists to %s\n", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("  ✓ %s (%d tracks) → %s\n", res.PlaylistName, res.Tracks, res.File)
		} else {
			r.writePlain("  ✗ %s: %s\n", res.Ref, res.Error)
		}
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.FailedExports > 0 {
		return fmt.Errorf("%w: %d of %d playlists failed", shared.ErrAPIRequest, result.FailedExports, result.TotalPlaylists)
	}
	return nil
}
