package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotyt/internal/formatter"
	"github.com/desertthunder/spotyt/internal/repositories"
	"github.com/desertthunder/spotyt/internal/services"
	"github.com/desertthunder/spotyt/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheList prints every cached playlist.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	playlists, err := repositories.NewPlaylistRepository(db).List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		return r.writePlain("No cached playlists. Run 'spotyt spotify playlist <ref> --save' first.\n")
	}

	for _, p := range playlists {
		r.writePlain("%-24s %-8s %4d tracks  %s  %s\n",
			p.ServiceID, p.Service, p.TrackCount, p.FetchedAt.Local().Format(time.DateTime), p.Name)
	}
	return nil
}

// CacheShow prints the cached tracks of a playlist.
//
// The argument accepts the same references as `spotify playlist`.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	ref := strings.TrimSpace(cmd.StringArg("playlist"))
	if ref == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	id, err := services.ParsePlaylistID(ref)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	export, err := repositories.NewTrackRepository(db).Export(ctx, "spotify", id)
	if err != nil {
		return err
	}

	return r.writeExport(export, format, "")
}
