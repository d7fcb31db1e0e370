package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotyt/internal/models"
	"github.com/desertthunder/spotyt/internal/shared"
)

// TrackRepository caches the tracks of fetched playlists.
//
// Tracks belong to a playlists row; replacing a playlist drops its previous tracks in the same transaction.
type TrackRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db, now: time.Now}
}

// ReplacePlaylist stores export as the current snapshot of its playlist and returns the new playlists row ID.
//
// Any previous snapshot of the same service playlist is removed. Either every track is stored or none is.
func (r *TrackRepository) ReplacePlaylist(ctx context.Context, export *models.PlaylistExport) (string, error) {
	if export == nil || export.Playlist.ID == "" {
		return "", fmt.Errorf("%w: playlist export has no ID", shared.ErrInvalidInput)
	}
	for _, track := range export.Tracks {
		if err := track.Validate(); err != nil {
			return "", fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
		}
	}

	p := export.Playlist
	id := shared.GenerateID()

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM tracks WHERE playlist_id IN (
				SELECT id FROM playlists WHERE service = ? AND service_id = ?
			)`, p.Service, p.ID)
		if err != nil {
			return fmt.Errorf("failed to delete cached tracks: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM playlists WHERE service = ? AND service_id = ?", p.Service, p.ID); err != nil {
			return fmt.Errorf("failed to delete cached playlist: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO playlists (id, service, service_id, name, fetched_at) VALUES (?, ?, ?, ?, ?)",
			id, p.Service, p.ID, p.Name, r.now().UTC()); err != nil {
			return fmt.Errorf("failed to insert playlist: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tracks (id, playlist_id, track_number, service_id, title, artist, album, album_artist, year, duration_ms, isrc, cover_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare track insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range export.Tracks {
			_, err := stmt.ExecContext(ctx,
				shared.GenerateID(),
				id,
				t.TrackNumber,
				t.ID,
				t.Title,
				t.Artist,
				t.Album,
				t.AlbumArtist,
				t.Year,
				t.DurationMS,
				t.ISRC,
				t.CoverURL,
			)
			if err != nil {
				return fmt.Errorf("failed to insert track %d: %w", t.TrackNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// ListByPlaylist returns the cached tracks of a service playlist ordered by track number.
//
// playlistID is the service's playlist ID, not the playlists row ID.
func (r *TrackRepository) ListByPlaylist(ctx context.Context, service, playlistID string) ([]models.Track, error) {
	if _, err := NewPlaylistRepository(r.db).GetByServiceID(ctx, service, playlistID); err != nil {
		return nil, err
	}

	query := `
		SELECT t.service_id, t.track_number, t.title, t.artist, t.album, t.album_artist, t.year, t.duration_ms, t.isrc, t.cover_url
		FROM tracks t
		JOIN playlists p ON p.id = t.playlist_id
		WHERE p.service = ? AND p.service_id = ?
		ORDER BY t.track_number
	`

	rows, err := r.db.QueryContext(ctx, query, service, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var t models.Track
		err := rows.Scan(
			&t.ID,
			&t.TrackNumber,
			&t.Title,
			&t.Artist,
			&t.Album,
			&t.AlbumArtist,
			&t.Year,
			&t.DurationMS,
			&t.ISRC,
			&t.CoverURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracks: %w", err)
	}

	return tracks, nil
}

// Export rebuilds a [models.PlaylistExport] from the cache.
func (r *TrackRepository) Export(ctx context.Context, service, playlistID string) (*models.PlaylistExport, error) {
	cached, err := NewPlaylistRepository(r.db).GetByServiceID(ctx, service, playlistID)
	if err != nil {
		return nil, err
	}

	tracks, err := r.ListByPlaylist(ctx, service, playlistID)
	if err != nil {
		return nil, err
	}

	return &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:         cached.ServiceID,
			Service:    cached.Service,
			Name:       cached.Name,
			TrackCount: len(tracks),
		},
		Tracks: tracks,
	}, nil
}
