package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotyt/internal/shared"
)

// CachedPlaylist is a playlists row: a snapshot of a fetched playlist.
type CachedPlaylist struct {
	ID         string    `json:"id"`
	Service    string    `json:"service"`
	ServiceID  string    `json:"service_id"`
	Name       string    `json:"name"`
	FetchedAt  time.Time `json:"fetched_at"`
	TrackCount int       `json:"track_count"`
}

// PlaylistRepository reads cached playlist snapshots.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// GetByServiceID retrieves the cached snapshot of a playlist, wrapping [shared.ErrPlaylistNotFound] when absent.
func (r *PlaylistRepository) GetByServiceID(ctx context.Context, service, serviceID string) (*CachedPlaylist, error) {
	query := `
		SELECT p.id, p.service, p.service_id, p.name, p.fetched_at, COUNT(t.id)
		FROM playlists p
		LEFT JOIN tracks t ON t.playlist_id = p.id
		WHERE p.service = ? AND p.service_id = ?
		GROUP BY p.id
	`

	var p CachedPlaylist
	err := r.db.QueryRowContext(ctx, query, service, serviceID).
		Scan(&p.ID, &p.Service, &p.ServiceID, &p.Name, &p.FetchedAt, &p.TrackCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s not cached", shared.ErrPlaylistNotFound, service, serviceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return &p, nil
}

// List returns every cached playlist, most recently fetched first.
func (r *PlaylistRepository) List(ctx context.Context) ([]CachedPlaylist, error) {
	query := `
		SELECT p.id, p.service, p.service_id, p.name, p.fetched_at, COUNT(t.id)
		FROM playlists p
		LEFT JOIN tracks t ON t.playlist_id = p.id
		GROUP BY p.id
		ORDER BY p.fetched_at DESC, p.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []CachedPlaylist
	for rows.Next() {
		var p CachedPlaylist
		if err := rows.Scan(&p.ID, &p.Service, &p.ServiceID, &p.Name, &p.FetchedAt, &p.TrackCount); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating playlists: %w", err)
	}

	return playlists, nil
}
