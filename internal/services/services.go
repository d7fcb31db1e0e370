// package services defines the clients that consume loaded credentials
package services

import (
	"context"

	"github.com/desertthunder/spotyt/internal/models"
)

// PlaylistFetcher retrieves a playlist with all its tracks from a music service.
type PlaylistFetcher interface {
	// FetchPlaylist accepts a playlist URL, URI or ID.
	FetchPlaylist(ctx context.Context, ref string) (*models.PlaylistExport, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

var _ PlaylistFetcher = (*SpotifyService)(nil)
