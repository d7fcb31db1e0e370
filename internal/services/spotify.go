// Spotify Web API client built on the client credentials grant
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotyt/internal/credentials"
	"github.com/desertthunder/spotyt/internal/models"
	"github.com/desertthunder/spotyt/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultSpotifyPageSize = 100
	defaultSpotifyRate     = 10.0
)

var spotifyIDPattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)

// SpotifyOptions tunes the Spotify client. Zero values use defaults.
type SpotifyOptions struct {
	// HTTPClient is used for both token and API requests.
	HTTPClient *http.Client
	// TokenURL overrides the Spotify accounts token endpoint.
	TokenURL string
	// BaseURL overrides https://api.spotify.com/v1/.
	BaseURL           string
	RequestsPerSecond float64
	PageSize          int
	Logger            *log.Logger
}

// SpotifyService fetches playlist metadata from the Spotify Web API.
type SpotifyService struct {
	client   *spotify.Client
	tokens   oauth2.TokenSource
	limiter  *rate.Limiter
	pageSize int
	logger   *log.Logger
}

// NewSpotifyService creates a Spotify client authenticated with the client credentials grant.
//
// No request is made until the first call; tokens are fetched and refreshed lazily.
func NewSpotifyService(ctx context.Context, cred credentials.SpotifyCredential, opts SpotifyOptions) *SpotifyService {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.PageSize <= 0 || opts.PageSize > defaultSpotifyPageSize {
		opts.PageSize = defaultSpotifyPageSize
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultSpotifyRate
	}

	cc := cred.ClientCredentials()
	if opts.TokenURL != "" {
		cc.TokenURL = opts.TokenURL
	}
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	tokens := cc.TokenSource(ctx)
	clientOpts := []spotify.ClientOption{}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(strings.TrimSuffix(opts.BaseURL, "/")+"/"))
	}

	return &SpotifyService{
		client:   spotify.New(oauth2.NewClient(ctx, tokens), clientOpts...),
		tokens:   tokens,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		pageSize: opts.PageSize,
		logger:   shared.WithLogger(opts.Logger, "service", "spotify"),
	}
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Token requests (or reuses) an access token, which verifies the client credentials against the accounts service.
func (s *SpotifyService) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := s.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: spotify client credentials rejected: %w", shared.ErrAuthFailed, err)
	}
	return tok, nil
}

// FetchPlaylist retrieves playlist metadata and every track, following pagination.
//
// Items that are not tracks (podcast episodes) are skipped; track numbers stay contiguous.
func (s *SpotifyService) FetchPlaylist(ctx context.Context, ref string) (*models.PlaylistExport, error) {
	id, err := ParsePlaylistID(ref)
	if err != nil {
		return nil, err
	}
	logger := shared.WithLogger(s.logger, "playlist", id)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	playlist, err := s.client.GetPlaylist(ctx, spotify.ID(id))
	if err != nil {
		return nil, spotifyError(id, err)
	}

	export := &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:          id,
			Service:     "spotify",
			Name:        playlist.Name,
			Description: playlist.Description,
			Owner:       playlist.Owner.DisplayName,
			Public:      playlist.IsPublic,
		},
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(id), spotify.Limit(s.pageSize))
	if err != nil {
		return nil, spotifyError(id, err)
	}

	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			export.Tracks = append(export.Tracks, toTrack(item.Track.Track, len(export.Tracks)+1))
		}
		logger.Debug("fetched page", "offset", page.Offset, "tracks", len(export.Tracks))

		if page.Next == "" {
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		err = s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, spotifyError(id, err)
		}
	}

	export.Playlist.TrackCount = len(export.Tracks)
	logger.Info("fetched playlist", "name", export.Playlist.Name, "tracks", export.Playlist.TrackCount)

	return export, nil
}

func toTrack(t *spotify.FullTrack, number int) models.Track {
	track := models.Track{
		ID:          string(t.ID),
		TrackNumber: number,
		Title:       t.Name,
		Album:       t.Album.Name,
		DurationMS:  int(t.Duration),
		ISRC:        t.ExternalIDs["isrc"],
	}

	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	if len(t.Album.Artists) > 0 {
		track.AlbumArtist = t.Album.Artists[0].Name
	}
	if len(t.Album.ReleaseDate) >= 4 {
		track.Year = t.Album.ReleaseDate[:4]
	}
	if len(t.Album.Images) > 0 {
		track.CoverURL = t.Album.Images[0].URL
	}

	return track
}

func spotifyError(id string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return fmt.Errorf("%w: spotify: %w", shared.ErrAPIRequest, err)
}

// ParsePlaylistID extracts the playlist ID from an open.spotify.com URL, a spotify:playlist: URI or a bare ID.
func ParsePlaylistID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	id := ref

	switch {
	case strings.HasPrefix(ref, "spotify:"):
		parts := strings.Split(ref, ":")
		if len(parts) != 3 || parts[1] != "playlist" {
			return "", fmt.Errorf("%w: not a playlist URI: %s", shared.ErrInvalidArgument, ref)
		}
		id = parts[2]
	case strings.Contains(ref, "/"):
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", shared.ErrInvalidArgument, ref, err)
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		id = ""
		for i := 0; i < len(segments)-1; i++ {
			if segments[i] == "playlist" {
				id = segments[i+1]
				break
			}
		}
	}

	if id == "" || !spotifyIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: not a Spotify playlist reference: %q", shared.ErrInvalidArgument, ref)
	}
	return id, nil
}
