package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotyt/internal/credentials"
	"github.com/desertthunder/spotyt/internal/shared"
	"golang.org/x/time/rate"
)

const playlistJSON = `{
	"id": "37i9dQZF1DXcBWIGoYBM5M",
	"name": "Today's Top Hits",
	"description": "The hottest tracks",
	"public": true,
	"owner": {"id": "spotify", "display_name": "Spotify"},
	"tracks": {"total": 3}
}`

func trackItem(id, name, artist, album, isrc string) string {
	return fmt.Sprintf(`{
		"added_at": "2024-01-01T00:00:00Z",
		"track": {
			"type": "track",
			"id": %q,
			"name": %q,
			"duration_ms": 215000,
			"artists": [{"id": "a1", "name": %q}, {"id": "a2", "name": "Featured"}],
			"album": {
				"id": "al1",
				"name": %q,
				"release_date": "2023-10-06",
				"artists": [{"id": "a1", "name": %q}],
				"images": [{"url": "https://i.scdn.co/image/cover", "height": 640, "width": 640}]
			},
			"external_ids": {"isrc": %q}
		}
	}`, id, name, artist, album, artist, isrc)
}

const episodeItem = `{
	"added_at": "2024-01-01T00:00:00Z",
	"track": {"type": "episode", "id": "ep1", "name": "A Podcast", "duration_ms": 1000}
}`

// spotifyServer serves a token endpoint and a two page playlist.
func spotifyServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	tokenRequests := 0

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		id, secret, ok := r.BasicAuth()
		if !ok || id != "test-client" || secret != "test-secret" {
			if err := r.ParseForm(); err != nil || r.PostForm.Get("client_id") != "test-client" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error": "invalid_client"}`)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "spotify-token", "token_type": "Bearer", "expires_in": 3600}`)
	})

	mux.HandleFunc("/v1/playlists/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer spotify-token" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": {"status": 401, "message": "No token provided"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		path := strings.TrimPrefix(r.URL.Path, "/v1/playlists/")
		id, rest, _ := strings.Cut(path, "/")
		if id != "37i9dQZF1DXcBWIGoYBM5M" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": {"status": 404, "message": "Resource not found"}}`)
			return
		}

		switch rest {
		case "":
			fmt.Fprint(w, playlistJSON)
		case "tracks", "items":
			tracksURL := srv.URL + "/v1/playlists/" + id + "/" + rest
			if r.URL.Query().Get("offset") == "2" {
				fmt.Fprintf(w, `{"href": %q, "limit": 2, "offset": 2, "total": 3, "next": null, "items": [%s]}`,
					tracksURL, trackItem("t3", "Third", "Artist C", "Album C", "USC000000003"))
				return
			}
			fmt.Fprintf(w, `{"href": %q, "limit": 2, "offset": 0, "total": 3, "next": %q, "items": [%s, %s, %s]}`,
				tracksURL, tracksURL+"?offset=2&limit=2",
				trackItem("t1", "First", "Artist A", "Album A", "USA000000001"),
				episodeItem,
				trackItem("t2", "Second", "Artist B", "Album B", "USB000000002"))
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": {"status": 404, "message": "Resource not found"}}`)
		}
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenRequests
}

func newTestSpotify(srv *httptest.Server, cred credentials.SpotifyCredential) *SpotifyService {
	return NewSpotifyService(context.Background(), cred, SpotifyOptions{
		HTTPClient:        srv.Client(),
		TokenURL:          srv.URL + "/api/token",
		BaseURL:           srv.URL + "/v1",
		RequestsPerSecond: 1000,
		PageSize:          2,
	})
}

var testCred = credentials.SpotifyCredential{ClientID: "test-client", ClientSecret: "test-secret"}

func TestSpotifyService(t *testing.T) {
	t.Run("Name", func(t *testing.T) {
		srv, _ := spotifyServer(t)
		if name := newTestSpotify(srv, testCred).Name(); name != "Spotify" {
			t.Errorf("expected Spotify, got %s", name)
		}
	})

	t.Run("FetchPlaylist follows pagination and skips episodes", func(t *testing.T) {
		srv, tokens := spotifyServer(t)
		svc := newTestSpotify(srv, testCred)

		export, err := svc.FetchPlaylist(context.Background(), "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc")
		if err != nil {
			t.Fatalf("FetchPlaylist failed: %v", err)
		}

		p := export.Playlist
		if p.ID != "37i9dQZF1DXcBWIGoYBM5M" || p.Service != "spotify" {
			t.Errorf("unexpected playlist identity: %+v", p)
		}
		if p.Name != "Today's Top Hits" || p.Owner != "Spotify" || !p.Public {
			t.Errorf("unexpected playlist metadata: %+v", p)
		}
		if p.TrackCount != 3 || len(export.Tracks) != 3 {
			t.Fatalf("expected 3 tracks, got count=%d len=%d", p.TrackCount, len(export.Tracks))
		}

		for i, want := range []string{"First", "Second", "Third"} {
			got := export.Tracks[i]
			if got.Title != want {
				t.Errorf("track %d: expected %s, got %s", i, want, got.Title)
			}
			if got.TrackNumber != i+1 {
				t.Errorf("track %d: expected number %d, got %d", i, i+1, got.TrackNumber)
			}
		}

		first := export.Tracks[0]
		if first.Artist != "Artist A" || first.AlbumArtist != "Artist A" || first.Album != "Album A" {
			t.Errorf("unexpected artist/album: %+v", first)
		}
		if first.Year != "2023" || first.DurationMS != 215000 {
			t.Errorf("unexpected year/duration: %+v", first)
		}
		if first.ISRC != "USA000000001" || first.CoverURL != "https://i.scdn.co/image/cover" {
			t.Errorf("unexpected isrc/cover: %+v", first)
		}

		if *tokens != 1 {
			t.Errorf("expected a single token request, got %d", *tokens)
		}
	})

	t.Run("FetchPlaylist not found", func(t *testing.T) {
		srv, _ := spotifyServer(t)
		_, err := newTestSpotify(srv, testCred).FetchPlaylist(context.Background(), "spotify:playlist:missing0000")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("FetchPlaylist waits for the limiter before the first request", func(t *testing.T) {
		srv, tokens := spotifyServer(t)
		svc := newTestSpotify(srv, testCred)
		svc.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
		svc.limiter.Allow()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		if _, err := svc.FetchPlaylist(ctx, "37i9dQZF1DXcBWIGoYBM5M"); err == nil {
			t.Fatal("expected the exhausted limiter to stop the fetch")
		}
		if *tokens != 0 {
			t.Errorf("expected no request before the limiter allowed one, got %d token requests", *tokens)
		}
	})

	t.Run("FetchPlaylist rejects invalid references", func(t *testing.T) {
		srv, tokens := spotifyServer(t)
		_, err := newTestSpotify(srv, testCred).FetchPlaylist(context.Background(), "spotify:album:abc")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if *tokens != 0 {
			t.Errorf("expected no token request, got %d", *tokens)
		}
	})

	t.Run("Token", func(t *testing.T) {
		srv, _ := spotifyServer(t)
		tok, err := newTestSpotify(srv, testCred).Token(context.Background())
		if err != nil {
			t.Fatalf("Token failed: %v", err)
		}
		if tok.AccessToken != "spotify-token" {
			t.Errorf("expected spotify-token, got %s", tok.AccessToken)
		}
	})

	t.Run("Token with rejected credentials", func(t *testing.T) {
		srv, _ := spotifyServer(t)
		bad := credentials.SpotifyCredential{ClientID: "wrong", ClientSecret: "wrong"}
		_, err := newTestSpotify(srv, bad).Token(context.Background())
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}

func TestParsePlaylistID(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{name: "bare ID", ref: "37i9dQZF1DXcBWIGoYBM5M", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "bare ID with whitespace", ref: "  37i9dQZF1DXcBWIGoYBM5M\n", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "URI", ref: "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "URL", ref: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "URL with query", ref: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=1234", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "localized URL", ref: "https://open.spotify.com/intl-de/playlist/37i9dQZF1DXcBWIGoYBM5M", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "album URI", ref: "spotify:album:37i9dQZF1DXcBWIGoYBM5M", wantErr: true},
		{name: "album URL", ref: "https://open.spotify.com/album/37i9dQZF1DXcBWIGoYBM5M", wantErr: true},
		{name: "empty", ref: "", wantErr: true},
		{name: "invalid characters", ref: "not-an-id!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlaylistID(tt.ref)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
