// package models defines playlist data shared across packages
package models

import "fmt"

// Playlist represents a music playlist from any service
type Playlist struct {
	ID          string `json:"id"`
	Service     string `json:"service"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// PlaylistExport represents a playlist with all its tracks
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// Track represents a music track in playlist order
type Track struct {
	ID          string `json:"id"`
	TrackNumber int    `json:"track_number"` // 1-based position in the playlist
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	AlbumArtist string `json:"album_artist"`
	Year        string `json:"year"`
	DurationMS  int    `json:"duration_ms"`
	ISRC        string `json:"isrc,omitempty"` // International Standard Recording Code
	CoverURL    string `json:"cover_url,omitempty"`
}

// Validate checks the fields every cached track must carry.
func (t Track) Validate() error {
	if t.TrackNumber < 1 {
		return fmt.Errorf("track number must be positive, got %d", t.TrackNumber)
	}
	if t.Title == "" {
		return fmt.Errorf("track %d has no title", t.TrackNumber)
	}
	return nil
}

// Label formats the track as "NN - Artist - Title", the line the text export prints for each track.
func (t Track) Label() string {
	return fmt.Sprintf("%02d - %s - %s", t.TrackNumber, t.Artist, t.Title)
}
