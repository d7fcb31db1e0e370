// Package models defines the playlist and track data passed between the Spotify client, the track cache and the formatters.
//
//   - [Playlist] : playlist metadata
//   - [Track] : track metadata in playlist order, with ISRC and cover art for downstream tagging
//   - [PlaylistExport] : a playlist with its complete track listing
package models
