// Package repositories implements SQLite persistence for fetched playlists.
//
// A playlist fetch is cached as one row in playlists plus one row per track, keyed by the
// service's own IDs so a refetch replaces the previous snapshot instead of duplicating it.
//
// Key Implementations:
//   - [PlaylistRepository] : Cached playlist lookups by service ID
//   - [TrackRepository] : Atomic replacement and ordered listing of a playlist's tracks
//
// Row IDs are UUIDs generated by [shared.GenerateID].
package repositories
