// Package tasks runs long playlist operations with progress reporting.
//
// # Bulk Export
//
// [ExportEngine.BulkExport] fetches several playlists through a [services.PlaylistFetcher] using a
// bounded worker pool, writes each one with the formatter package and records the outcome in an
// export_manifest.json next to the files. Fetches are paced by a shared rate limiter; a failed
// playlist is reported in the result and does not stop the others.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Sends never block: updates are
// dropped when the receiver is not ready.
//
// # Track Caching
//
// An optional [Cacher] (repositories.TrackRepository) stores every fetched playlist. Cache writes are
// serialized because SQLite allows a single writer.
package tasks
