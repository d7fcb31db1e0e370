// package formatter renders fetched playlists as plain text, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/spotyt/internal/models"
	"github.com/desertthunder/spotyt/internal/shared"
)

// Format names an output format accepted by [Render].
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists the supported formats in the order shown in help output.
var Formats = []Format{FormatText, FormatCSV, FormatJSON}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown format %q (expected text, csv or json)", shared.ErrInvalidFlag, name)
}

// Render dispatches to the exporter for format.
func Render(export *models.PlaylistExport, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return ExportToText(export)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatJSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// csvHeaders are the CSV columns, one per [models.Track] field.
var csvHeaders = []string{"Number", "ID", "Title", "Artist", "Album", "Album Artist", "Year", "Duration (ms)", "ISRC", "Cover URL"}

// ExportToCSV converts a PlaylistExport to CSV with a header row and one record per track.
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			strconv.Itoa(track.TrackNumber),
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			track.AlbumArtist,
			track.Year,
			strconv.Itoa(track.DurationMS),
			track.ISRC,
			track.CoverURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text, one labelled track per line
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name)
	if export.Playlist.Owner != "" {
		fmt.Fprintf(&buf, "Owner: %s\n", export.Playlist.Owner)
	}
	if export.Playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Playlist.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for _, track := range export.Tracks {
		fmt.Fprintf(&buf, "%s [%s]\n", track.Label(), FormatDuration(track.DurationMS))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the playlist and its tracks as indented JSON
func ExportToJSON(export *models.PlaylistExport) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal playlist: %w", err)
	}
	return append(data, '\n'), nil
}

// FormatDuration renders milliseconds as m:ss, or h:mm:ss past an hour.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Filename is the default file name for export: the sanitized playlist name with the format as extension.
func Filename(export *models.PlaylistExport, format Format) string {
	base := shared.SanitizeFilename(export.Playlist.Name)
	if base == "" {
		base = export.Playlist.ID
	}
	ext := string(format)
	if format == FormatText {
		ext = "txt"
	}
	return base + "." + ext
}

// WriteExport renders export and writes it to path.
//
// An empty path defaults to [Filename].
func WriteExport(export *models.PlaylistExport, format Format, path string) (string, error) {
	data, err := Render(export, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = Filename(export, format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
