package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotyt/internal/models"
	"github.com/desertthunder/spotyt/internal/shared"
	th "github.com/desertthunder/spotyt/internal/testing"
)

func testExport() *models.PlaylistExport {
	return &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:          "test123",
			Service:     "spotify",
			Name:        "Test Playlist",
			Description: "A test playlist",
			Owner:       "someone",
			TrackCount:  2,
			Public:      true,
		},
		Tracks: []models.Track{
			{
				ID:          "track1",
				TrackNumber: 1,
				Title:       "Song One",
				Artist:      "Artist One",
				Album:       "Album, One",
				AlbumArtist: "Artist One",
				Year:        "2021",
				DurationMS:  180000,
				ISRC:        "USRC12345678",
			},
			{
				ID:          "track2",
				TrackNumber: 2,
				Title:       "Song Two",
				Artist:      "Artist Two",
				Album:       "Album Two",
				DurationMS:  241500,
				ISRC:        "USRC87654321",
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header plus 2 records, got %d", len(records))
		}
		if strings.Join(records[0], ",") != strings.Join(csvHeaders, ",") {
			t.Errorf("unexpected headers: %v", records[0])
		}

		first := records[1]
		if first[0] != "1" || first[1] != "track1" || first[2] != "Song One" {
			t.Errorf("unexpected first record: %v", first)
		}
		if first[4] != "Album, One" {
			t.Errorf("expected quoted album to survive, got %q", first[4])
		}
		if first[7] != "180000" || first[8] != "USRC12345678" {
			t.Errorf("unexpected duration/isrc: %v", first)
		}
	})

	t.Run("ExportToCSV empty playlist", func(t *testing.T) {
		data, err := ExportToCSV(&models.PlaylistExport{})
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if lines := strings.Count(string(data), "\n"); lines != 1 {
			t.Errorf("expected only the header line, got %d lines", lines)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"Playlist: Test Playlist\n",
			"Owner: someone\n",
			"Description: A test playlist\n",
			"Tracks: 2\n",
			"01 - Artist One - Song One [3:00]\n",
			"02 - Artist Two - Song Two [4:01]\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText without optional fields", func(t *testing.T) {
		export := testExport()
		export.Playlist.Description = ""
		export.Playlist.Owner = ""

		data, err := ExportToText(export)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if strings.Contains(string(data), "Description:") || strings.Contains(string(data), "Owner:") {
			t.Errorf("empty fields should be omitted, got:\n%s", data)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testExport())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded models.PlaylistExport
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Playlist.Name != "Test Playlist" || len(decoded.Tracks) != 2 {
			t.Errorf("unexpected decoded export: %+v", decoded)
		}
		if decoded.Tracks[1] != testExport().Tracks[1] {
			t.Errorf("track mismatch: %+v", decoded.Tracks[1])
		}
	})
}

func TestRender(t *testing.T) {
	tests := []struct {
		format Format
		prefix string
	}{
		{FormatText, "Playlist: "},
		{FormatCSV, "Number,ID,Title"},
		{FormatJSON, "{"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			data, err := Render(testExport(), tt.format)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if !strings.HasPrefix(string(data), tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, string(data)[:min(len(data), 40)])
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := Render(testExport(), Format("xml")); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "text", want: FormatText},
		{input: "CSV", want: FormatCSV},
		{input: " json ", want: FormatJSON},
		{input: "markdown", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidFlag) {
					t.Errorf("expected ErrInvalidFlag, got %v", err)
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

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int
		want string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{999, "0:00"},
		{61000, "1:01"},
		{241500, "4:01"},
		{3600000, "1:00:00"},
		{3725000, "1:02:05"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %s, expected %s", tt.ms, got, tt.want)
		}
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")

		written, err := WriteExport(testExport(), FormatCSV, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Song One") {
			t.Errorf("file missing track data: %s", content)
		}
	})

	t.Run("default path", func(t *testing.T) {
		t.Chdir(t.TempDir())
		export := testExport()
		export.Playlist.Name = "Mix: 2024/25"

		written, err := WriteExport(export, FormatText, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "Mix_ 2024_25.txt" {
			t.Errorf("expected sanitized filename, got %s", written)
		}
		th.AssertFileExists(t, written)
	})

	t.Run("unwritable path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.json")
		if _, err := WriteExport(testExport(), FormatJSON, path); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}
