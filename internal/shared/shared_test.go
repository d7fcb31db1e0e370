package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSetLogLevel(t *testing.T) {
	t.Run("valid level", func(t *testing.T) {
		logger := NewLogger(&bytes.Buffer{})
		if err := SetLogLevel(logger, "DEBUG"); err != nil {
			t.Fatalf("SetLogLevel() error = %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}
	})

	t.Run("empty level keeps default", func(t *testing.T) {
		logger := NewLogger(&bytes.Buffer{})
		before := logger.GetLevel()
		if err := SetLogLevel(logger, ""); err != nil {
			t.Fatalf("SetLogLevel() error = %v", err)
		}
		if logger.GetLevel() != before {
			t.Errorf("expected level %v, got %v", before, logger.GetLevel())
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		err := SetLogLevel(NewLogger(&bytes.Buffer{}), "loud")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithLogger(NewLogger(&buf), "dir", "config")
	logger.Info("loaded")

	if !strings.Contains(buf.String(), "dir=config") {
		t.Errorf("expected child logger fields in output, got %q", buf.String())
	}
}

func TestSanitizeFilename(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean", in: "My Playlist", want: "My Playlist"},
		{name: "reserved characters", in: `AC/DC: "Live"?`, want: "AC_DC_ _Live_"},
		{name: "collapses runs", in: "a<<>>b", want: "a_b"},
		{name: "trims", in: "  spaced  ", want: "spaced"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected 36 character UUID, got %d", len(a))
	}
}
