package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/spotyt/internal/shared"
	"github.com/joho/godotenv"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})
	app := newApp(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented", "error", err)
			os.Exit(0)
		}
		if isSetupError(err) {
			logger.Fatal("configuration error", "error", err, "hint", shared.SetupHint)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// isSetupError reports whether err is fixed by editing the config or credential files.
func isSetupError(err error) bool {
	for _, target := range []error{
		shared.ErrMissingConfig,
		shared.ErrInvalidConfig,
		shared.ErrMissingCredentials,
		shared.ErrInvalidCredentials,
		shared.ErrAuthFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
