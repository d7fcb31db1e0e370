package credentials

import (
	"fmt"
	"strings"

	"github.com/desertthunder/spotyt/internal/shared"
)

// MissingFileError reports a required credential file that does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("credential file %s not found; %s", e.Path, shared.SetupHint)
}

// Is matches [shared.ErrMissingCredentials].
func (e *MissingFileError) Is(target error) bool { return target == shared.ErrMissingCredentials }

// MalformedConfigError reports a credential file that exists but fails validation.
type MalformedConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedConfigError) Error() string {
	msg := fmt.Sprintf("malformed credential file %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedConfigError) Unwrap() error { return e.Err }

// Is matches [shared.ErrInvalidCredentials].
func (e *MalformedConfigError) Is(target error) bool { return target == shared.ErrInvalidCredentials }

// NoAuthMethodError reports that none of the YouTube Music auth files exist.
type NoAuthMethodError struct {
	Dir   string
	Tried []string
}

func (e *NoAuthMethodError) Error() string {
	return fmt.Sprintf("no YouTube Music auth file in %s (looked for %s); %s",
		e.Dir, strings.Join(e.Tried, ", "), shared.SetupHint)
}

// Is matches [shared.ErrMissingCredentials].
func (e *NoAuthMethodError) Is(target error) bool { return target == shared.ErrMissingCredentials }

// NetscapeSyntaxError points at the first invalid line of a cookie file.
type NetscapeSyntaxError struct {
	Line int
	Msg  string
}

func (e *NetscapeSyntaxError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}
