// Package server runs the short-lived local HTTP server behind `spotyt setup oauth`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first). [RequestLogger] logs each
// request through charmbracelet/log.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback. It validates the state parameter,
// exchanges the code for a token and sends the result through a channel. Only the first callback is
// processed.
//
// [RunOAuthFlow] ties these together: it listens on a loopback address, points the redirect URL at it,
// opens the consent page and blocks until the callback arrives or the context ends.
package server
