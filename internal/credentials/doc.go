// Package credentials loads and validates the credential files that live in the configuration directory.
//
// # Files
//
// The directory (config/ by default) holds:
//   - spotify.json : {"client_id", "client_secret"} for the Spotify Web API client credentials grant
//   - headers_auth.json : browser request headers for YouTube Music
//   - cookies.txt : a Netscape HTTP Cookie File exported from a logged-in browser
//   - ytmusic.json : {"oauth_credentials": {...}} OAuth tokens for YouTube Music
//
// spotify.json is always required. Exactly one YouTube Music method is used, chosen by
// [YouTubeMusicPrecedence]: headers_auth.json, then cookies.txt, then ytmusic.json.
// Methods never combine; once a file is found the remaining ones are not read.
//
// # YouTube Music auth
//
// [YouTubeMusicAuth] is a closed sum type with three variants: [HeaderAuth], [CookieAuth] and [OAuthAuth].
// Consumers switch on the concrete type and must handle every variant.
//
// # Errors
//
// Loading fails with one of:
//   - [*MissingFileError] : spotify.json is absent (matches [shared.ErrMissingCredentials])
//   - [*NoAuthMethodError] : none of the YouTube Music files exist (matches [shared.ErrMissingCredentials])
//   - [*MalformedConfigError] : a file exists but fails validation (matches [shared.ErrInvalidCredentials])
//
// All of them are fatal configuration errors. Nothing here retries, logs, touches the network or writes,
// except the Save functions used by the setup commands.
package credentials
