// Package services hands loaded credentials to the Spotify Web API and YouTube Music HTTP clients.
//
// # Spotify
//
// [SpotifyService] authenticates with the OAuth2 client credentials grant built from
// [credentials.SpotifyCredential] and wraps a [spotify.Client]. Playlist pages are fetched through a
// [rate.Limiter] so long playlists do not hammer the API.
//
// # YouTube Music
//
// [NewYouTubeMusicClient] switches on the [credentials.YouTubeMusicAuth] variant and returns an
// [http.Client] that authenticates every request:
//   - headers : the stored browser headers are replayed
//   - cookies : a cookie jar is seeded from cookies.txt and a SAPISIDHASH authorization is derived per request
//   - oauth : an [oauth2.Transport] attaches the bearer token
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrInvalidArgument] : playlist reference could not be parsed
//   - [shared.ErrPlaylistNotFound] : Spotify answered 404
//   - [shared.ErrAPIRequest] : any other API failure
//   - [shared.ErrUnsupportedAuth] : unknown auth variant
package services
