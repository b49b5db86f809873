// Package server provides the loopback HTTP routing and OAuth callback
// handling behind the auth login command.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow for
// Google. The handler validates the state parameter (CSRF protection),
// exchanges the authorization code for tokens, and sends the result through
// a channel. It only processes one callback to prevent replay attacks.
//
// # Usage
//
// When the user runs auth login, a temporary HTTP server starts on the
// configured loopback redirect address, the system browser opens the Google
// consent page, the handler receives the callback, and the server shuts
// down once the token has been exchanged and persisted.
package server
