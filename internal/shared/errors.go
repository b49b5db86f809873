package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Input errors
	ErrInvalidURL      = fmt.Errorf("invalid setlist.fm URL")
	ErrEmptySetlist    = fmt.Errorf("setlist contains no songs")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrMissingArgument = fmt.Errorf("missing required argument")

	// Upstream errors (setlist source, video search, playlist service)
	ErrSetlistNotFound    = fmt.Errorf("setlist not found")
	ErrRateLimited        = fmt.Errorf("rate limit exceeded")
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTokenExpired       = fmt.Errorf("access token expired")
	ErrQuotaExceeded      = fmt.Errorf("API quota exceeded")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")
)
