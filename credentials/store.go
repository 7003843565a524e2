// Package credentials persists the access/refresh token pair between runs.
// Tokens are opaque strings; validity is discovered reactively when the
// backend rejects a request, so no expiry metadata is kept here.
package credentials

// Store holds the current token pair. The empty string marks an absent token.
type Store interface {
	// Set overwrites both tokens. Written on login and on every successful refresh.
	Set(access, refresh string) error
	// Access returns the stored access token, or "" if never set or cleared.
	Access() string
	// Refresh returns the stored refresh token, or "" if never set or cleared.
	Refresh() string
	// Clear removes both tokens. Used on logout and on unrecoverable refresh failure.
	Clear() error
}
