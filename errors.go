package folio

import "errors"

// Sentinel errors returned by the store and admin surface. Handlers map
// these to 4xx responses in the central HTTP error handler; everything
// else is logged and surfaced as a generic 500.
var (
	// ErrNotFound is returned when a slug or id does not exist. Deleting a
	// missing post returns it too, so callers can tell "already gone" from
	// "deleted".
	ErrNotFound = errors.New("folio: not found")

	// ErrUnauthorized is returned when a write is attempted without a valid
	// admin session. No state change happens.
	ErrUnauthorized = errors.New("folio: unauthorized")

	// ErrSlugExists is returned when a create or rename collides with an
	// existing post slug.
	ErrSlugExists = errors.New("folio: slug already exists")
)
