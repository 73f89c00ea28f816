package geo

import "github.com/google/uuid"

// NewSessionToken mints an opaque autocomplete session token. One token
// groups a run of prediction queries with the single details fetch that
// closes the billing session; callers rotate to a fresh token after every
// completed or failed details fetch.
func NewSessionToken() string {
	return uuid.NewString()
}
