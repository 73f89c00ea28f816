package constants

// Keys used to pass shared objects through the gin context.
const (
	DbField   = "db"
	UserField = "user"

	// SessionUserKey is the session entry holding the logged-in user ID.
	SessionUserKey = "user_id"
)
