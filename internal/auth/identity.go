package auth

// Identity represents the normalized Discord identity of an
// authenticated user. It contains facts only, no decisions.
type Identity struct {
	UserID   string // Discord user snowflake
	Username string
	Avatar   string // avatar hash, empty when the user has none
}
