package models

// User is a registered account. Usernames are unique and the record never
// changes after registration.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
}

// PublicUser is the projection of User that is safe to put on the wire.
type PublicUser struct {
	Username string `json:"username"`
}

// Public strips the secret hash.
func (u User) Public() PublicUser {
	return PublicUser{Username: u.Username}
}
