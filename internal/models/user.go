package models

// UserCredentials is a persisted user account. Password is treated as an
// opaque string end to end; hashing policy belongs to the caller.
type UserCredentials struct {
	Email    string `db:"email" json:"email"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"`
}

// PublicUser is the listing projection of a user, without secrets.
type PublicUser struct {
	Email    string `db:"email" json:"email"`
	Username string `db:"username" json:"username"`
}

// Public strips the password from the credentials.
func (u UserCredentials) Public() PublicUser {
	return PublicUser{Email: u.Email, Username: u.Username}
}

// Complete reports whether all three account fields are present.
func (u UserCredentials) Complete() bool {
	return u.Email != "" && u.Username != "" && u.Password != ""
}
