package models

// User is one row of the credential snapshot. Column names mirror the
// persisted users file; the password column holds only a bcrypt hash.
type User struct {
	Username     string `csv:"Username" json:"username"`
	Name         string `csv:"Name" json:"name"`
	PasswordHash string `csv:"Password" json:"-"`
	Email        string `csv:"Email" json:"email,omitempty"`
	Phone        string `csv:"Phone" json:"phone,omitempty"`
	Branch       string `csv:"Branch" json:"branch"`
	Role         Role   `csv:"Role" json:"role"`
	Active       bool   `csv:"Active" json:"active"`
}

// Scope derives the query scope this user's sessions run under.
func (u User) Scope() RequesterScope {
	return RequesterScope{UserID: u.Username, Role: u.Role, Branch: u.Branch}
}
