package models

// NewAdmin creates a user model with Role preset to "admin".
// Admins are ordinary users with elevated role; there is no separate table.
func NewAdmin(name, email string) *User {
	u := NewUser(name, email)
	u.Role = RoleAdmin
	return u
}
