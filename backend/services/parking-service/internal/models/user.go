package models

// Role of a user account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User account as stored in the users document.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	CreatedAt    string `json:"created_at"`
}

// Identity is what a bearer token resolves to.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether identity carries the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanSee reports whether identity may view records owned by username.
func (i Identity) CanSee(username string) bool {
	return i.IsAdmin() || i.Username == username
}
