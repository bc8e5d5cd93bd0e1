package domain

// Role names seeded by the initial migration.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models an account row in the users table. PasswordHash never crosses
// the API boundary: the JSON tag drops it from every response.
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Active       bool   `json:"active"`
	RoleID       int    `json:"idRol"`
}

// Role is a row of the static roles lookup table.
type Role struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
}
