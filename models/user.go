package models

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"` // employee, manager, admin
}

// IsApprover reports whether the user's role allows acting on pending
// expenses. The backend is still the actual authority; this only decides
// what the UI offers.
func (u *User) IsApprover() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}
