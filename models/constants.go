package models

// User roles
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// Expense statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidRole checks that a role string is one the backend accepts
func ValidRole(role string) bool {
	return role == RoleEmployee || role == RoleManager || role == RoleAdmin
}
