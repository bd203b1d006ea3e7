package models

// Role is a Formbricks organization role.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

type User struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Organization string `json:"organization"`
}

// RoleCounts tallies users per role.
func RoleCounts(users []User) map[Role]int {
	counts := make(map[Role]int, 4)
	for _, u := range users {
		counts[u.Role]++
	}
	return counts
}
