package domain

import "time"

// Role enumerates caller permission levels, lowest to highest.
type Role string

const (
	RoleUser  Role = "USER"
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleUser:  1,
	RoleStaff: 2,
	RoleAdmin: 3,
}

// Rank returns the numeric permission level of the role; unknown roles rank 0.
func (r Role) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether the role meets the given minimum level.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank()
}

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// User is the domain model for portal accounts. Role and Approved are set by
// staff/admin action only; a user never self-promotes or self-approves.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Role         Role
	Approved     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
