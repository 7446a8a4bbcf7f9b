package user

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleContributor
}

// User is identified by an opaque id token. Score is only ever changed
// through the score ledger.
type User struct {
	ID        string
	Name      string
	Role      Role
	Score     int
	CreatedAt time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
