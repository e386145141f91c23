package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleBuyer    Role = "buyer"
	RoleSeller   Role = "seller"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBuyer, RoleSeller, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	LicensePath  string
	CreatedAt    time.Time
}

// Employee accounts are provisioned by a store owner and scoped to one store.
type Employee struct {
	ID           string
	Name         string
	IDNumber     string
	Email        string
	PasswordHash string
	Phone        string
	Address      string
	StoreID      string
	CreatedAt    time.Time
}
