package account

import "time"

type UserType string

const (
	UserTypeCustomer     UserType = "customer"
	UserTypePhotographer UserType = "photographer"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeCustomer, UserTypePhotographer:
		return true
	default:
		return false
	}
}

// Account is a platform user. Email is the stable identity used as the JWT
// subject; IsAdmin and IsActive gate the session-guard policies.
type Account struct {
	ID             string
	Email          string
	FullName       string
	HashedPassword string
	UserType       UserType
	IsActive       bool
	IsAdmin        bool

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
