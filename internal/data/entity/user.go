package entity

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type UserStatus string

const (
	UserStatusVerified   UserStatus = "VERIFIED"
	UserStatusUnverified UserStatus = "UNVERIFIED"
	UserStatusPending    UserStatus = "PENDING"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusVerified, UserStatusUnverified, UserStatusPending:
		return true
	}
	return false
}

type User struct {
	Base
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password"`
	Role         UserRole   `db:"role"`
	Status       UserStatus `db:"status"`
}
