package models

import (
	"time"
)

// User roles.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAgent  = "agent"
	RoleAdmin  = "admin"
)

// ValidRole reports whether the role is one of the known values.
func ValidRole(role string) bool {
	switch role {
	case RoleBuyer, RoleSeller, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// RefreshToken is one issued, not-yet-revoked refresh token.
type RefreshToken struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an account record. Password is a bcrypt hash and never serialized.
type User struct {
	ID        string `gorm:"type:char(36);primaryKey" json:"id"`
	FirstName string `gorm:"size:100;not null" json:"firstName"`
	LastName  string `gorm:"size:100;not null" json:"lastName"`
	Email     string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"`
	Role      string `gorm:"size:20;not null;default:'buyer'" json:"role"`
	Phone     string `gorm:"size:50" json:"phone,omitempty"`
	IsActive  bool   `gorm:"default:true" json:"isActive"`

	LoginAttempts int        `gorm:"default:0" json:"-"`
	LockUntil     *time.Time `json:"-"`

	RefreshTokens RefreshTokenList `json:"-"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// Locked reports whether the lockout window is still open.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// HasRefreshToken reports whether token is in the active set.
func (u *User) HasRefreshToken(token string) bool {
	for _, rt := range u.RefreshTokens {
		if rt.Token == token {
			return true
		}
	}
	return false
}
