package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User account statuses.
const (
	UserStatusPending  = "Pending"
	UserStatusActive   = "Active"
	UserStatusInactive = "Inactive"
)

type User struct {
	UserID    uint       `gorm:"primaryKey;column:user_id" json:"user_id"`
	FullName  string     `gorm:"column:full_name" json:"full_name"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Role      string     `gorm:"column:role" json:"role"`
	Status    string     `gorm:"column:status" json:"status"` // Pending|Active|Inactive
	Password  string     `gorm:"column:password" json:"-"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (User) TableName() string { return "users" }

// SetPassword stores a bcrypt hash of the given plain-text password.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether the plain-text password matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}
