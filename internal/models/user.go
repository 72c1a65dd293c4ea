package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `gorm:"not null" json:"-"`
	Role      string `gorm:"type:varchar(32);not null" json:"role"`
	Status    string `gorm:"type:varchar(32);not null" json:"status"`
}

const (
	UserRoleAdmin     = "admin"
	UserRoleSuperuser = "superuser"

	UserStatusActive   = "active"
	UserStatusInactive = "inactive"

	// UnusablePasswordPrefix marks stored passwords that can never match a
	// bcrypt comparison. Such accounts have to go through a password reset.
	UnusablePasswordPrefix = "!"
)

func (u *User) HasUsablePassword() bool {
	return u != nil && u.Password != "" && !strings.HasPrefix(u.Password, UnusablePasswordPrefix)
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Password  string `json:"password,omitempty"`
}
