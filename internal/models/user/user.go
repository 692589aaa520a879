package user

import (
	"strings"
	"time"
)

type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Mobile    string    `json:"mobile" db:"mobile"`
	Password  string    `json:"-" db:"password"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	IsDeleted bool      `json:"is_deleted" db:"is_deleted"`
	IsStaff   bool      `json:"is_staff" db:"is_staff"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	MaxNameLength   = 255
	MaxEmailLength  = 254
	MaxMobileLength = 15
)

// UnusablePasswordPrefix marks a credential that can never match a password.
const UnusablePasswordPrefix = "!"

func New(name, email, mobile string) *User {
	return &User{
		Name:     name,
		Email:    NormalizeEmail(email),
		Mobile:   mobile,
		IsActive: true,
		IsStaff:  true,
	}
}

// NormalizeEmail lower-cases the domain part, the local part is left as is.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

func (u *User) HasUsablePassword() bool {
	return u.Password != "" && !strings.HasPrefix(u.Password, UnusablePasswordPrefix)
}
