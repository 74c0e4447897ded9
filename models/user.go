package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a post author. Staff users may sign in to the admin API.
type User struct {
	ID           uint      `json:"id" db:"id" gorm:"primaryKey"`
	Username     string    `json:"username" db:"username" gorm:"type:varchar(150);not null;uniqueIndex:idx_users_username"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:text;not null;default:''"`
	IsStaff      bool      `json:"isStaff" db:"is_staff" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamptz;not null;autoCreateTime"`
}

func (User) TableName() string { return "users" }

func (u User) String() string { return u.Username }

// SetPassword stores a bcrypt hash of password
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
// Users without a hash can never sign in.
func (u User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
