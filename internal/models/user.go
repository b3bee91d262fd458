package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID            string    `json:"id" db:"id"`
	PasswordHash  string    `json:"-" db:"password_hash"` // JSON에서 숨김
	Name          string    `json:"name" db:"name"`
	Rank          string    `json:"rank" db:"rank"`
	Unit          string    `json:"unit" db:"unit"`
	Gender        string    `json:"gender" db:"gender"`
	FavoriteEvent string    `json:"favoriteEvent" db:"favorite_event"`
	Description   string    `json:"description" db:"description"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// HashPassword 비밀번호 해싱
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword 비밀번호 검증
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
