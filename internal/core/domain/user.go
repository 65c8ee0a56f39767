package domain

import (
	"strings"
	"time"
)

type User struct {
	Username  string    `db:"username" bson:"username"`
	Password  string    `db:"password" bson:"password"` // bcrypt hashed
	CreatedAt time.Time `db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `db:"updated_at" bson:"updated_at"`
}

func NewUser(username, hashedPassword string) *User {
	now := time.Now().UTC()
	return &User{
		Username:  NormalizeUsername(username),
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeUsername returns the canonical lookup key for a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
