package auth

import (
	"fmt"
	"time"
)

// Principal is the authenticated identity bound to a request.
type Principal struct {
	UserID    int64
	Username  string
	Email     string
	CreatedAt time.Time
}

// IsZero reports whether p carries no identity.
func (p Principal) IsZero() bool { return p.UserID <= 0 }

// User is the storage representation of a principal and its credential.
type User struct {
	Principal
	PasswordHash string `json:"-"`
}

// String never prints the password hash.
func (u User) String() string {
	return fmt.Sprintf("User{ID:%d Username:%q Email:%q}", u.UserID, u.Username, u.Email)
}

// Claims is the decoded payload of an access token.
type Claims struct {
	Subject   string
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessToken is a signed bearer credential handed out at login.
type AccessToken struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PublicProfile is what a principal may see about itself.
type PublicProfile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenStatus is the answer to "is my token still good".
type TokenStatus struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// RegisterInput carries registration fields.
type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=8,maxbytes=1024"`
}

// TokenTypeBearer is the token_type returned by login.
const TokenTypeBearer = "bearer"
