package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/artem13815/bonsai/pkg/auth"
)

// TokenLifetime is fixed; tokens are never refreshed or revoked server-side.
const TokenLifetime = 30 * time.Minute

var ErrEmptySecret = errors.New("jwt: empty signing secret")

// Codec issues and verifies HS256 access tokens.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Claims is the wire payload: sub, user_id, iat, exp.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

func (c *Codec) Issue(subject string, userID int64, now time.Time) (auth.AccessToken, error) {
	if subject == "" || userID <= 0 {
		return auth.AccessToken{}, fmt.Errorf("jwt: subject and user id are required")
	}
	issued := now.UTC().Truncate(time.Second)
	expires := issued.Add(TokenLifetime)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID: userID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return auth.AccessToken{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return auth.AccessToken{Token: signed, TokenType: auth.TokenTypeBearer, ExpiresAt: expires}, nil
}

// Verify checks the signature before any claim is decoded, then expiry
// against now. Expired means now >= exp.
func (c *Codec) Verify(token string, now time.Time) (auth.Claims, error) {
	dot := strings.LastIndexByte(token, '.')
	if token == "" || dot < 0 {
		return auth.Claims{}, auth.ErrTokenMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	sig, err := parser.DecodeSegment(token[dot+1:])
	if err != nil {
		return auth.Claims{}, auth.ErrTokenSignatureInvalid
	}
	if err := jwt.SigningMethodHS256.Verify(token[:dot], sig, c.secret); err != nil {
		return auth.Claims{}, auth.ErrTokenSignatureInvalid
	}

	var claims Claims
	_, err = parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrTokenSignatureInvalid, err)
	default:
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrTokenMalformed, err)
	}

	if claims.Subject == "" || claims.UserID <= 0 || claims.ExpiresAt == nil {
		return auth.Claims{}, auth.ErrTokenMalformed
	}
	out := auth.Claims{
		Subject:   claims.Subject,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
