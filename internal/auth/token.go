package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tkd-backend/internal/domain"
)

// ErrInvalidToken is the only error Verify returns. Expired, tampered and
// malformed tokens are indistinguishable to callers so that nothing about the
// failure reason leaks to clients.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity payload carried inside a signed token.
type Claims struct {
	UserID int64       `json:"userId"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed identity tokens. The secret and TTL are
// process-wide configuration, fixed at construction.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given identity, valid for the codec's TTL.
func (c *Codec) Issue(userID int64, email string, role domain.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	return token.SignedString(c.secret)
}

// Verify checks the signature and expiry, then validates the decoded claims
// against the expected shape. A token that decodes but carries claims outside
// the schema is rejected the same way as a tampered one.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if err := validateClaims(claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func validateClaims(claims *Claims) error {
	if claims.UserID <= 0 {
		return errors.New("userId must be positive")
	}
	if !emailShaped(claims.Email) {
		return errors.New("email is not an address")
	}
	if !claims.Role.Valid() {
		return errors.New("unknown role")
	}
	return nil
}

func emailShaped(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\n")
}
