package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aqilnadzmi/library-duty-api/internal/domain/account"
)

const (
	Issuer   = "library-duty-system"
	Audience = "library-users"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the signed identity a session token carries. The matric number
// is only ever set for student tokens; omitempty keeps it out of everyone
// else's payload.
type Claims struct {
	UserID              int64        `json:"userId"`
	Email               string       `json:"email"`
	FirstName           string       `json:"firstName"`
	LastName            string       `json:"lastName"`
	Role                account.Role `json:"role"`
	StudentMatricNumber string       `json:"studentMatricNumber,omitempty"`
	jwt.RegisteredClaims
}

// NewClaims builds the claim set for an account. matric is ignored for
// non-student roles, so the student-only invariant holds no matter what the
// caller passes.
func NewClaims(acc account.Account, matric string) Claims {
	c := Claims{
		UserID:    acc.UserID,
		Email:     acc.Email,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		Role:      acc.Role,
	}

	if acc.Role == account.RoleStudent {
		c.StudentMatricNumber = matric
	}

	return c
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// GenerateToken signs the claims with HS256, stamping issuer, audience and
// expiry. The registered fields on the input are overwritten.
func (m *Manager) GenerateToken(claims Claims) (string, error) {
	now := time.Now().UTC()

	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.secret)
}

// VerifyToken parses and validates a token string. Signature, expiry,
// issuer and audience are all enforced; any failure comes back as a single
// opaque error.
func (m *Manager) VerifyToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(t *jwt.Token) (interface{}, error) {
			// Enforce HS256
			_, ok := t.Method.(*jwt.SigningMethodHMAC)

			if !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.secret, nil
		},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := account.ParseRole(string(claims.Role)); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
