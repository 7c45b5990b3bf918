package auth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"storefront/internal/model"
)

// DefaultTokenTTL is the lifetime of a bearer token when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// Claims represents JWT claims. RegisteredClaims.ID carries the token id used for revocation.
type Claims struct {
	UserID string     `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserUUID parses the subject user id.
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the configured token lifetime.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken issues a signed HS256 token for the user.
func (s *JWTService) GenerateToken(userID uuid.UUID, role model.Role) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := claims.UserUUID(); err != nil {
		return nil, errors.Wrap(err, "invalid subject")
	}
	return claims, nil
}

// Remaining returns how long the token behind claims stays valid.
func (s *JWTService) Remaining(claims *Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return s.ttl
	}
	d := claims.ExpiresAt.Time.Sub(s.now())
	if d < 0 {
		return 0
	}
	return d
}
