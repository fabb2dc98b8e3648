package auth

import (
	"fmt"
	"time"

	"giveup-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionIssuer = "giveup-backend"

// SessionClaims are the claims carried by a session token
type SessionClaims struct {
	Name        string  `json:"name,omitempty"`
	Email       string  `json:"email,omitempty"`
	Picture     *string `json:"picture,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the identity asserted by the session
func (c *SessionClaims) Identity() *models.Identity {
	return &models.Identity{
		UID:         c.Subject,
		DisplayName: c.Name,
		Email:       c.Email,
		PhotoURL:    c.Picture,
		PhoneNumber: c.PhoneNumber,
	}
}

// SessionTokens issues and validates HS256 session tokens
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionTokens creates a session token issuer
func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue generates a session token for an identity
func (t *SessionTokens) Issue(identity *models.Identity) (string, *SessionClaims, error) {
	now := t.now()
	claims := &SessionClaims{
		Name:        identity.DisplayName,
		Email:       identity.Email,
		Picture:     identity.PhotoURL,
		PhoneNumber: identity.PhoneNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    sessionIssuer,
			Subject:   identity.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, claims, nil
}

// Validate parses a session token and returns its claims
func (t *SessionTokens) Validate(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("token is missing subject or id")
	}

	return claims, nil
}
