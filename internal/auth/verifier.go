package auth

import (
	"fmt"
	"os"
	"strings"

	"giveup-backend/internal/config"
	"giveup-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const defaultDisplayName = "User"

// ProviderClaims are the claims the identity provider puts in an ID token
type ProviderClaims struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Picture     string `json:"picture,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks ID tokens issued by the external identity provider
type Verifier struct {
	key      interface{}
	methods  []string
	issuer   string
	audience string
}

// NewVerifier creates a verifier. An RSA public key file takes precedence
// over a shared secret.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	v := &Verifier{issuer: cfg.Issuer, audience: cfg.Audience}

	switch {
	case cfg.ProviderPublicKeyFile != "":
		pem, err := os.ReadFile(cfg.ProviderPublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read provider public key: %w", err)
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("failed to parse provider public key: %w", err)
		}
		v.key = key
		v.methods = []string{jwt.SigningMethodRS256.Alg()}
	case cfg.ProviderSecret != "":
		v.key = []byte(cfg.ProviderSecret)
		v.methods = []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, fmt.Errorf("no identity provider key configured")
	}

	return v, nil
}

// Verify validates an ID token and returns the asserted identity
func (v *Verifier) Verify(idToken string) (*models.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &ProviderClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid id token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("id token has no subject")
	}

	return identityFromClaims(claims), nil
}

func identityFromClaims(claims *ProviderClaims) *models.Identity {
	identity := &models.Identity{
		UID:         claims.Subject,
		DisplayName: strings.TrimSpace(claims.Name),
		Email:       strings.TrimSpace(claims.Email),
	}
	if identity.DisplayName == "" {
		identity.DisplayName = defaultDisplayName
	}
	if claims.Picture != "" {
		picture := claims.Picture
		identity.PhotoURL = &picture
	}
	if claims.PhoneNumber != "" {
		phone := claims.PhoneNumber
		identity.PhoneNumber = &phone
	}
	return identity
}
