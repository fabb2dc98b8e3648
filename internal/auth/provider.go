package auth

import (
	"context"
	"fmt"

	"giveup-backend/internal/apperr"
	"giveup-backend/internal/models"
)

// Provider is the identity provider facade: it exchanges provider ID tokens
// for session tokens and signs sessions out.
type Provider struct {
	verifier *Verifier
	tokens   *SessionTokens
	revoked  RevocationStore
}

// NewProvider creates an identity provider facade
func NewProvider(verifier *Verifier, tokens *SessionTokens, revoked RevocationStore) *Provider {
	return &Provider{
		verifier: verifier,
		tokens:   tokens,
		revoked:  revoked,
	}
}

// SignIn verifies a provider ID token
func (p *Provider) SignIn(ctx context.Context, idToken string) (*models.Identity, error) {
	if idToken == "" {
		return nil, apperr.New(apperr.CodeValidation, "id_token is required")
	}
	identity, err := p.verifier.Verify(idToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnauthorized, err, "sign-in failed")
	}
	return identity, nil
}

// IssueSession issues a session token for a signed-in identity
func (p *Provider) IssueSession(identity *models.Identity) (string, error) {
	token, _, err := p.tokens.Issue(identity)
	if err != nil {
		return "", fmt.Errorf("failed to issue session: %w", err)
	}
	return token, nil
}

// Authenticate validates a session token and checks it was not signed out
func (p *Provider) Authenticate(ctx context.Context, sessionToken string) (*SessionClaims, error) {
	if sessionToken == "" {
		return nil, apperr.New(apperr.CodeUnauthorized, "token required")
	}
	claims, err := p.tokens.Validate(sessionToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnauthorized, err, "invalid token")
	}

	revoked, err := p.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDependency, err, "session store unavailable")
	}
	if revoked {
		return nil, apperr.New(apperr.CodeUnauthorized, "session signed out")
	}
	return claims, nil
}

// SignOut revokes a session token for the rest of its lifetime
func (p *Provider) SignOut(ctx context.Context, sessionToken string) error {
	claims, err := p.tokens.Validate(sessionToken)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnauthorized, err, "invalid token")
	}

	ttl := claims.ExpiresAt.Time.Sub(p.tokens.now())
	if err := p.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "failed to sign out")
	}
	return nil
}
