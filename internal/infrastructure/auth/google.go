package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"
)

// Google identity errors
var (
	ErrGoogleTokenInvalid = errors.New("google id token is invalid")
	ErrGoogleWrongIssuer  = errors.New("google id token has wrong issuer")
)

// TestToken is the fixed development credential accepted when
// google.allow_test_token is enabled.
const TestToken = "test-token"

// GoogleIdentity holds the verified fields of a Google ID token
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier verifies Google ID tokens presented at login
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// GoogleIDTokenVerifier verifies tokens against Google's public keys
type GoogleIDTokenVerifier struct {
	clientID string
}

// NewGoogleIDTokenVerifier creates a verifier bound to the OAuth client ID
func NewGoogleIDTokenVerifier(clientID string) *GoogleIDTokenVerifier {
	return &GoogleIDTokenVerifier{clientID: clientID}
}

// Verify validates signature, audience and issuer, then extracts the
// identity fields.
func (v *GoogleIDTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, ErrGoogleTokenInvalid
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return nil, ErrGoogleWrongIssuer
	}

	identity := &GoogleIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = strings.ToLower(email)
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		identity.Picture = picture
	}

	return identity, nil
}

var _ GoogleVerifier = (*GoogleIDTokenVerifier)(nil)

// StaticGoogleVerifier returns a fixed identity for any token. Used in
// tests and for the development test-token login path.
type StaticGoogleVerifier struct {
	Identity GoogleIdentity
	Err      error
}

// Verify returns the configured identity or error
func (v *StaticGoogleVerifier) Verify(_ context.Context, _ string) (*GoogleIdentity, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	identity := v.Identity
	return &identity, nil
}

var _ GoogleVerifier = (*StaticGoogleVerifier)(nil)
