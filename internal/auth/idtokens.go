package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendrickPhan/go-verify-apple-id-token/validator"
	"google.golang.org/api/idtoken"
)

// ExternalTokenClaims is the subset of an identity provider's ID token the
// sign-in flow needs.
type ExternalTokenClaims struct {
	Issuer  string
	Subject string
	Email   string
}

var (
	errMissingToken    = errors.New("missing id token")
	errMissingAudience = errors.New("missing audience")
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

const appleIssuer = "https://appleid.apple.com"

func checkTokenInputs(ctx context.Context, token, aud string) error {
	if strings.TrimSpace(token) == "" {
		return errMissingToken
	}
	if strings.TrimSpace(aud) == "" {
		return errMissingAudience
	}
	return ctx.Err()
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func VerifyGoogleIDToken(ctx context.Context, token, clientID string) (*ExternalTokenClaims, error) {
	if err := checkTokenInputs(ctx, token, clientID); err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}

	payload, err := idtoken.Validate(ctx, token, clientID)
	if err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}
	if !googleIssuers[payload.Issuer] {
		return nil, fmt.Errorf("google: unexpected issuer %q", payload.Issuer)
	}

	email, _ := payload.Claims["email"].(string)
	return &ExternalTokenClaims{
		Issuer:  payload.Issuer,
		Subject: payload.Subject,
		Email:   normalizeEmail(email),
	}, nil
}

// VerifyAppleIDToken checks the signature against Apple's published keys.
// The validator does not take a context, so ctx only short-circuits calls
// that are already cancelled.
func VerifyAppleIDToken(ctx context.Context, token, serviceID string) (*ExternalTokenClaims, error) {
	if err := checkTokenInputs(ctx, token, serviceID); err != nil {
		return nil, fmt.Errorf("apple: %w", err)
	}

	claims, err := validator.NewClient().VerifyIdToken(serviceID, token)
	if err != nil {
		return nil, fmt.Errorf("apple: %w", err)
	}
	if claims.Iss != appleIssuer {
		return nil, fmt.Errorf("apple: unexpected issuer %q", claims.Iss)
	}

	return &ExternalTokenClaims{
		Issuer:  claims.Iss,
		Subject: claims.Sub,
		Email:   normalizeEmail(claims.Email),
	}, nil
}
