package provider

import (
	"context"
	"errors"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/proneo/platform/internal/auth"
	"github.com/proneo/platform/internal/domain"
)

// IDTokenVerifier checks a Firebase ID token. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// UserLookup returns the user document for an email.
type UserLookup interface {
	Get(ctx context.Context, email string) (*domain.User, error)
}

// FirebaseVerifier authenticates Firebase ID tokens and takes the role and
// sport from the caller's user document. Unapproved accounts are refused.
type FirebaseVerifier struct {
	tokens IDTokenVerifier
	users  UserLookup
}

// NewFirebaseVerifier creates a verifier.
func NewFirebaseVerifier(tokens IDTokenVerifier, users UserLookup) *FirebaseVerifier {
	return &FirebaseVerifier{tokens: tokens, users: users}
}

// Verify implements auth.TokenVerifier.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*auth.Claims, error) {
	tok, err := v.tokens.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	email, _ := tok.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("id token has no email claim")
	}

	user, err := v.users.Get(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", email, err)
	}
	if !user.Approved {
		return nil, fmt.Errorf("user %s is pending approval", user.Email)
	}
	if !user.Role.Valid() {
		return nil, fmt.Errorf("user %s has unknown role %q", user.Email, user.Role)
	}

	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: tok.UID},
		Email:            user.Email,
		Role:             user.Role,
		Sport:            user.Sport,
	}, nil
}
