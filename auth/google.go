package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/princinho/elearnbackend/apperr"
)

const googleIssuer = "https://accounts.google.com"

// SocialProfile is what a verified identity provider tells us about a user.
type SocialProfile struct {
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier checks Google ID tokens obtained by the client.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is required")
	}
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}
	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (SocialProfile, error) {
	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return SocialProfile{}, apperr.Wrap(apperr.InvalidCredential, "Identity token is not valid", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return SocialProfile{}, apperr.Wrap(apperr.InvalidCredential, "Identity token is not valid", err)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return SocialProfile{}, apperr.New(apperr.InvalidCredential, "Email is not verified by the identity provider")
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = strings.SplitN(claims.Email, "@", 2)[0]
	}
	return SocialProfile{Email: claims.Email, Name: name, Picture: claims.Picture}, nil
}
