package security

import (
	"context"

	fbauth "firebase.google.com/go/v4/auth"
)

// Identity is the resolved actor of a request.
type Identity struct {
	UserID      string
	DisplayName string
}

// Authenticator turns a bearer token into an Identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// TokenAuthenticator validates locally issued access tokens.
type TokenAuthenticator struct {
	tokens TokenManager
}

func NewTokenAuthenticator(tokens TokenManager) *TokenAuthenticator {
	return &TokenAuthenticator{tokens: tokens}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := a.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return &Identity{UserID: claims.UserID}, nil
}

// FirebaseAuthenticator verifies Firebase ID tokens, matching the hosted
// identity provider the mobile clients sign in against.
type FirebaseAuthenticator struct {
	client *fbauth.Client
}

func NewFirebaseAuthenticator(client *fbauth.Client) *FirebaseAuthenticator {
	return &FirebaseAuthenticator{client: client}
}

func (a *FirebaseAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	decoded, err := a.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	id := &Identity{UserID: decoded.UID}
	if name, ok := decoded.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	return id, nil
}
