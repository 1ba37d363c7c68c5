package auth

import (
	"context"
	"time"

	"classroom/models"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
)

// FederatedProvider exchanges a provider-issued token (OAuth popup, native
// token exchange) for an identity via the remote identity service.
type FederatedProvider struct {
	API    IdentityAPI
	Logger *zap.Logger
}

// Authenticate inspects the token locally for obvious defects (malformed,
// already expired) before spending a remote exchange on it, then performs
// the exchange. Signature verification belongs to the identity service; the
// local parse is unverified on purpose.
func (f *FederatedProvider) Authenticate(ctx context.Context, provider models.Provider, token string) (*models.Identity, error) {
	if !provider.Valid() || provider == models.ProviderPassword || provider == models.ProviderPhone {
		return nil, NewError(CodeValidation, "Unsupported sign-in provider.")
	}
	if token == "" {
		return nil, NewError(CodeValidation, "Missing provider token.")
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		f.Logger.Warn("Malformed federated token", zap.String("provider", string(provider)), zap.Error(err))
		return nil, WrapError(CodeInvalidCredential, "Sign-in with this provider failed. Please try again.", err)
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), false) {
		return nil, NewError(CodeInvalidCredential, "Your sign-in session expired. Please sign in again.")
	}

	identity, err := f.API.ExchangeFederatedToken(ctx, provider, token)
	if err != nil {
		return nil, Classify(f.Logger, err)
	}
	identity.Provider = provider
	return identity, nil
}
