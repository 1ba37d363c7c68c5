package auth

import (
	"context"
	"regexp"

	"classroom/models"

	"go.uber.org/zap"
)

var (
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const minPasswordLen = 6

// PasswordProvider authenticates email/password pairs and registers new
// accounts against the remote identity service.
type PasswordProvider struct {
	API    IdentityAPI
	Logger *zap.Logger
}

// Authenticate verifies the pair remotely and returns the bound identity.
func (p *PasswordProvider) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	if email == "" || password == "" {
		return nil, NewError(CodeValidation, "Please enter both email and password.")
	}
	identity, err := p.API.PasswordSignIn(ctx, email, password)
	if err != nil {
		return nil, Classify(p.Logger, err)
	}
	identity.Provider = models.ProviderPassword
	return identity, nil
}

// CreateAccount validates locally before any remote call: any violation
// fails fast with a validation error and the identity service is never hit.
func (p *PasswordProvider) CreateAccount(ctx context.Context, username, email, password string) (*models.Identity, error) {
	if username == "" || email == "" || password == "" {
		return nil, NewError(CodeValidation, "Please fill in all fields.")
	}
	if !usernameRegex.MatchString(username) {
		return nil, NewError(CodeValidation, "Username must be 3-16 characters and contain only letters, numbers, and underscores.")
	}
	if !emailRegex.MatchString(email) {
		return nil, NewError(CodeValidation, "Please enter a valid email address.")
	}
	if len(password) < minPasswordLen {
		return nil, NewError(CodeValidation, "Password must be at least 6 characters.")
	}

	identity, err := p.API.PasswordSignUp(ctx, email, password)
	if err != nil {
		return nil, Classify(p.Logger, err)
	}
	identity.Provider = models.ProviderPassword
	if identity.DisplayName == "" {
		identity.DisplayName = username
	}
	return identity, nil
}
