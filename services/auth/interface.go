package auth

import (
	"context"
	"errors"

	"classroom/models"
)

// IdentityAPI is the remote identity-provider surface the credential
// providers are built on. Implementations live under database/identity and
// must return classified *Error values for every failure they can name.
type IdentityAPI interface {
	// PasswordSignIn verifies an email/password pair.
	PasswordSignIn(ctx context.Context, email, password string) (*models.Identity, error)
	// PasswordSignUp registers a new email/password account.
	PasswordSignUp(ctx context.Context, email, password string) (*models.Identity, error)
	// ExchangeFederatedToken trades a provider-issued token for an identity.
	ExchangeFederatedToken(ctx context.Context, provider models.Provider, token string) (*models.Identity, error)
	// SendPhoneCode dispatches a one-time code and returns the confirmation handle.
	SendPhoneCode(ctx context.Context, number, proof string) (string, error)
	// ConfirmPhoneCode redeems a confirmation handle against the entered code.
	ConfirmPhoneCode(ctx context.Context, handle, code string) (*models.Identity, error)
	// SignOut revokes the remote session for the given identity id. Best effort.
	SignOut(ctx context.Context, uid string) error
}

// ChallengeVerifier gates phone-code dispatch behind a human-presence proof.
// Consume yields a one-use proof token from a previously solved challenge.
type ChallengeVerifier interface {
	Consume(ctx context.Context) (string, error)
	Reset()
}

// ErrChallengeNotFound is returned by a ChallengeStore when a handle was
// never stored, already consumed, superseded, or expired out of the store.
var ErrChallengeNotFound = errors.New("challenge not found")

// ChallengeStore holds pending OTP challenges for the verification window.
// Put replaces any pending challenge for the same phone number. Take removes
// the challenge atomically, so a handle can be redeemed at most once.
type ChallengeStore interface {
	Put(ctx context.Context, ch *models.OTPChallenge) error
	Take(ctx context.Context, id string) (*models.OTPChallenge, error)
	Cancel(ctx context.Context, id string) error
}

// AuthResult is the outcome of a completed sign-in. ProfileWarning is set
// when the session was installed but profile provisioning failed afterwards;
// the session stays valid and callers should surface a non-blocking warning.
type AuthResult struct {
	Identity       *models.Identity
	ProfileWarning error
}

// AuthService is the surface consumed by UI and navigation collaborators.
type AuthService interface {
	SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error)
	CreateAccount(ctx context.Context, username, email, password string, defaults models.ProfileDefaults) (*AuthResult, error)
	SignInWithFederated(ctx context.Context, provider models.Provider, token string) (*AuthResult, error)
	BeginPhoneVerification(ctx context.Context, number string) (*models.OTPChallenge, error)
	ConfirmPhoneVerification(ctx context.Context, challenge *models.OTPChallenge, code string) (*AuthResult, error)
	SignOut(ctx context.Context) error
	Current() *models.Identity
	Subscribe(fn Subscriber) (unsubscribe func())
}
