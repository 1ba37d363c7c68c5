package auth

import (
	"context"

	"classroom/models"

	"go.uber.org/zap"
)

// DefaultAuthService is the production orchestrator. It owns the ordering
// invariant for every successful flow: install session, notify subscribers,
// ensure profile, and only then return to the caller so dependent navigation
// sees a settled session.
type DefaultAuthService struct {
	Password  *PasswordProvider
	Federated *FederatedProvider
	Phone     *PhoneProvider
	Sessions  *SessionManager
	Profiles  *ProfileProvisioner
	API       IdentityAPI
	Logger    *zap.Logger
}

var _ AuthService = (*DefaultAuthService)(nil)

// complete runs the post-authentication sequence for a verified identity.
// The cancellation token is checked before the session is mutated, so a
// dismissed flow whose remote call resolved late cannot swap in a stale
// session. A provisioning failure does not roll the session back; it is
// reported as a non-blocking warning.
func (s *DefaultAuthService) complete(ctx context.Context, identity *models.Identity, defaults models.ProfileDefaults) (*AuthResult, error) {
	if err := ctx.Err(); err != nil {
		s.Logger.Info("Authentication flow cancelled before install",
			zap.String("uid", identity.ID))
		return nil, Classify(s.Logger, err)
	}

	s.Sessions.Install(identity)

	result := &AuthResult{Identity: identity}
	if _, err := s.Profiles.EnsureProfile(ctx, identity, defaults); err != nil {
		s.Logger.Warn("Profile provisioning failed after sign-in",
			zap.String("uid", identity.ID),
			zap.Error(err))
		result.ProfileWarning = err
	}
	return result, nil
}

func (s *DefaultAuthService) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	identity, err := s.Password.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, identity, models.ProfileDefaults{})
}

func (s *DefaultAuthService) CreateAccount(ctx context.Context, username, email, password string, defaults models.ProfileDefaults) (*AuthResult, error) {
	identity, err := s.Password.CreateAccount(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	if defaults.Name == "" {
		defaults.Name = username
	}
	if defaults.Email == "" {
		defaults.Email = email
	}
	return s.complete(ctx, identity, defaults)
}

func (s *DefaultAuthService) SignInWithFederated(ctx context.Context, provider models.Provider, token string) (*AuthResult, error) {
	identity, err := s.Federated.Authenticate(ctx, provider, token)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, identity, models.ProfileDefaults{})
}

func (s *DefaultAuthService) BeginPhoneVerification(ctx context.Context, number string) (*models.OTPChallenge, error) {
	return s.Phone.SendCode(ctx, number)
}

func (s *DefaultAuthService) ConfirmPhoneVerification(ctx context.Context, challenge *models.OTPChallenge, code string) (*AuthResult, error) {
	identity, err := s.Phone.ConfirmCode(ctx, challenge, code)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, identity, models.ProfileDefaults{})
}

// SignOut clears the session, then best-effort revokes the remote session.
// The local session is gone either way; a revocation failure is only logged.
func (s *DefaultAuthService) SignOut(ctx context.Context) error {
	identity := s.Sessions.Current()
	s.Sessions.Clear()
	if identity == nil {
		return nil
	}
	if err := s.API.SignOut(ctx, identity.ID); err != nil {
		s.Logger.Warn("Remote sign-out failed",
			zap.String("uid", identity.ID),
			zap.Error(err))
	}
	return nil
}

func (s *DefaultAuthService) Current() *models.Identity {
	return s.Sessions.Current()
}

func (s *DefaultAuthService) Subscribe(fn Subscriber) func() {
	return s.Sessions.Subscribe(fn)
}
