package auth

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newPhoneProvider(api *FakeIdentityAPI, verifier ChallengeVerifier) *PhoneProvider {
	return &PhoneProvider{
		API:      api,
		Store:    NewMemoryChallengeStore(),
		Verifier: verifier,
		Logger:   zap.NewNop(),
	}
}

// Requirement: SendCode without a prior solved challenge fails with
// ChallengeFailed and makes no remote call.
func TestPhoneProvider_SendCodeRequiresChallenge(t *testing.T) {
	api := NewFakeIdentityAPI()
	provider := newPhoneProvider(api, NewVerifierGate(AutoSolveRenderer(), zap.NewNop()))

	_, err := provider.SendCode(context.Background(), "+66812345678")
	if code := CodeOf(err); code != CodeChallengeFailed {
		t.Fatalf("CodeOf(err) = %v, want %v", code, CodeChallengeFailed)
	}
	if api.CallCount() != 0 {
		t.Errorf("remote service was called %d times, want 0", api.CallCount())
	}
}

// Requirement: malformed numbers are rejected locally.
func TestPhoneProvider_SendCodeValidatesNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
	}{
		{"empty", ""},
		{"missing plus", "66812345678"},
		{"letters", "+66abc45678"},
		{"too short", "+661234"},
		{"leading zero", "+0812345678"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			api := NewFakeIdentityAPI()
			provider := newPhoneProvider(api, solvedVerifier(t))

			_, err := provider.SendCode(context.Background(), test.number)
			if code := CodeOf(err); code != CodeValidation {
				t.Fatalf("CodeOf(err) = %v, want %v", code, CodeValidation)
			}
			if api.CallCount() != 0 {
				t.Errorf("remote service was called %d times, want 0", api.CallCount())
			}
		})
	}
}

// Requirement: a correct code resolves an identity and the handle is gone
// afterwards.
func TestPhoneProvider_SendAndConfirm(t *testing.T) {
	api := NewFakeIdentityAPI()
	provider := newPhoneProvider(api, solvedVerifier(t))
	ctx := context.Background()

	challenge, err := provider.SendCode(ctx, "+66812345678")
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}
	if challenge.PhoneNumber != "+66812345678" {
		t.Errorf("challenge.PhoneNumber = %q", challenge.PhoneNumber)
	}

	identity, err := provider.ConfirmCode(ctx, challenge, "123456")
	if err != nil {
		t.Fatalf("ConfirmCode() error = %v", err)
	}
	if identity.PhoneNumber != "+66812345678" {
		t.Errorf("identity.PhoneNumber = %q", identity.PhoneNumber)
	}

	// The handle was consumed by the successful confirm.
	_, err = provider.ConfirmCode(ctx, challenge, "123456")
	if code := CodeOf(err); code != CodeChallengeExpired {
		t.Fatalf("second confirm: CodeOf(err) = %v, want %v", code, CodeChallengeExpired)
	}
}

// Requirement: a wrong code consumes the challenge; retrying with the
// correct code against the same handle still fails.
func TestPhoneProvider_WrongCodeConsumesChallenge(t *testing.T) {
	api := NewFakeIdentityAPI()
	provider := newPhoneProvider(api, solvedVerifier(t))
	ctx := context.Background()

	challenge, err := provider.SendCode(ctx, "+66812345678")
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}

	_, err = provider.ConfirmCode(ctx, challenge, "000000")
	if code := CodeOf(err); code != CodeInvalidCode {
		t.Fatalf("CodeOf(err) = %v, want %v", code, CodeInvalidCode)
	}

	_, err = provider.ConfirmCode(ctx, challenge, "123456")
	if code := CodeOf(err); code != CodeChallengeExpired {
		t.Fatalf("retry after wrong code: CodeOf(err) = %v, want %v", code, CodeChallengeExpired)
	}
}

// Requirement: a second SendCode for the same number supersedes the first
// challenge; confirming the first handle fails.
func TestPhoneProvider_ResendInvalidatesPriorChallenge(t *testing.T) {
	api := NewFakeIdentityAPI()
	gate := NewVerifierGate(AutoSolveRenderer(), zap.NewNop())
	provider := newPhoneProvider(api, gate)
	ctx := context.Background()

	if err := gate.Solve(ctx); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	first, err := provider.SendCode(ctx, "+66812345678")
	if err != nil {
		t.Fatalf("first SendCode() error = %v", err)
	}

	if err := gate.Solve(ctx); err != nil {
		t.Fatalf("re-Solve() error = %v", err)
	}
	second, err := provider.SendCode(ctx, "+66812345678")
	if err != nil {
		t.Fatalf("second SendCode() error = %v", err)
	}

	_, err = provider.ConfirmCode(ctx, first, "123456")
	if code := CodeOf(err); code != CodeChallengeExpired {
		t.Fatalf("first handle: CodeOf(err) = %v, want %v", code, CodeChallengeExpired)
	}

	if _, err := provider.ConfirmCode(ctx, second, "123456"); err != nil {
		t.Fatalf("second handle should remain valid, got %v", err)
	}
}

// Requirement: a challenge expires after the bounded window even when the
// remote never reports expiry.
func TestPhoneProvider_ChallengeExpiry(t *testing.T) {
	api := NewFakeIdentityAPI()
	provider := newPhoneProvider(api, solvedVerifier(t))
	provider.TTL = 5 * time.Minute

	base := time.Now()
	provider.Now = func() time.Time { return base }

	ctx := context.Background()
	challenge, err := provider.SendCode(ctx, "+66812345678")
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}

	provider.Now = func() time.Time { return base.Add(6 * time.Minute) }
	_, err = provider.ConfirmCode(ctx, challenge, "123456")
	if code := CodeOf(err); code != CodeChallengeExpired {
		t.Fatalf("CodeOf(err) = %v, want %v", code, CodeChallengeExpired)
	}
}

// Requirement: dismissing the flow cancels the pending handle.
func TestPhoneProvider_CancelChallenge(t *testing.T) {
	api := NewFakeIdentityAPI()
	provider := newPhoneProvider(api, solvedVerifier(t))
	ctx := context.Background()

	challenge, err := provider.SendCode(ctx, "+66812345678")
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}

	provider.CancelChallenge(ctx, challenge)

	_, err = provider.ConfirmCode(ctx, challenge, "123456")
	if code := CodeOf(err); code != CodeChallengeExpired {
		t.Fatalf("CodeOf(err) = %v, want %v", code, CodeChallengeExpired)
	}
}

// Requirement: repeated sends for one number hit the local limiter before
// any remote call.
func TestPhoneProvider_SendCodeRateLimit(t *testing.T) {
	api := NewFakeIdentityAPI()
	gate := NewVerifierGate(AutoSolveRenderer(), zap.NewNop())
	provider := newPhoneProvider(api, gate)
	ctx := context.Background()

	var rateLimited bool
	for i := 0; i < 5; i++ {
		if err := gate.Solve(ctx); err != nil {
			t.Fatalf("Solve() error = %v", err)
		}
		_, err := provider.SendCode(ctx, "+66812345678")
		if err != nil {
			if code := CodeOf(err); code != CodeRateLimited {
				t.Fatalf("CodeOf(err) = %v, want %v", code, CodeRateLimited)
			}
			rateLimited = true
			break
		}
	}
	if !rateLimited {
		t.Fatal("limiter never triggered")
	}
}

// Requirement: an empty code is a local validation error and does not
// consume the challenge.
func TestPhoneProvider_EmptyCodeDoesNotConsume(t *testing.T) {
	api := NewFakeIdentityAPI()
	provider := newPhoneProvider(api, solvedVerifier(t))
	ctx := context.Background()

	challenge, err := provider.SendCode(ctx, "+66812345678")
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}

	_, err = provider.ConfirmCode(ctx, challenge, "")
	if code := CodeOf(err); code != CodeValidation {
		t.Fatalf("CodeOf(err) = %v, want %v", code, CodeValidation)
	}

	if _, err := provider.ConfirmCode(ctx, challenge, "123456"); err != nil {
		t.Fatalf("challenge should survive an empty submit, got %v", err)
	}
}
