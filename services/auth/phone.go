package auth

import (
	"context"
	"regexp"
	"sync"
	"time"

	"classroom/models"
	"classroom/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// E.164: plus sign, then 8 to 15 digits, no leading zero.
var phoneRegex = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

// PhoneProvider is the two-step phone-OTP state machine. SendCode requires a
// solved human-presence challenge and yields a single-use confirmation
// handle; ConfirmCode consumes the handle on every attempt, success or not.
type PhoneProvider struct {
	API      IdentityAPI
	Store    ChallengeStore
	Verifier ChallengeVerifier
	TTL      time.Duration
	Logger   *zap.Logger

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// limiter returns the per-number send limiter, creating one if needed.
func (p *PhoneProvider) limiter(number string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.limiters == nil {
		p.limiters = make(map[string]*rate.Limiter)
	}
	l, ok := p.limiters[number]
	if !ok {
		// One code per 30 seconds per number, small burst for retries.
		l = rate.NewLimiter(rate.Every(30*time.Second), 3)
		p.limiters[number] = l
	}
	return l
}

func (p *PhoneProvider) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *PhoneProvider) ttl() time.Duration {
	if p.TTL > 0 {
		return p.TTL
	}
	return utils.DefaultChallengeTTL
}

// SendCode dispatches a one-time code to number and returns the pending
// challenge. A prior unconsumed challenge for the same number is superseded.
// Fails before any remote call when the number is malformed, the local rate
// limit is hit, or no solved challenge proof is available.
func (p *PhoneProvider) SendCode(ctx context.Context, number string) (*models.OTPChallenge, error) {
	if number == "" {
		return nil, NewError(CodeValidation, "Please enter a phone number.")
	}
	if !phoneRegex.MatchString(number) {
		return nil, NewError(CodeValidation, "Please enter a valid phone number in international format, e.g. +66812345678.")
	}
	if !p.limiter(number).Allow() {
		p.Logger.Warn("Send-code rate limit hit", zap.String("phone", number))
		return nil, NewError(CodeRateLimited, "Too many codes requested for this number. Please wait before retrying.")
	}

	proof, err := p.Verifier.Consume(ctx)
	if err != nil {
		return nil, Classify(p.Logger, err)
	}

	handle, err := p.API.SendPhoneCode(ctx, number, proof)
	if err != nil {
		return nil, Classify(p.Logger, err)
	}

	now := p.now()
	ch := &models.OTPChallenge{
		ID:          uuid.NewString(),
		PhoneNumber: number,
		Handle:      handle,
		CreatedAt:   now,
		ExpiresAt:   now.Add(p.ttl()),
	}
	if err := p.Store.Put(ctx, ch); err != nil {
		return nil, Classify(p.Logger, err)
	}
	p.Logger.Info("Verification code sent",
		zap.String("phone", number),
		zap.String("challenge", ch.ID),
		zap.Time("expiresAt", ch.ExpiresAt))
	return ch, nil
}

// ConfirmCode redeems the challenge against the entered code. The challenge
// is consumed before the remote call regardless of outcome, so a leaked code
// cannot be replayed; a consumed, superseded, cancelled, or expired challenge
// always fails with ChallengeExpired.
func (p *PhoneProvider) ConfirmCode(ctx context.Context, challenge *models.OTPChallenge, code string) (*models.Identity, error) {
	if code == "" {
		return nil, NewError(CodeValidation, "Please enter the verification code.")
	}
	if challenge == nil {
		return nil, NewError(CodeChallengeExpired, "Verification was not started. Please request a new code.")
	}

	stored, err := p.Store.Take(ctx, challenge.ID)
	if err != nil {
		if err == ErrChallengeNotFound {
			return nil, NewError(CodeChallengeExpired, "This verification code is no longer valid. Please request a new one.")
		}
		return nil, Classify(p.Logger, err)
	}
	if stored.Expired(p.now()) {
		return nil, NewError(CodeChallengeExpired, "The verification code expired. Please request a new one.")
	}

	identity, err := p.API.ConfirmPhoneCode(ctx, stored.Handle, code)
	if err != nil {
		return nil, Classify(p.Logger, err)
	}
	identity.Provider = models.ProviderPhone
	if identity.PhoneNumber == "" {
		identity.PhoneNumber = stored.PhoneNumber
	}
	return identity, nil
}

// CancelChallenge invalidates a pending challenge when the user dismisses
// the verification flow, so a late remote response cannot complete it.
func (p *PhoneProvider) CancelChallenge(ctx context.Context, challenge *models.OTPChallenge) {
	if challenge == nil {
		return
	}
	if err := p.Store.Cancel(ctx, challenge.ID); err != nil && err != ErrChallengeNotFound {
		p.Logger.Warn("Failed to cancel challenge", zap.String("challenge", challenge.ID), zap.Error(err))
	}
}
