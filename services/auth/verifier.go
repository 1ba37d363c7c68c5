package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VerifierState tracks the human-presence challenge lifecycle.
type VerifierState int

const (
	VerifierIdle VerifierState = iota
	VerifierRendering
	VerifierSolved
	VerifierExpired
)

// Renderer presents the human-presence challenge on some platform surface and
// blocks until it is solved, returning the proof token. The binding to a
// concrete widget (reCAPTCHA container, native sheet) lives entirely in the
// renderer; the gate only enforces the state machine around it.
type Renderer func(ctx context.Context) (string, error)

// VerifierGate drives a Renderer through Idle -> Rendering -> Solved or
// Idle -> Rendering -> Expired. A solved proof is valid for exactly one
// Consume; after consumption or expiry the gate must be reset (or re-solved)
// before another code can be sent. Render failures return the gate to Idle,
// so rendering is independently retryable without touching phone state.
type VerifierGate struct {
	mu       sync.Mutex
	state    VerifierState
	token    string
	renderer Renderer
	logger   *zap.Logger
}

func NewVerifierGate(renderer Renderer, logger *zap.Logger) *VerifierGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerifierGate{renderer: renderer, logger: logger}
}

// State returns the current lifecycle state.
func (g *VerifierGate) State() VerifierState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Solve runs the renderer and stores the resulting proof token. Valid only
// from Idle or Expired.
func (g *VerifierGate) Solve(ctx context.Context) error {
	g.mu.Lock()
	if g.state == VerifierRendering {
		g.mu.Unlock()
		return NewError(CodeChallengeFailed, "A challenge is already in progress.")
	}
	if g.state == VerifierSolved {
		g.mu.Unlock()
		return nil
	}
	g.state = VerifierRendering
	g.mu.Unlock()

	token, err := g.renderer(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.state = VerifierIdle
		g.logger.Warn("Challenge render failed", zap.Error(err))
		return WrapError(CodeChallengeFailed, "Could not display the verification challenge. Please try again.", err)
	}
	g.state = VerifierSolved
	g.token = token
	return nil
}

// Consume hands out the solved proof token exactly once and returns the gate
// to Idle. Without a solved challenge it fails with ChallengeFailed and makes
// no remote call possible.
func (g *VerifierGate) Consume(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", Classify(g.logger, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != VerifierSolved {
		return "", NewError(CodeChallengeFailed, "Please solve the verification challenge first.")
	}
	token := g.token
	g.token = ""
	g.state = VerifierIdle
	return token, nil
}

// Reset returns the gate to Idle, discarding any unconsumed proof.
func (g *VerifierGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = VerifierIdle
	g.token = ""
}

// Expire marks a previously solved challenge as no longer valid, mirroring
// the expired-callback of hosted challenge widgets.
func (g *VerifierGate) Expire() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == VerifierSolved {
		g.state = VerifierExpired
		g.token = ""
	}
}

// AutoSolveRenderer issues a fresh proof token without user interaction. For
// development and tests only.
func AutoSolveRenderer() Renderer {
	return func(ctx context.Context) (string, error) {
		return uuid.NewString(), nil
	}
}

// TokenVerifier adapts a client-solved challenge (the HTTP surface forwards
// the captcha token it received) into the ChallengeVerifier capability.
// Supply arms it; Consume is single-use.
type TokenVerifier struct {
	mu    sync.Mutex
	token string
}

// Supply stores a client-provided proof token, replacing any pending one.
func (v *TokenVerifier) Supply(token string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = token
}

func (v *TokenVerifier) Consume(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", Classify(nil, err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.token == "" {
		return "", NewError(CodeChallengeFailed, "Please solve the verification challenge first.")
	}
	token := v.token
	v.token = ""
	return token, nil
}

func (v *TokenVerifier) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = ""
}
