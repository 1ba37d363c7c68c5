package identity

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"sync"

	"classroom/models"
	"classroom/services/auth"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MemoryAPI is an in-process identity backend for local development and
// tests. Passwords are bcrypt-hashed; phone codes are generated here and
// surfaced through the log instead of SMS.
type MemoryAPI struct {
	Logger *zap.Logger

	mu       sync.Mutex
	accounts map[string]*memoryAccount // keyed by email
	byPhone  map[string]string         // phone number -> uid
	sessions map[string]*phoneSession  // confirmation handle -> session
}

type memoryAccount struct {
	UID          string
	Email        string
	DisplayName  string
	PhotoURL     string
	PasswordHash []byte
}

type phoneSession struct {
	Number string
	Code   string
}

func NewMemoryAPI(logger *zap.Logger) *MemoryAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryAPI{
		Logger:   logger,
		accounts: make(map[string]*memoryAccount),
		byPhone:  make(map[string]string),
		sessions: make(map[string]*phoneSession),
	}
}

var _ auth.IdentityAPI = (*MemoryAPI)(nil)

// generateCode returns a short base32 one-time code.
func generateCode(length int) (string, error) {
	numBytes := (length*5 + 7) / 8
	randomBytes := make([]byte, numBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	code := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	if len(code) > length {
		code = code[:length]
	}
	return code, nil
}

func (a *MemoryAPI) PasswordSignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	a.mu.Lock()
	acct, ok := a.accounts[email]
	a.mu.Unlock()
	if !ok {
		return nil, auth.NewError(auth.CodeInvalidCredential, "Invalid email or password.")
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return nil, auth.NewError(auth.CodeInvalidCredential, "Invalid email or password.")
	}
	return &models.Identity{
		ID:          acct.UID,
		DisplayName: acct.DisplayName,
		Email:       acct.Email,
		PhotoURL:    acct.PhotoURL,
	}, nil
}

func (a *MemoryAPI) PasswordSignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.accounts[email]; exists {
		return nil, auth.NewError(auth.CodeInvalidCredential, "An account with this email already exists.")
	}
	acct := &memoryAccount{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	a.accounts[email] = acct
	return &models.Identity{ID: acct.UID, Email: email}, nil
}

// ExchangeFederatedToken trusts the token's claims as-is. Development only;
// the Firebase backend is the one that actually verifies signatures.
func (a *MemoryAPI) ExchangeFederatedToken(ctx context.Context, provider models.Provider, token string) (*models.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, auth.WrapError(auth.CodeInvalidCredential, "Sign-in with this provider failed. Please try again.", err)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, auth.NewError(auth.CodeInvalidCredential, "Sign-in with this provider failed. Please try again.")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	picture, _ := claims["picture"].(string)
	return &models.Identity{
		ID:          sub,
		DisplayName: name,
		Email:       email,
		PhotoURL:    picture,
	}, nil
}

func (a *MemoryAPI) SendPhoneCode(ctx context.Context, number, proof string) (string, error) {
	if proof == "" {
		return "", auth.NewError(auth.CodeChallengeFailed, "Verification challenge failed. Please solve it again.")
	}
	code, err := generateCode(6)
	if err != nil {
		return "", err
	}
	handle := uuid.NewString()
	a.mu.Lock()
	a.sessions[handle] = &phoneSession{Number: number, Code: code}
	a.mu.Unlock()
	a.Logger.Sugar().Infof("Dev OTP for %s: %s", number, code)
	return handle, nil
}

func (a *MemoryAPI) ConfirmPhoneCode(ctx context.Context, handle, code string) (*models.Identity, error) {
	a.mu.Lock()
	sess, ok := a.sessions[handle]
	if ok {
		delete(a.sessions, handle)
	}
	a.mu.Unlock()
	if !ok {
		return nil, auth.NewError(auth.CodeChallengeExpired, "The verification code expired. Please request a new one.")
	}
	if sess.Code != code {
		return nil, auth.NewError(auth.CodeInvalidCode, "The verification code is incorrect.")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	uid, ok := a.byPhone[sess.Number]
	if !ok {
		uid = uuid.NewString()
		a.byPhone[sess.Number] = uid
	}
	return &models.Identity{ID: uid, PhoneNumber: sess.Number}, nil
}

func (a *MemoryAPI) SignOut(ctx context.Context, uid string) error {
	return nil
}
