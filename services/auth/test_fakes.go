package auth

import (
	"context"
	"fmt"
	"sync"

	recordRepo "classroom/database/repository/record"
	"classroom/models"

	"go.uber.org/zap"
)

// FakeIdentityAPI is a test-only IdentityAPI. It counts remote calls and
// exposes error fields for behavior injection.
type FakeIdentityAPI struct {
	mu    sync.Mutex
	Calls int

	SignInErr   error
	SignUpErr   error
	ExchangeErr error
	SendErr     error
	ConfirmErr  error

	// Identities returned on success; zero values get sensible defaults.
	SignInIdentity  *models.Identity
	PhoneIdentity   *models.Identity
	ExpectedCode    string
	handleCounter   int
	handles         map[string]string // handle -> code expected
	RevokedSessions []string
}

func NewFakeIdentityAPI() *FakeIdentityAPI {
	return &FakeIdentityAPI{
		ExpectedCode: "123456",
		handles:      make(map[string]string),
	}
}

func (f *FakeIdentityAPI) called() {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
}

func (f *FakeIdentityAPI) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

func (f *FakeIdentityAPI) PasswordSignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	f.called()
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	if f.SignInIdentity != nil {
		cp := *f.SignInIdentity
		return &cp, nil
	}
	return &models.Identity{ID: "uid-" + email, Email: email, DisplayName: "Test User"}, nil
}

func (f *FakeIdentityAPI) PasswordSignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	f.called()
	if f.SignUpErr != nil {
		return nil, f.SignUpErr
	}
	return &models.Identity{ID: "uid-" + email, Email: email}, nil
}

func (f *FakeIdentityAPI) ExchangeFederatedToken(ctx context.Context, provider models.Provider, token string) (*models.Identity, error) {
	f.called()
	if f.ExchangeErr != nil {
		return nil, f.ExchangeErr
	}
	return &models.Identity{ID: "federated-uid", DisplayName: "Federated User"}, nil
}

func (f *FakeIdentityAPI) SendPhoneCode(ctx context.Context, number, proof string) (string, error) {
	f.called()
	if f.SendErr != nil {
		return "", f.SendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handleCounter++
	handle := fmt.Sprintf("handle-%d", f.handleCounter)
	f.handles[handle] = f.ExpectedCode
	return handle, nil
}

func (f *FakeIdentityAPI) ConfirmPhoneCode(ctx context.Context, handle, code string) (*models.Identity, error) {
	f.called()
	if f.ConfirmErr != nil {
		return nil, f.ConfirmErr
	}
	f.mu.Lock()
	expected, ok := f.handles[handle]
	f.mu.Unlock()
	if !ok {
		return nil, NewError(CodeChallengeExpired, "The verification code expired. Please request a new one.")
	}
	if code != expected {
		return nil, NewError(CodeInvalidCode, "The verification code is incorrect.")
	}
	if f.PhoneIdentity != nil {
		cp := *f.PhoneIdentity
		return &cp, nil
	}
	return &models.Identity{ID: "phone-uid"}, nil
}

func (f *FakeIdentityAPI) SignOut(ctx context.Context, uid string) error {
	f.called()
	f.mu.Lock()
	f.RevokedSessions = append(f.RevokedSessions, uid)
	f.mu.Unlock()
	return nil
}

// FakeRecordStore is a map-backed record.Store with write counting.
type FakeRecordStore struct {
	mu      sync.Mutex
	records map[string]*models.UserProfile
	Reads   int
	Writes  int

	ReadErr  error
	WriteErr error
}

func NewFakeRecordStore() *FakeRecordStore {
	return &FakeRecordStore{records: make(map[string]*models.UserProfile)}
}

func (f *FakeRecordStore) ReadRecord(ctx context.Context, key string, v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads++
	if f.ReadErr != nil {
		return f.ReadErr
	}
	profile, ok := f.records[key]
	if !ok {
		return recordRepo.ErrNotFound
	}
	out, ok := v.(*models.UserProfile)
	if !ok {
		return fmt.Errorf("unexpected record type %T", v)
	}
	*out = cloneProfile(profile)
	return nil
}

func (f *FakeRecordStore) WriteRecord(ctx context.Context, key string, v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes++
	if f.WriteErr != nil {
		return f.WriteErr
	}
	in, ok := v.(*models.UserProfile)
	if !ok {
		return fmt.Errorf("unexpected record type %T", v)
	}
	cp := cloneProfile(in)
	f.records[key] = &cp
	return nil
}

// Profile returns the stored profile at key, or nil.
func (f *FakeRecordStore) Profile(key string) *models.UserProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.records[key]
	if !ok {
		return nil
	}
	cp := cloneProfile(profile)
	return &cp
}

// Count returns the number of stored records.
func (f *FakeRecordStore) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func cloneProfile(p *models.UserProfile) models.UserProfile {
	cp := *p
	cp.Courses = make(map[string]models.CourseMembership, len(p.Courses))
	for k, v := range p.Courses {
		cp.Courses[k] = v
	}
	return cp
}

// solvedVerifier returns a gate that already holds a proof token.
func solvedVerifier(t interface{ Fatalf(string, ...interface{}) }) *VerifierGate {
	gate := NewVerifierGate(AutoSolveRenderer(), zap.NewNop())
	if err := gate.Solve(context.Background()); err != nil {
		t.Fatalf("failed to solve verifier: %v", err)
	}
	return gate
}

// newTestService wires a full orchestrator on fakes.
func newTestService(api *FakeIdentityAPI, store *FakeRecordStore, verifier ChallengeVerifier) *DefaultAuthService {
	logger := zap.NewNop()
	if verifier == nil {
		verifier = NewVerifierGate(AutoSolveRenderer(), logger)
	}
	return &DefaultAuthService{
		Password:  &PasswordProvider{API: api, Logger: logger},
		Federated: &FederatedProvider{API: api, Logger: logger},
		Phone: &PhoneProvider{
			API:      api,
			Store:    NewMemoryChallengeStore(),
			Verifier: verifier,
			Logger:   logger,
		},
		Sessions: NewSessionManager(logger),
		Profiles: &ProfileProvisioner{Store: store, Logger: logger},
		API:      api,
		Logger:   logger,
	}
}
