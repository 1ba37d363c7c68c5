package auth

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

// Requirement: CreateAccount validates locally and never reaches the remote
// service on a violation.
func TestPasswordProvider_CreateAccountValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  bool
	}{
		{
			name:     "accepts valid input",
			username: "alice_01",
			email:    "alice@example.com",
			password: "secret1",
		},
		{
			name:     "rejects username shorter than 3 characters",
			username: "ab",
			email:    "alice@example.com",
			password: "secret1",
			wantErr:  true,
		},
		{
			name:     "rejects username longer than 16 characters",
			username: "a_very_long_username",
			email:    "alice@example.com",
			password: "secret1",
			wantErr:  true,
		},
		{
			name:     "rejects username with symbols",
			username: "alice!",
			email:    "alice@example.com",
			password: "secret1",
			wantErr:  true,
		},
		{
			name:     "rejects malformed email",
			username: "alice",
			email:    "not-an-email",
			password: "secret1",
			wantErr:  true,
		},
		{
			name:     "rejects email with spaces",
			username: "alice",
			email:    "a b@example.com",
			password: "secret1",
			wantErr:  true,
		},
		{
			name:     "rejects password shorter than 6 characters",
			username: "alice",
			email:    "alice@example.com",
			password: "12345",
			wantErr:  true,
		},
		{
			name:    "rejects empty fields",
			wantErr: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			api := NewFakeIdentityAPI()
			provider := &PasswordProvider{API: api, Logger: zap.NewNop()}

			identity, err := provider.CreateAccount(context.Background(), test.username, test.email, test.password)

			if test.wantErr {
				if err == nil {
					t.Fatal("CreateAccount() should fail")
				}
				if code := CodeOf(err); code != CodeValidation {
					t.Errorf("CodeOf(err) = %v, want %v", code, CodeValidation)
				}
				if api.CallCount() != 0 {
					t.Errorf("remote service was called %d times, want 0", api.CallCount())
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateAccount() error = %v", err)
			}
			if identity == nil || identity.ID == "" {
				t.Fatal("CreateAccount() should return an identity")
			}
			if api.CallCount() != 1 {
				t.Errorf("remote service was called %d times, want 1", api.CallCount())
			}
		})
	}
}

// Requirement: a rejected pair surfaces InvalidCredential.
func TestPasswordProvider_Authenticate(t *testing.T) {
	t.Run("returns identity on success", func(t *testing.T) {
		api := NewFakeIdentityAPI()
		provider := &PasswordProvider{API: api, Logger: zap.NewNop()}

		identity, err := provider.Authenticate(context.Background(), "alice@example.com", "secret1")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if identity.Email != "alice@example.com" {
			t.Errorf("identity.Email = %q", identity.Email)
		}
	})

	t.Run("classifies rejected credentials", func(t *testing.T) {
		api := NewFakeIdentityAPI()
		api.SignInErr = NewError(CodeInvalidCredential, "Invalid email or password.")
		provider := &PasswordProvider{API: api, Logger: zap.NewNop()}

		_, err := provider.Authenticate(context.Background(), "alice@example.com", "wrong")
		if code := CodeOf(err); code != CodeInvalidCredential {
			t.Fatalf("CodeOf(err) = %v, want %v", code, CodeInvalidCredential)
		}
	})

	t.Run("rejects empty input without remote call", func(t *testing.T) {
		api := NewFakeIdentityAPI()
		provider := &PasswordProvider{API: api, Logger: zap.NewNop()}

		_, err := provider.Authenticate(context.Background(), "", "")
		if code := CodeOf(err); code != CodeValidation {
			t.Fatalf("CodeOf(err) = %v, want %v", code, CodeValidation)
		}
		if api.CallCount() != 0 {
			t.Errorf("remote service was called %d times, want 0", api.CallCount())
		}
	})
}
