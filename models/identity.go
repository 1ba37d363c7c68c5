// models/identity.go
package models

import "fmt"

// Provider identifies a credential modality. It is a closed set; anything
// else is rejected at the edge instead of being passed around as a raw string.
type Provider string

const (
	ProviderPassword Provider = "password"
	ProviderGoogle   Provider = "google.com"
	ProviderFacebook Provider = "facebook.com"
	ProviderPhone    Provider = "phone"
)

// ParseProvider maps a wire string onto the closed Provider set.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderPassword, ProviderGoogle, ProviderFacebook, ProviderPhone:
		return Provider(s), nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	_, err := ParseProvider(string(p))
	return err == nil
}

// Identity is the verified representation of a user as returned by a
// credential provider. It is immutable once produced; its lifetime is the
// current session.
type Identity struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email,omitempty"`
	PhotoURL    string   `json:"photoUrl,omitempty"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	Provider    Provider `json:"provider"`
}
