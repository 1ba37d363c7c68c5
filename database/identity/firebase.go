// Package identity implements the remote identity-provider surface the
// credential providers authenticate against.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	"classroom/models"
	"classroom/services/auth"

	"go.uber.org/zap"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1/accounts:"

// FirebaseAPI talks to the Firebase Identity Toolkit REST endpoints (the
// same wire surface the hosted client SDKs use; the admin SDK deliberately
// has no password or phone sign-in). The admin Auth client is only used for
// refresh-token revocation on sign-out and may be nil.
type FirebaseAPI struct {
	APIKey string
	Admin  *fbauth.Client
	Client *http.Client
	Logger *zap.Logger
}

var _ auth.IdentityAPI = (*FirebaseAPI)(nil)

func NewFirebaseAPI(apiKey string, admin *fbauth.Client, logger *zap.Logger) *FirebaseAPI {
	return &FirebaseAPI{
		APIKey: apiKey,
		Admin:  admin,
		Client: &http.Client{Timeout: 15 * time.Second},
		Logger: logger,
	}
}

// toolkitError is the error envelope of every Identity Toolkit response.
type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call posts the request body to the named accounts operation and decodes
// the response into out. Failures are classified before they leave here, so
// callers never see provider-internal wording.
func (a *FirebaseAPI) call(ctx context.Context, op string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		identityToolkitURL+op+"?key="+a.APIKey, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return auth.WrapError(auth.CodeNetwork,
			"A network error occurred. Check your connection and try again.", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return auth.WrapError(auth.CodeNetwork,
			"A network error occurred. Check your connection and try again.", err)
	}
	if resp.StatusCode >= 400 {
		var envelope toolkitError
		if err := json.Unmarshal(data, &envelope); err != nil || envelope.Error.Message == "" {
			return auth.Classify(a.Logger, fmt.Errorf("%s returned status %d", op, resp.StatusCode))
		}
		return a.classifyToolkit(op, envelope.Error.Message)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// classifyToolkit maps Identity Toolkit error strings onto the taxonomy.
// Messages sometimes carry a suffix ("TOO_MANY_ATTEMPTS_TRY_LATER : ..."),
// so matching is on the leading token.
func (a *FirebaseAPI) classifyToolkit(op, message string) error {
	token := message
	if i := strings.IndexAny(token, " :"); i > 0 {
		token = token[:i]
	}
	cause := fmt.Errorf("identitytoolkit %s: %s", op, message)
	switch token {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "USER_DISABLED":
		return auth.WrapError(auth.CodeInvalidCredential, "Invalid email or password.", cause)
	case "EMAIL_EXISTS":
		return auth.WrapError(auth.CodeInvalidCredential, "An account with this email already exists.", cause)
	case "WEAK_PASSWORD":
		return auth.WrapError(auth.CodeInvalidCredential, "Please choose a stronger password.", cause)
	case "INVALID_IDP_RESPONSE", "INVALID_CREDENTIAL_OR_PROVIDER_ID", "FEDERATED_USER_ID_ALREADY_LINKED":
		return auth.WrapError(auth.CodeInvalidCredential, "Sign-in with this provider failed. Please try again.", cause)
	case "CAPTCHA_CHECK_FAILED", "MISSING_RECAPTCHA_TOKEN", "INVALID_RECAPTCHA_TOKEN":
		return auth.WrapError(auth.CodeChallengeFailed, "Verification challenge failed. Please solve it again.", cause)
	case "INVALID_PHONE_NUMBER", "MISSING_PHONE_NUMBER":
		return auth.WrapError(auth.CodeValidation, "Please enter a valid phone number.", cause)
	case "TOO_MANY_ATTEMPTS_TRY_LATER", "QUOTA_EXCEEDED":
		return auth.WrapError(auth.CodeRateLimited, "Too many attempts. Please try again later.", cause)
	case "SESSION_EXPIRED":
		return auth.WrapError(auth.CodeChallengeExpired, "The verification code expired. Please request a new one.", cause)
	case "INVALID_CODE", "MISSING_CODE", "INVALID_SESSION_INFO":
		return auth.WrapError(auth.CodeInvalidCode, "The verification code is incorrect.", cause)
	}
	return auth.Classify(a.Logger, cause)
}

func (a *FirebaseAPI) PasswordSignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	var resp struct {
		LocalID        string `json:"localId"`
		Email          string `json:"email"`
		DisplayName    string `json:"displayName"`
		ProfilePicture string `json:"profilePicture"`
	}
	err := a.call(ctx, "signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &models.Identity{
		ID:          resp.LocalID,
		DisplayName: resp.DisplayName,
		Email:       resp.Email,
		PhotoURL:    resp.ProfilePicture,
	}, nil
}

func (a *FirebaseAPI) PasswordSignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	var resp struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	}
	err := a.call(ctx, "signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &models.Identity{ID: resp.LocalID, Email: resp.Email}, nil
}

func (a *FirebaseAPI) ExchangeFederatedToken(ctx context.Context, provider models.Provider, token string) (*models.Identity, error) {
	var resp struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoUrl"`
	}
	err := a.call(ctx, "signInWithIdp", map[string]interface{}{
		"postBody":            fmt.Sprintf("id_token=%s&providerId=%s", token, provider),
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &models.Identity{
		ID:          resp.LocalID,
		DisplayName: resp.DisplayName,
		Email:       resp.Email,
		PhotoURL:    resp.PhotoURL,
	}, nil
}

func (a *FirebaseAPI) SendPhoneCode(ctx context.Context, number, proof string) (string, error) {
	var resp struct {
		SessionInfo string `json:"sessionInfo"`
	}
	err := a.call(ctx, "sendVerificationCode", map[string]interface{}{
		"phoneNumber":    number,
		"recaptchaToken": proof,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.SessionInfo, nil
}

func (a *FirebaseAPI) ConfirmPhoneCode(ctx context.Context, handle, code string) (*models.Identity, error) {
	var resp struct {
		LocalID     string `json:"localId"`
		PhoneNumber string `json:"phoneNumber"`
	}
	err := a.call(ctx, "signInWithPhoneNumber", map[string]interface{}{
		"sessionInfo": handle,
		"code":        code,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &models.Identity{ID: resp.LocalID, PhoneNumber: resp.PhoneNumber}, nil
}

func (a *FirebaseAPI) SignOut(ctx context.Context, uid string) error {
	if a.Admin == nil {
		return nil
	}
	if err := a.Admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for %s: %w", uid, err)
	}
	return nil
}
