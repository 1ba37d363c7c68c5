package handlers

import (
	"net/http"

	"classroom/models"
	"classroom/services/auth"
	"classroom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler exposes the authentication surface over HTTP. The verifier is
// the token-fed adapter: clients solve the captcha on their side and forward
// the proof with the send-code request.
type AuthHandler struct {
	Service  auth.AuthService
	Verifier *auth.TokenVerifier
}

func NewAuthHandler(service auth.AuthService, verifier *auth.TokenVerifier) *AuthHandler {
	return &AuthHandler{Service: service, Verifier: verifier}
}

// statusFor maps error categories onto HTTP statuses.
func statusFor(code auth.Code) int {
	switch code {
	case auth.CodeValidation:
		return http.StatusBadRequest
	case auth.CodeInvalidCredential, auth.CodeInvalidCode:
		return http.StatusUnauthorized
	case auth.CodeChallengeFailed, auth.CodeChallengeExpired:
		return http.StatusForbidden
	case auth.CodeRateLimited:
		return http.StatusTooManyRequests
	case auth.CodeNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondAuthError(c *gin.Context, err error) {
	code := auth.CodeOf(err)
	utils.JSONError(c, statusFor(code), err.Error(), string(code))
}

// SignInHandler handles password sign-in.
func (h *AuthHandler) SignInHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid sign-in request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.Service.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("Password sign-in failed", zap.String("email", req.Email), zap.Error(err))
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, signInResponse(result))
}

// SignUpHandler handles account creation.
func (h *AuthHandler) SignUpHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Photo    string `json:"photo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid sign-up request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.Service.CreateAccount(c.Request.Context(), req.Username, req.Email, req.Password,
		models.ProfileDefaults{Name: req.Username, Email: req.Email, Photo: req.Photo})
	if err != nil {
		logger.Warn("Account creation failed", zap.String("email", req.Email), zap.Error(err))
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusCreated, signInResponse(result))
}

// FederatedSignInHandler handles provider-token sign-in.
func (h *AuthHandler) FederatedSignInHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Provider string `json:"provider"`
		Token    string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid federated sign-in request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	provider, err := models.ParseProvider(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported sign-in provider."})
		return
	}

	result, err := h.Service.SignInWithFederated(c.Request.Context(), provider, req.Token)
	if err != nil {
		logger.Warn("Federated sign-in failed", zap.String("provider", req.Provider), zap.Error(err))
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, signInResponse(result))
}

// SendPhoneCodeHandler arms the verifier with the client-solved captcha
// token and dispatches the one-time code.
func (h *AuthHandler) SendPhoneCodeHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		PhoneNumber    string `json:"phoneNumber"`
		RecaptchaToken string `json:"recaptchaToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid send-code request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.RecaptchaToken != "" {
		h.Verifier.Supply(req.RecaptchaToken)
	}

	challenge, err := h.Service.BeginPhoneVerification(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		logger.Warn("Send code failed", zap.String("phone", req.PhoneNumber), zap.Error(err))
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"challengeId": challenge.ID,
		"expiresAt":   challenge.ExpiresAt,
	})
}

// ConfirmPhoneCodeHandler redeems a challenge against the entered code.
func (h *AuthHandler) ConfirmPhoneCodeHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		ChallengeID string `json:"challengeId"`
		Code        string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid confirm-code request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.Service.ConfirmPhoneVerification(c.Request.Context(),
		&models.OTPChallenge{ID: req.ChallengeID}, req.Code)
	if err != nil {
		logger.Warn("Code confirmation failed", zap.String("challenge", req.ChallengeID), zap.Error(err))
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, signInResponse(result))
}

// SignOutHandler clears the session.
func (h *AuthHandler) SignOutHandler(c *gin.Context) {
	if err := h.Service.SignOut(c.Request.Context()); err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signedOut": true})
}

// SessionHandler reports the current identity, if any.
func (h *AuthHandler) SessionHandler(c *gin.Context) {
	identity := h.Service.Current()
	if identity == nil {
		c.JSON(http.StatusOK, gin.H{"signedIn": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signedIn": true, "identity": identity})
}

func signInResponse(result *auth.AuthResult) gin.H {
	resp := gin.H{"identity": result.Identity}
	if result.ProfileWarning != nil {
		resp["profileWarning"] = result.ProfileWarning.Error()
	}
	return resp
}
