package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"microblog-account-service/internal/usecase/auth"
	apperrors "microblog-account-service/pkg/errors"
	"microblog-account-service/pkg/logger"
)

// grantTypePassword is the only grant accepted by the token endpoint.
const grantTypePassword = "password"

// AuthHandler handles HTTP requests for account operations
type AuthHandler struct {
	uc  auth.Usecase
	log *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(uc auth.Usecase, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		uc:  uc,
		log: log,
	}
}

// SignupRequest represents the HTTP request body for creating an account.
// Fields must be present but may be empty; email syntax is checked by the usecase.
type SignupRequest struct {
	Username *string `json:"username" binding:"required"`
	Email    *string `json:"email" binding:"required"`
	Password *string `json:"password" binding:"required"`
}

// TokenRequest represents the form submitted to obtain a token
type TokenRequest struct {
	GrantType string  `form:"grant_type"`
	Username  *string `form:"username" binding:"required"`
	Password  *string `form:"password" binding:"required"`
}

// ProfileResponse represents the HTTP response for a user profile
type ProfileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenResponse represents the HTTP response for a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserSummaryResponse represents one entry of the user listing
type UserSummaryResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Signup handles POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid signup request", zap.Error(err))
		h.handleError(c, apperrors.FromValidator(err))
		return
	}

	profile, err := h.uc.Signup(c.Request.Context(), auth.SignupRequest{
		Username: *req.Username,
		Email:    *req.Email,
		Password: *req.Password,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// Token handles POST /token
func (h *AuthHandler) Token(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req TokenRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		log.Warn("invalid token request", zap.Error(err))
		h.handleError(c, apperrors.FromValidator(err))
		return
	}
	if req.GrantType != "" && req.GrantType != grantTypePassword {
		log.Warn("unsupported grant type", zap.String("grant_type", req.GrantType))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation_error",
			Detail: "grant_type must be \"password\"",
		})
		return
	}

	token, err := h.uc.Login(c.Request.Context(), auth.LoginRequest{
		Username: *req.Username,
		Password: *req.Password,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
}

// Profile handles GET /profile/:userId
func (h *AuthHandler) Profile(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:  "not_authenticated",
			Detail: "Not authenticated",
		})
		return
	}

	profile, err := h.uc.GetProfile(c.Request.Context(), c.Param("userId"), token)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// AllUsers handles GET /all_users
func (h *AuthHandler) AllUsers(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]UserSummaryResponse, len(users))
	for i, u := range users {
		resp[i] = UserSummaryResponse{ID: u.ID, Username: u.Username}
	}
	c.JSON(http.StatusOK, resp)
}

// bearerToken extracts the credential of a "Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	return token, true
}

func toProfileResponse(p *auth.Profile) ProfileResponse {
	return ProfileResponse{
		ID:       p.ID,
		Username: p.Username,
		Email:    p.Email,
	}
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *AuthHandler) handleError(c *gin.Context, err error) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(validationErr.HTTPStatus(), ErrorResponse{
			Error:  "validation_error",
			Detail: validationErr.Message,
		})
		return
	}

	if appErr, ok := apperrors.AsError(err); ok {
		c.JSON(appErr.HTTPStatus(), ErrorResponse{
			Error:  appErr.Code,
			Detail: appErr.Message,
		})
		return
	}

	log.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:  "internal_error",
		Detail: "An internal error occurred",
	})
}
