package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/services"
	appErrors "github.com/openshelf/openshelf/pkg/errors"
	"github.com/openshelf/openshelf/pkg/metrics"
	"github.com/openshelf/openshelf/pkg/response"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authPayload struct {
	User   any       `json:"user"`
	Tokens tokenPair `json:"tokens"`
}

// AuthHandler exposes staff signup, login and token refresh endpoints.
type AuthHandler struct {
	users *services.UserService
	jwt   *iauth.JWTService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(db *gorm.DB, jwt *iauth.JWTService) (*AuthHandler, error) {
	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{users: users, jwt: jwt}, nil
}

// Signup registers a staff account and issues an initial token pair.
func (h *AuthHandler) Signup(c *gin.Context) {
	var payload signupRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), services.RegisterUserInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	tokens, err := h.issueTokens(user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, authPayload{User: user, Tokens: tokens})
}

// Login checks credentials and issues a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload loginRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()

	tokens, err := h.issueTokens(user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, authPayload{User: user, Tokens: tokens})
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var payload refreshRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	claims, err := h.jwt.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	tokens, err := h.issueTokens(user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, authPayload{User: user, Tokens: tokens})
}

func (h *AuthHandler) issueTokens(userID string) (tokenPair, error) {
	access, err := h.jwt.GenerateAccessToken(userID)
	if err != nil {
		return tokenPair{}, err
	}
	refresh, err := h.jwt.GenerateRefreshToken(userID)
	if err != nil {
		return tokenPair{}, err
	}
	return tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
