package handlers

import (
	"net/http"
	"time"

	"tours-backend/internal/api/middleware"
	"tours-backend/internal/apperror"
	"tours-backend/internal/services"
	"tours-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService  *services.AuthService
	validator    *validator.Validate
	cookieMaxAge int
	cookieSecure bool
}

func NewAuthHandler(authService *services.AuthService, sessionTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		validator:    validator.New(),
		cookieMaxAge: int(sessionTTL.Seconds()),
		cookieSecure: cookieSecure,
	}
}

// setSessionCookie mirrors the token into an HTTP-only cookie so browser
// clients never touch it from script.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("jwt", token, h.cookieMaxAge, "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("jwt", "", -1, "/", "", h.cookieSecure, true)
}

// Signup registers a new account and logs it in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	response, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	h.setSessionCookie(c, response.Token)
	utils.SuccessResponse(c, http.StatusCreated, "Account created", response)
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	h.setSessionCookie(c, response.Token)
	utils.SuccessResponse(c, http.StatusOK, "Login successful", response)
}

// Logout clears the session cookie. Bearer clients simply drop their
// token.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	utils.SuccessResponse(c, http.StatusOK, "Logout successful", nil)
}

// ForgotPassword kicks off the reset flow. The response is identical
// whether or not the address is known.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "If that account exists, a reset email is on its way", nil)
}

// ResetPassword consumes the mailed token and sets a new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" validate:"required,min=8,max=72"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	token, err := h.authService.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	h.setSessionCookie(c, token)
	utils.SuccessResponse(c, http.StatusOK, "Password has been reset", gin.H{"token": token})
}

// ChangePassword rotates the password of the logged-in account.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		utils.ErrorFrom(c, apperror.New(apperror.NotAuthenticated, "You are not logged in, please log in to get access"))
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	token, err := h.authService.ChangePassword(c.Request.Context(), principal, req.CurrentPassword, req.NewPassword)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	h.setSessionCookie(c, token)
	utils.SuccessResponse(c, http.StatusOK, "Password changed", gin.H{"token": token})
}

// Deactivate soft-disables the calling account.
func (h *AuthHandler) Deactivate(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		utils.ErrorFrom(c, apperror.New(apperror.NotAuthenticated, "You are not logged in, please log in to get access"))
		return
	}

	if err := h.authService.Deactivate(c.Request.Context(), principal); err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	h.clearSessionCookie(c)
	utils.SuccessResponse(c, http.StatusOK, "Account deactivated", nil)
}

// Activate re-enables a deactivated account via its credentials.
func (h *AuthHandler) Activate(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	response, err := h.authService.Activate(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	h.setSessionCookie(c, response.Token)
	utils.SuccessResponse(c, http.StatusOK, "Account activated", response)
}

// Profile returns the logged-in account.
func (h *AuthHandler) Profile(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		utils.ErrorFrom(c, apperror.New(apperror.NotAuthenticated, "You are not logged in, please log in to get access"))
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), principal)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved", user)
}
