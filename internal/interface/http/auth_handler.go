package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mediscribe/internal/application"
	"github.com/oksasatya/mediscribe/pkg/helpers"
	"github.com/oksasatya/mediscribe/pkg/response"
	"github.com/oksasatya/mediscribe/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger logrus.FieldLogger
}

func NewAuthHandler(svc *application.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

type tokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
}

// Register POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Abort(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if _, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.FullName); err != nil {
		if errors.Is(err, application.ErrDuplicateIdentity) {
			response.Abort(c, http.StatusBadRequest, "Email already registered", nil)
			return
		}
		helpers.LogError(h.Logger, "register failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Abort(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User created successfully"})
}

// Token POST /token, form-encoded username (the email) and password.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Abort(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, tok, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) || errors.Is(err, application.ErrInvalidCredential) {
			response.Abort(c, http.StatusBadRequest, "Incorrect email or password", nil)
			return
		}
		helpers.LogError(h.Logger, "login failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Abort(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: tok.Value,
		TokenType:   "bearer",
		UserName:    u.FullName,
		UserEmail:   u.Email,
	})
}
