package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docquery-backend/internal/shared/auth"
	"docquery-backend/internal/shared/server/middleware"
	"docquery-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc      *Service
	TokenTTL time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, tokenTTL time.Duration) *Handler {
	return &Handler{Svc: svc, TokenTTL: tokenTTL}
}

// RegisterPublicRoutes attaches routes that do not require a bearer token.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/token", h.token)
}

// RegisterRoutes attaches authenticated profile routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.me)
	rg.PUT("/users/me", h.updateMe)
	rg.DELETE("/users/me", h.deleteMe)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusBadRequest, "email_taken", "Email already registered", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register user", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(user))
}

func (h *Handler) token(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")
	if email == "" || password == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "username and password are required", nil)
		return
	}

	user, err := h.Svc.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Incorrect email or password", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to authenticate", nil)
		return
	}

	token, err := auth.Sign(user.Email, h.TokenTTL)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}

	respond.OK(c, gin.H{"access_token": token, "token_type": "bearer"})
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	user, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "User not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch user", nil)
		return
	}

	respond.OK(c, toResponse(user))
}

type updateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (h *Handler) updateMe(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.UpdateProfile(c.Request.Context(), userID, Update{Name: req.Name, Email: req.Email})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyUpdate):
			respond.Error(c, http.StatusBadRequest, "validation_error", "No valid fields to update", nil)
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusBadRequest, "email_taken", "Email already registered", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "User not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update user", nil)
		}
		return
	}

	respond.OK(c, toResponse(user))
}

func (h *Handler) deleteMe(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "User not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete user", nil)
		return
	}

	respond.OK(c, gin.H{"message": "User deleted successfully"})
}

func toResponse(user User) gin.H {
	return gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"name":      user.Name,
		"createdAt": user.CreatedAt,
	}
}
