package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/bookmarks/pkg/bookmarks/errx"
	"github.com/mikepea/bookmarks/pkg/bookmarks/httpx"
	"github.com/mikepea/bookmarks/pkg/bookmarks/models"
)

// Handler handles authentication requests
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterResponse is returned on successful registration
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// LoginResponse carries both tokens and the user
type LoginResponse struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    UserResponse `json:"user"`
}

// RefreshResponse carries a newly minted access token
type RefreshResponse struct {
	Access string `json:"access"`
}

func userToResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} httpx.ErrorResponse "Validation error"
// @Failure 409 {object} httpx.ErrorResponse "Email or username already taken"
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User created",
		User:    userToResponse(user),
	})
}

// Login handles user login
// @Summary Login
// @Description Authenticate with email and password to receive access and refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} httpx.ErrorResponse "Validation error"
// @Failure 401 {object} httpx.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, "Invalid request body")
		return
	}

	user, tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Access:  tokens.Access,
		Refresh: tokens.Refresh,
		User:    userToResponse(user),
	})
}

// Me returns the current authenticated user
// @Summary Get current user
// @Description Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} httpx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	token, exists := GetToken(c)
	if !exists {
		httpx.Error(c, errx.New("auth.Me", errx.Unauthorized, "Authentication required"))
		return
	}

	user, err := h.svc.CurrentUser(c.Request.Context(), token)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

// Refresh issues a new access token
// @Summary Refresh access token
// @Description Exchange a refresh token for a new access token. The refresh token stays valid.
// @Tags auth
// @Produce json
// @Success 200 {object} RefreshResponse
// @Failure 401 {object} httpx.ErrorResponse "Refresh token required"
// @Security BearerAuth
// @Router /auth/token/refresh [get]
func (h *Handler) Refresh(c *gin.Context) {
	token, exists := GetToken(c)
	if !exists {
		httpx.Error(c, errx.New("auth.Refresh", errx.Unauthorized, "Authentication required"))
		return
	}

	access, err := h.svc.Refresh(token)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{Access: access})
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.GET("/me", AuthMiddleware(h.svc), h.Me)
	rg.GET("/token/refresh", RefreshMiddleware(h.svc), h.Refresh)
}
