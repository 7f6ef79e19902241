package controller

import (
	"fmt"
	"net/http"
	"time"

	"prcontacts-backend/middelware"
	"prcontacts-backend/models"
	"prcontacts-backend/services"
	"prcontacts-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	service    services.UserServiceInterface
	jwtManager *middelware.JWTManager
	logger     logger.Logger
}

func NewUserController(service services.UserServiceInterface, jwtManager *middelware.JWTManager, logger logger.Logger) *UserController {
	return &UserController{
		service:    service,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Create a new user account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterUser true "Registration request"
// @Success 201 {object} models.APIResponse "User registered successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid registration data"
// @Failure 409 {object} models.APIResponse "Conflict - User already exists"
// @Router /auth/register [post]
func (h *UserController) Register(c *gin.Context) {
	var req models.RegisterUser
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debugf("Failed to bind register request: %v", err)
		respondError(c, h.logger, "Invalid request", models.NewValidationError("", err.Error()))
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to create user", err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Status:  "success",
		Code:    http.StatusCreated,
		Message: "User registered successfully",
		Data:    user,
	})
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=models.LoginResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /auth/login [post]
func (h *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "Invalid request", models.NewValidationError("", err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, "Login failed", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Login successful",
		Data:    resp,
	})
}

// Profile handles GET /auth/profile
// @Summary Current user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.User}
// @Failure 401 {object} models.APIResponse
// @Router /auth/profile [get]
func (h *UserController) Profile(c *gin.Context) {
	claims, ok := middelware.ClaimsFromContext(c)
	if !ok {
		respondError(c, h.logger, "Authentication required",
			fmt.Errorf("%w: user not authenticated", models.ErrUnauthorized))
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "Failed to load profile", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}

// Logout handles POST /auth/logout
// @Summary Log out
// @Description Revoke the bearer token used for this request
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /auth/logout [post]
func (h *UserController) Logout(c *gin.Context) {
	claims, ok := middelware.ClaimsFromContext(c)
	if !ok {
		respondError(c, h.logger, "Authentication required",
			fmt.Errorf("%w: user not authenticated", models.ErrUnauthorized))
		return
	}

	h.jwtManager.RevokeToken(claims)
	h.logger.Debugf("User %s logged out successfully", claims.UserID)

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Logout successful",
		Data: map[string]interface{}{
			"logged_out_at": time.Now().UTC(),
			"user_id":       claims.UserID,
		},
	})
}
