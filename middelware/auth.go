package middelware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"prcontacts-backend/models"
	"prcontacts-backend/repository"
	"prcontacts-backend/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRoles = "user_roles"
	ContextClaims    = "jwt_claims"
)

// JWTManager handles JWT token operations
type JWTManager struct {
	Config            *models.Config
	Logger            logger.Logger
	UserRepo          repository.UserRepositoryInterface
	BlacklistedTokens map[string]time.Time // jti -> token expiry
	TokenMutex        sync.RWMutex

	now func() time.Time
}

// NewJWTManager creates a new JWT manager. userRepo may be nil to skip the user existence check.
func NewJWTManager(cfg *models.Config, log logger.Logger, userRepo repository.UserRepositoryInterface) *JWTManager {
	return &JWTManager{
		Config:            cfg,
		Logger:            log,
		UserRepo:          userRepo,
		BlacklistedTokens: make(map[string]time.Time),
		now:               time.Now,
	}
}

// GenerateToken generates a JWT token for a user
func (j *JWTManager) GenerateToken(user *models.User) (string, error) {
	now := j.now()
	claims := models.JWTClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Name,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(), // JTI (JWT ID)
			Subject:   user.ID,
			Issuer:    j.Config.AppName,
			Audience:  jwt.ClaimStrings{j.Config.AppName},
			ExpiresAt: jwt.NewNumericDate(now.Add(j.Config.JWTExpiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.Config.JWTSecret))
	if err != nil {
		j.Logger.Errorf("Failed to sign JWT token: %v", err)
		return "", err
	}

	j.Logger.Debugf("Generated JWT token for user: %s", user.ID)
	return tokenString, nil
}

// ValidateToken verifies signature, lifetime and revocation, then checks the user still exists.
// Every rejection unwraps to models.ErrUnauthorized.
func (j *JWTManager) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Prevent algorithm confusion attacks
		if method, ok := token.Method.(*jwt.SigningMethodHMAC); !ok || method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.Config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		j.Logger.Debugf("Failed to parse JWT token: %v", err)
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", models.ErrUnauthorized)
	}

	if j.isRevoked(claims.ID) {
		return nil, fmt.Errorf("%w: token has been revoked", models.ErrUnauthorized)
	}

	if j.UserRepo != nil {
		if _, err := j.UserRepo.GetUserByID(ctx, claims.UserID); err != nil {
			j.Logger.Warnf("User %s from token could not be verified: %v", claims.UserID, err)
			if errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("%w: user not found", models.ErrUnauthorized)
			}
			return nil, fmt.Errorf("user verification failed: %w", err)
		}
	}

	j.Logger.Debugf("Successfully validated JWT token for user: %s", claims.UserID)
	return claims, nil
}

func (j *JWTManager) isRevoked(tokenID string) bool {
	j.TokenMutex.RLock()
	defer j.TokenMutex.RUnlock()
	expiry, exists := j.BlacklistedTokens[tokenID]
	return exists && expiry.After(j.now())
}

// RevokeToken blacklists the token until it would have expired anyway (logout)
func (j *JWTManager) RevokeToken(claims *models.JWTClaims) {
	expiry := j.now().Add(j.Config.JWTExpiresIn)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	j.TokenMutex.Lock()
	defer j.TokenMutex.Unlock()
	j.BlacklistedTokens[claims.ID] = expiry
	j.Logger.Debugf("Revoked token for user %s: %s", claims.UserID, claims.ID)
}

// CleanupExpiredTokens removes expired tokens from blacklist and reports how many were dropped
func (j *JWTManager) CleanupExpiredTokens() int {
	j.TokenMutex.Lock()
	defer j.TokenMutex.Unlock()

	now := j.now()
	removed := 0
	for tokenID, expiry := range j.BlacklistedTokens {
		if !expiry.After(now) {
			delete(j.BlacklistedTokens, tokenID)
			removed++
		}
	}
	j.Logger.Debugf("Cleaned up %d expired blacklisted tokens", removed)
	return removed
}

// AuthMiddleware requires a valid bearer token
func (j *JWTManager) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, "Missing Authorization header",
				fmt.Errorf("%w: Authorization header is required", models.ErrUnauthorized))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abortWithError(c, "Invalid Authorization header format",
				fmt.Errorf("%w: Authorization header must be in format: Bearer <token>", models.ErrUnauthorized))
			return
		}

		claims, err := j.ValidateToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			j.Logger.Warnf("Token validation failed: %v", err)
			abortWithError(c, "Invalid or expired token", err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRoles, claims.Roles)
		c.Set(ContextClaims, claims)

		j.Logger.Debugf("User authenticated: %s", claims.UserID)
		c.Next()
	}
}

// RequireRole lets the request through when the token carries any of roles
func (j *JWTManager) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			abortWithError(c, "Authentication required",
				fmt.Errorf("%w: user not authenticated", models.ErrUnauthorized))
			return
		}

		if !claims.HasRole(roles...) {
			j.Logger.Warnf("User %s does not have required role: %v", claims.UserID, roles)
			abortWithError(c, "Insufficient permissions",
				fmt.Errorf("%w: required role: %v", models.ErrForbidden, roles))
			return
		}

		c.Next()
	}
}

// ClaimsFromContext returns the claims AuthMiddleware stored on the request
func ClaimsFromContext(c *gin.Context) (*models.JWTClaims, bool) {
	v, exists := c.Get(ContextClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*models.JWTClaims)
	return claims, ok
}

// TokenValidationRequest represents the request body for token validation
type TokenValidationRequest struct {
	Token string `json:"token" binding:"required"`
}

// ValidateTokenEndpoint godoc
// @Summary Validate a token
// @Description Reports whether a token is currently accepted and who it belongs to
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body TokenValidationRequest true "Token"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /auth/validate [post]
func (j *JWTManager) ValidateTokenEndpoint(c *gin.Context) {
	var req TokenValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		abortWithError(c, "Invalid request body", models.NewValidationError("token", "token is required"))
		return
	}

	claims, err := j.ValidateToken(c.Request.Context(), strings.TrimSpace(req.Token))
	if err != nil {
		abortWithError(c, "Invalid or expired token", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Token is valid",
		Data: map[string]interface{}{
			"valid":      true,
			"user_id":    claims.UserID,
			"email":      claims.Email,
			"username":   claims.Username,
			"roles":      claims.Roles,
			"expires_at": claims.ExpiresAt,
			"issued_at":  claims.IssuedAt,
		},
	})
}

func abortWithError(c *gin.Context, message string, err error) {
	resp := models.ErrorResponse(message, err)
	c.AbortWithStatusJSON(resp.Code, resp)
}
