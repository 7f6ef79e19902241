package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prcontacts-backend/models"
	"prcontacts-backend/repository"
	"prcontacts-backend/utils"
	"prcontacts-backend/utils/logger"

	"github.com/go-playground/validator/v10"
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	GenerateToken(user *models.User) (string, error)
}

type UserService struct {
	repo      repository.UserRepositoryInterface
	tokens    TokenIssuer
	config    *models.Config
	logger    logger.Logger
	validator *validator.Validate
}

func NewUserService(repo repository.UserRepositoryInterface, tokens TokenIssuer, cfg *models.Config, log logger.Logger) *UserService {
	return &UserService{
		repo:      repo,
		tokens:    tokens,
		config:    cfg,
		logger:    log,
		validator: validator.New(),
	}
}

// Register creates a user with the configured default roles
func (s *UserService) Register(ctx context.Context, req *models.RegisterUser) (*models.User, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roles := make([]models.UserRole, 0, len(s.config.DefaultRoles))
	for _, r := range s.config.DefaultRoles {
		roles = append(roles, models.UserRole(r))
	}

	user := &models.User{
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Roles:        roles,
	}
	return s.repo.CreateUser(ctx, user)
}

// Login checks the credentials and issues an access token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	invalid := fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warnf("Failed login for %s", user.Email)
		return nil, invalid
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	s.logger.Infof("User logged in: %s", user.ID)
	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.config.JWTExpiresIn.Seconds()),
		User:        user,
	}, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) validate(req interface{}) error {
	if err := s.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return models.NewValidationError(strings.ToLower(fe.Field()), formatFieldError(fe))
		}
		return models.NewValidationError("", err.Error())
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
