package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prcontacts-backend/dal"
	"prcontacts-backend/models"
	"prcontacts-backend/utils"
	"prcontacts-backend/utils/logger"
)

const (
	usersTable      = "users"
	usersEmailIndex = "email-index"
)

// UserRepository stores API users in DynamoDB
type UserRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
	now    func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		config: cfg,
		logger: log,
		now:    time.Now,
	}
}

func (r *UserRepository) table() string {
	return r.config.TableName(usersTable)
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	r.logger.Debugf("Creating user: %s", utils.PrintPrettyJSON(user))

	existing, err := r.findByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user with email %s already exists: %w", user.Email, models.ErrConflict)
	}

	prepareUser(user, r.now())
	if err := r.db.PutItem(ctx, r.table(), user); err != nil {
		r.logger.Errorf("Failed to create user: %v", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Infof("User created successfully: %s", user.ID)
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	found, err := r.db.GetItem(ctx, r.table(), "id", id, user)
	if err != nil {
		r.logger.Errorf("Failed to get user %s: %v", id, err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := r.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", email)
	}
	return user, nil
}

func (r *UserRepository) findByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []*models.User
	if err := r.db.QueryByIndex(ctx, r.table(), usersEmailIndex, "email", email, &users); err != nil {
		r.logger.Errorf("Failed to query users by email: %v", err)
		return nil, fmt.Errorf("failed to query users by email: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

// prepareUser stamps identity, timestamps and the default role
func prepareUser(user *models.User, now time.Time) {
	user.ID = utils.GenerateUUID()
	user.CreatedAt = now.UTC()
	user.UpdatedAt = user.CreatedAt
	if len(user.Roles) == 0 {
		user.Roles = []models.UserRole{models.UserRoleUser}
	}
}
