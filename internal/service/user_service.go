package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/repository"
	"mentormind/internal/security"
	"mentormind/internal/validation"
)

// UserService manages student accounts
type UserService struct {
	Deps
}

// NewUserService creates a new user service
func NewUserService(deps Deps) *UserService {
	return &UserService{Deps: deps}
}

// Register creates an account and its goal record for today
func (s *UserService) Register(ctx context.Context, username, email, password, name string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	// Validate inputs
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *models.User
	err = s.DB.WithTx(ctx, func(tx *database.Tx) error {
		users := repository.NewUserRepository(tx)
		existing, err := users.FindByUsernameOrEmail(ctx, username, email)
		if err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			return ErrUserExists
		}
		if user, err = users.Create(ctx, username, email, hash, name, s.now()); err != nil {
			return err
		}
		_, err = repository.NewGoalRepository(tx).GetOrCreate(ctx, user.ID, s.today())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger().Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate checks a username or email and password pair
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	user, err := repository.NewUserRepository(s.DB).FindByUsernameOrEmail(ctx, login, strings.ToLower(login))
	if err != nil {
		return nil, err
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Resolve finds a user by numeric id, username or email
func (s *UserService) Resolve(ctx context.Context, ref string) (*models.User, error) {
	users := repository.NewUserRepository(s.DB)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		return users.GetByID(ctx, id)
	}
	user, err := users.FindByUsernameOrEmail(ctx, ref, strings.ToLower(ref))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %q: %w", ref, repository.ErrNotFound)
	}
	return user, nil
}

// Get loads a user by id
func (s *UserService) Get(ctx context.Context, userID int64) (*models.User, error) {
	return repository.NewUserRepository(s.DB).GetByID(ctx, userID)
}

// SetTelegramChat links the chat that receives Telegram reminders
func (s *UserService) SetTelegramChat(ctx context.Context, userID, chatID int64) error {
	return repository.NewUserRepository(s.DB).SetTelegramChat(ctx, userID, chatID)
}

// SetReminders toggles the daily reminder
func (s *UserService) SetReminders(ctx context.Context, userID int64, enabled bool) error {
	return repository.NewUserRepository(s.DB).SetRemindersEnabled(ctx, userID, enabled)
}
