package user

import (
	"collaborative-presentation-server/internal/domain"
	"collaborative-presentation-server/internal/errors"
	"context"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service defines the interface for user business logic
type Service interface {
	Register(user *domain.User) error
	Login(email, password string) (*domain.User, error)
	GetUserByID(id uint64) (*domain.User, error)
	IncreaseTokenVersion(id uint64) error
	SearchUsers(ctx context.Context, query string) ([]domain.SafeUser, error)
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
}

// NewService creates a new user service
func NewService(repository UserRepository) Service {
	return &DefaultService{repository: repository}
}

// Register registers a new user
func (s *DefaultService) Register(user *domain.User) error {
	// Check if user with email already exists
	_, err := s.repository.FindByEmail(user.Email)
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == nil {
		return errors.Conflict("User already registered", nil)
	}

	// Hash the password before saving
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Internal(err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true

	// Create user
	return s.repository.Create(user)
}

// Login authenticates a user
func (s *DefaultService) Login(email, password string) (*domain.User, error) {
	// Find user by email
	user, err := s.repository.FindByEmail(email)
	if err != nil {
		return nil, errors.Unauthorized("User not found", err)
	}

	// Check if user is active
	if !user.IsActive {
		return nil, errors.Unauthorized("User is not active", nil)
	}

	// Check password
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errors.Unauthorized("Wrong password", err)
	}

	return user, nil
}

// GetUserByID gets a user by ID
func (s *DefaultService) GetUserByID(id uint64) (*domain.User, error) {
	return s.repository.FindByID(id)
}

// IncreaseTokenVersion logs the user out everywhere
func (s *DefaultService) IncreaseTokenVersion(id uint64) error {
	return s.repository.IncreaseTokenVersion(id)
}

// SearchUsers finds users to invite by name or email fragment
func (s *DefaultService) SearchUsers(ctx context.Context, query string) ([]domain.SafeUser, error) {
	if len(query) < 2 {
		return []domain.SafeUser{}, nil
	}

	users, err := s.repository.Search(ctx, query, 20)
	if err != nil {
		return nil, errors.Internal(err)
	}

	result := make([]domain.SafeUser, 0, len(users))
	for i := range users {
		result = append(result, users[i].ToSafeUser())
	}
	return result, nil
}
