package user

import (
	"collaborative-presentation-server/internal/domain"
	"context"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *domain.User) error
	FindByEmail(email string) (*domain.User, error)
	FindByID(id uint64) (*domain.User, error)
	IncreaseTokenVersion(id uint64) error
	Search(ctx context.Context, query string, limit int) ([]domain.User, error)
}

// UserRepositoryImpl implements UserRepository
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new user repository
func NewRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create creates a new user
func (r *UserRepositoryImpl) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

// FindByEmail finds a user by email
func (r *UserRepositoryImpl) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID finds a user by ID
func (r *UserRepositoryImpl) FindByID(id uint64) (*domain.User, error) {
	var user domain.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IncreaseTokenVersion invalidates every token issued before now
func (r *UserRepositoryImpl) IncreaseTokenVersion(id uint64) error {
	return r.db.Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error
}

// Search finds active users by name or email fragment
func (r *UserRepositoryImpl) Search(ctx context.Context, query string, limit int) ([]domain.User, error) {
	var users []domain.User
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (name ILIKE ? OR email ILIKE ?)", true, pattern, pattern).
		Limit(limit).
		Find(&users).Error
	return users, err
}
