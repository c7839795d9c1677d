package postgres

import (
	"errors"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRepository implements domain.UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository bound to a session.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// GetByTelegramID retrieves a user by telegram id
func (r *userRepository) GetByTelegramID(telegramID int64) (*domain.User, error) {
	var user domain.User
	result := r.db.Where("telegram_id = ?", telegramID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// GetByID retrieves a user by primary key
func (r *userRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	var user domain.User
	result := r.db.Where("id = ?", id).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// Create persists a new user
func (r *userRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

// Save persists changes to an existing user
func (r *userRepository) Save(user *domain.User) error {
	return r.db.Save(user).Error
}
