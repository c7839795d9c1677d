package postgres

import (
	"github.com/dipherent1/tgwrapper/internal/domain"
	"gorm.io/gorm"
)

// messageRepository implements domain.MessageRepository
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a message repository bound to a session.
func NewMessageRepository(db *gorm.DB) domain.MessageRepository {
	return &messageRepository{db: db}
}

// Create persists a new message
func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}
