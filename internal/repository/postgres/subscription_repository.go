package postgres

import (
	"errors"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// subscriptionRepository implements domain.SubscriptionRepository
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a subscription repository bound to a session.
func NewSubscriptionRepository(db *gorm.DB) domain.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetByID retrieves a subscription by primary key
func (r *subscriptionRepository) GetByID(id uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	result := r.db.Preload("Tags").Where("id = ?", id).First(&sub)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, result.Error
	}
	return &sub, nil
}

// Create persists a new subscription
func (r *subscriptionRepository) Create(sub *domain.Subscription) error {
	return r.db.Create(sub).Error
}

// Save persists changes to an existing subscription
func (r *subscriptionRepository) Save(sub *domain.Subscription) error {
	return r.db.Save(sub).Error
}

// AttachTag associates a tag with a subscription. Re-attaching an
// already associated tag is a no-op.
func (r *subscriptionRepository) AttachTag(sub *domain.Subscription, tag *domain.Tag) error {
	for _, existing := range sub.Tags {
		if existing.ID == tag.ID {
			return nil
		}
	}
	return r.db.Model(sub).Association("Tags").Append(tag)
}

// ListActive returns every ACTIVE subscription joined with its owner's
// telegram id, already detached from the session.
func (r *subscriptionRepository) ListActive() ([]domain.ActiveSubscription, error) {
	var rows []domain.ActiveSubscription
	result := r.db.Model(&domain.Subscription{}).
		Select("subscriptions.id, subscriptions.query_text, users.telegram_id AS user_telegram_id").
		Joins("JOIN users ON users.id = subscriptions.user_id").
		Where("subscriptions.status = ?", domain.StatusActive).
		Order("subscriptions.created_at").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}
