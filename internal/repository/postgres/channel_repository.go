package postgres

import (
	"errors"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"gorm.io/gorm"
)

// channelRepository implements domain.ChannelRepository
type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository creates a channel repository bound to a session.
func NewChannelRepository(db *gorm.DB) domain.ChannelRepository {
	return &channelRepository{db: db}
}

// GetByTelegramID retrieves a channel with its tags preloaded
func (r *channelRepository) GetByTelegramID(telegramID int64) (*domain.Channel, error) {
	var channel domain.Channel
	result := r.db.Preload("Tags").Where("telegram_id = ?", telegramID).First(&channel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrChannelNotFound
		}
		return nil, result.Error
	}
	return &channel, nil
}

// Create persists a new channel
func (r *channelRepository) Create(channel *domain.Channel) error {
	return r.db.Create(channel).Error
}

// Save persists changes to an existing channel
func (r *channelRepository) Save(channel *domain.Channel) error {
	return r.db.Save(channel).Error
}

// AttachTag associates a tag with a channel. Re-attaching an already
// associated tag is a no-op.
func (r *channelRepository) AttachTag(channel *domain.Channel, tag *domain.Tag) error {
	for _, existing := range channel.Tags {
		if existing.ID == tag.ID {
			return nil
		}
	}
	if err := r.db.Model(channel).Association("Tags").Append(tag); err != nil {
		return err
	}
	return nil
}

// Delete hard-deletes a channel row. ON DELETE SET NULL on messages and
// ON DELETE CASCADE on channel_tags do the rest.
func (r *channelRepository) Delete(channel *domain.Channel) error {
	return r.db.Delete(channel).Error
}
