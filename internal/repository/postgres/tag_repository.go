package postgres

import (
	"errors"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"gorm.io/gorm"
)

// tagRepository implements domain.TagRepository
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a tag repository bound to a session.
func NewTagRepository(db *gorm.DB) domain.TagRepository {
	return &tagRepository{db: db}
}

// GetByName retrieves a tag by its unique name
func (r *tagRepository) GetByName(name string) (*domain.Tag, error) {
	var tag domain.Tag
	result := r.db.Where("name = ?", name).First(&tag)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTagNotFound
		}
		return nil, result.Error
	}
	return &tag, nil
}

// Create persists a new tag
func (r *tagRepository) Create(tag *domain.Tag) error {
	return r.db.Create(tag).Error
}

// Save persists changes to an existing tag
func (r *tagRepository) Save(tag *domain.Tag) error {
	return r.db.Save(tag).Error
}
