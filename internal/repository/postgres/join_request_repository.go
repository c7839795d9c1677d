package postgres

import (
	"errors"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// joinRequestRepository implements domain.JoinRequestRepository, the
// typed job queue backing the queue processor.
type joinRequestRepository struct {
	db *gorm.DB
}

// NewJoinRequestRepository creates a join request repository bound to a session.
func NewJoinRequestRepository(db *gorm.DB) domain.JoinRequestRepository {
	return &joinRequestRepository{db: db}
}

// Enqueue creates a PENDING request for the identifier. If a PENDING or
// SUCCESS request for the same identifier already exists it is returned
// instead and nothing is created; only a FAILED request may be
// resubmitted.
func (r *joinRequestRepository) Enqueue(identifier domain.Identifier, tags []string, userID uuid.UUID) (*domain.JoinRequest, bool, error) {
	var existing domain.JoinRequest
	result := r.db.
		Where("identifier = ? AND status IN ?", string(identifier), []domain.JoinRequestStatus{domain.JoinPending, domain.JoinSuccess}).
		First(&existing)
	if result.Error == nil {
		return &existing, false, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, false, result.Error
	}

	req := &domain.JoinRequest{
		Identifier:    string(identifier),
		Tags:          pq.StringArray(tags),
		RequestedByID: userID,
		Status:        domain.JoinPending,
	}
	if err := r.db.Create(req).Error; err != nil {
		return nil, false, err
	}
	return req, true, nil
}

// ClaimNext returns the oldest PENDING request, FIFO by creation time,
// or nil when the queue is idle. No lease is taken: a single active
// worker is assumed.
func (r *joinRequestRepository) ClaimNext() (*domain.JoinRequest, error) {
	var req domain.JoinRequest
	result := r.db.
		Where("status = ?", domain.JoinPending).
		Order("created_at").
		First(&req)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &req, nil
}

// Complete transitions a PENDING request to SUCCESS
func (r *joinRequestRepository) Complete(id uuid.UUID) error {
	return r.transition(id, domain.JoinSuccess)
}

// Fail transitions a PENDING request to FAILED
func (r *joinRequestRepository) Fail(id uuid.UUID) error {
	return r.transition(id, domain.JoinFailed)
}

// transition moves a request out of PENDING. SUCCESS and FAILED are
// terminal, so the update is guarded on the current status.
func (r *joinRequestRepository) transition(id uuid.UUID, to domain.JoinRequestStatus) error {
	result := r.db.Model(&domain.JoinRequest{}).
		Where("id = ? AND status = ?", id, domain.JoinPending).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var req domain.JoinRequest
		if err := r.db.Where("id = ?", id).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrJoinRequestNotFound
			}
			return err
		}
		return domain.ErrJoinRequestTerminal
	}
	return nil
}
