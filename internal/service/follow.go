package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// FollowService manages user-to-author subscriptions.
type FollowService struct {
	db *gorm.DB
}

// NewFollowService creates a new FollowService instance
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Subscribe follows an author. Self-follow is rejected before touching the
// store; a duplicate subscribe loses to the unique index and comes back as
// ErrAlreadyExists.
func (s *FollowService) Subscribe(ctx context.Context, userID, authorID uuid.UUID) (*models.User, error) {
	if userID == authorID {
		return nil, ErrSelfFollow
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	follow := models.Follow{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return &author, nil
}

// Unsubscribe removes a follow. Unsubscribing without a prior subscribe is
// ErrNotFound.
func (s *FollowService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsSubscribed reports whether user follows author.
func (s *FollowService) IsSubscribed(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// SubscribedSet resolves which of the given authors the user follows, for
// rendering list responses without a query per row.
func (s *FollowService) SubscribedSet(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	if len(authorIDs) == 0 {
		return set, nil
	}

	var follows []models.Follow
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Find(&follows).Error; err != nil {
		return nil, err
	}
	for _, f := range follows {
		set[f.AuthorID] = true
	}
	return set, nil
}

// Subscriptions returns the authors the user follows, newest subscription
// first, each with their recipes preloaded for the preview listing.
func (s *FollowService) Subscriptions(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	var follows []models.Follow
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&follows).Error; err != nil {
		return nil, err
	}
	if len(follows) == 0 {
		return []models.User{}, nil
	}

	ids := make([]uuid.UUID, 0, len(follows))
	for _, f := range follows {
		ids = append(ids, f.AuthorID)
	}

	var authors []models.User
	if err := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&authors).Error; err != nil {
		return nil, err
	}

	// Preserve subscription order.
	byID := make(map[uuid.UUID]models.User, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}
	ordered := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}
