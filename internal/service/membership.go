package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// MembershipService toggles a user's favorite and shopping-cart sets. Both
// are rows in one memberships table distinguished by kind.
type MembershipService struct {
	db *gorm.DB
}

// NewMembershipService creates a new MembershipService instance
func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// Add inserts a membership row for (user, recipe, kind) and returns the
// recipe for the brief projection. A duplicate add is ErrAlreadyExists.
//
// The insert goes straight to the store instead of check-then-insert: the
// composite unique index decides races between concurrent adds, and the
// duplicate-key error is mapped here.
func (s *MembershipService) Add(ctx context.Context, userID, recipeID uuid.UUID, kind models.MembershipKind) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	m := models.Membership{
		UserID:   userID,
		RecipeID: recipeID,
		Kind:     kind,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return &recipe, nil
}

// Remove deletes the membership row for (user, recipe, kind). Removing a row
// that does not exist is ErrNotFound, not a silent no-op. The recipe lookup
// is unscoped so a membership can still be cleared after its recipe was
// soft-deleted.
func (s *MembershipService) Remove(ctx context.Context, userID, recipeID uuid.UUID, kind models.MembershipKind) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Unscoped().First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Delete(&models.Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether the membership row is present.
func (s *MembershipService) Exists(ctx context.Context, userID, recipeID uuid.UUID, kind models.MembershipKind) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Count(&count).Error
	return count > 0, err
}

// Flags resolves the favorite and cart membership of many recipes at once,
// for rendering list responses without a query per row.
func (s *MembershipService) Flags(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (favorited, inCart map[uuid.UUID]bool, err error) {
	favorited = make(map[uuid.UUID]bool)
	inCart = make(map[uuid.UUID]bool)
	if len(recipeIDs) == 0 {
		return favorited, inCart, nil
	}

	var rows []models.Membership
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	for _, m := range rows {
		switch m.Kind {
		case models.MembershipFavorite:
			favorited[m.RecipeID] = true
		case models.MembershipShoppingCart:
			inCart[m.RecipeID] = true
		}
	}
	return favorited, inCart, nil
}
