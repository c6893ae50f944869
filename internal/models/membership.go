package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipKind selects which of the two per-user recipe sets a row belongs
// to. Favorites and the shopping cart share one table and one service.
type MembershipKind string

const (
	MembershipFavorite     MembershipKind = "favorite"
	MembershipShoppingCart MembershipKind = "shopping_cart"
)

// Membership is a (user, recipe, kind) row. The composite unique index is the
// concurrency-correctness mechanism: two racing adds both hit the store, one
// wins and the other gets a duplicate-key error the service reports as
// "already exists".
type Membership struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UserID    uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_membership_user_recipe_kind" json:"user_id"`
	RecipeID  uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_membership_user_recipe_kind" json:"recipe_id"`
	Kind      MembershipKind `gorm:"size:20;not null;uniqueIndex:idx_membership_user_recipe_kind" json:"kind"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (Membership) TableName() string {
	return "memberships"
}
