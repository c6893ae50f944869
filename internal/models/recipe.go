package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Recipe struct {
	ID          uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
	Name        string          `gorm:"size:256;not null" json:"name"`
	Text        string          `gorm:"type:text" json:"text"`
	ImageURL    string          `gorm:"size:255" json:"image_url"`
	CookingTime int             `gorm:"not null" json:"cooking_time"`
	AuthorID    uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Embedding   pgvector.Vector `gorm:"type:vector(3)" json:"-"`

	Author      *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"tags,omitempty"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	// A zero-value vector serializes as "[]", which cannot be scanned back.
	if r.Embedding.Slice() == nil {
		r.Embedding = pgvector.NewVector(make([]float32, 3))
	}
	return nil
}

// RecipeIngredient is the recipe/ingredient join row carrying the quantity.
// The whole set is replaced inside the recipe write transaction, never
// patched row by row.
type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID     uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       int       `gorm:"not null" json:"amount"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
