package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram/backend/internal/models"
)

// IngredientAmount is one line of a recipe write payload.
type IngredientAmount struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput is the write shape for create and update. The ingredient and
// tag sets always arrive whole; a write replaces both sets, it never patches
// them.
type RecipeInput struct {
	Name        string
	Text        string
	ImageURL    string
	CookingTime int
	Ingredients []IngredientAmount
	TagIDs      []uuid.UUID
}

// RecipeListFilter narrows the recipe listing.
type RecipeListFilter struct {
	AuthorID    *uuid.UUID
	TagSlugs    []string
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Query       string
}

// RecipeService handles recipe reads and the validated, transactional
// create/update/delete path.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// validateInput applies the structural rules to a write payload. All
// violations are collected so the caller gets one field-keyed map per
// request rather than a drip of single errors.
func validateInput(in *RecipeInput) *ValidationError {
	ve := &ValidationError{}

	if len(in.Ingredients) == 0 {
		ve.add("ingredients", "at least one ingredient is required")
	}
	seenIngredients := make(map[uuid.UUID]bool, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if seenIngredients[line.IngredientID] {
			ve.add("ingredients", "ingredients must not repeat")
			break
		}
		seenIngredients[line.IngredientID] = true
	}
	for _, line := range in.Ingredients {
		if line.Amount < 1 {
			ve.add("amount", "ingredient amount must be at least 1")
			break
		}
	}

	if len(in.TagIDs) == 0 {
		ve.add("tags", "at least one tag is required")
	}
	seenTags := make(map[uuid.UUID]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if seenTags[id] {
			ve.add("tags", "tags must not repeat")
			break
		}
		seenTags[id] = true
	}

	if in.CookingTime < 1 {
		ve.add("cooking_time", "cooking time must be at least 1 minute")
	}

	return ve
}

// resolveReferences loads the referenced tags and ingredients, reporting
// unknown IDs as validation errors on the same fields.
func resolveReferences(tx *gorm.DB, in *RecipeInput, ve *ValidationError) ([]models.Tag, error) {
	var tags []models.Tag
	if len(in.TagIDs) > 0 {
		if err := tx.Where("id IN ?", in.TagIDs).Find(&tags).Error; err != nil {
			return nil, err
		}
		if len(tags) != len(in.TagIDs) {
			ve.add("tags", "tag does not exist")
		}
	}

	if len(in.Ingredients) > 0 {
		ids := make([]uuid.UUID, 0, len(in.Ingredients))
		for _, line := range in.Ingredients {
			ids = append(ids, line.IngredientID)
		}
		var count int64
		if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return nil, err
		}
		if int(count) != len(ids) {
			ve.add("ingredients", "ingredient does not exist")
		}
	}

	return tags, nil
}

// Create validates the payload and persists the recipe, its ingredient rows
// and its tag associations in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	ve := validateInput(in)

	var recipe *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveReferences(tx, in, ve)
		if err != nil {
			return err
		}
		if err := ve.orNil(); err != nil {
			return err
		}

		recipe = &models.Recipe{
			Name:        in.Name,
			Text:        in.Text,
			ImageURL:    in.ImageURL,
			CookingTime: in.CookingTime,
			AuthorID:    authorID,
			Embedding:   GenerateEmbedding(in.Name + " " + in.Text),
		}
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := writeIngredientSet(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		return tx.Model(recipe).Association("Tags").Replace(&tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe's fields, ingredient set and tag set as one
// all-or-nothing unit. Only the author may update.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}

	ve := validateInput(in)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveReferences(tx, in, ve)
		if err != nil {
			return err
		}
		if err := ve.orNil(); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
			"embedding":    GenerateEmbedding(in.Name + " " + in.Text),
		}
		if in.ImageURL != "" {
			updates["image_url"] = in.ImageURL
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}

		// Full replace of the ingredient set, not an incremental patch.
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := writeIngredientSet(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Tags").Replace(&tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipeID)
}

func writeIngredientSet(tx *gorm.DB, recipeID uuid.UUID, lines []IngredientAmount) error {
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
	}
	return tx.Create(&rows).Error
}

// Get retrieves a recipe with its author, tags and ingredient lines.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes newest first, narrowed by the filter.
func (s *RecipeService) List(ctx context.Context, filter RecipeListFilter) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC")

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs).
			Distinct("recipes.*")
	}
	if filter.FavoritedBy != nil {
		query = query.Joins(
			"JOIN memberships fav ON fav.recipe_id = recipes.id AND fav.kind = ? AND fav.user_id = ?",
			models.MembershipFavorite, *filter.FavoritedBy,
		)
	}
	if filter.InCartOf != nil {
		query = query.Joins(
			"JOIN memberships cart ON cart.recipe_id = recipes.id AND cart.kind = ? AND cart.user_id = ?",
			models.MembershipShoppingCart, *filter.InCartOf,
		)
	}

	if filter.Query != "" {
		if s.db.Dialector.Name() == "postgres" {
			vec := GenerateEmbedding(filter.Query)
			query = query.Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
			})
		} else {
			like := "%" + strings.ToLower(filter.Query) + "%"
			query = query.Where("LOWER(recipes.name) LIKE ? OR LOWER(recipes.text) LIKE ?", like, like)
		}
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// SetImageURL points the recipe at a newly stored image.
func (s *RecipeService) SetImageURL(ctx context.Context, recipeID uuid.UUID, url string) error {
	return s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		Update("image_url", url).Error
}

// Delete removes a recipe. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	if recipe.AuthorID != userID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Delete(&recipe).Error
}
