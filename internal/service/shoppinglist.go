package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// ShoppingListService aggregates the ingredients of every recipe in a user's
// cart into one deduplicated text report.
type ShoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new ShoppingListService instance
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// shoppingListRow is one aggregated line of the report.
type shoppingListRow struct {
	Name            string
	MeasurementUnit string
	Total           int
}

// BuildShoppingList renders the shopping list for everything currently in
// the user's cart. The grouping key is (ingredient name, measurement unit)
// with amounts summed across recipes, ordered by name so the output is
// reproducible. An empty cart is ErrEmptyCart; no report is generated for
// zero recipes.
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, user *models.User) (string, error) {
	// Membership rows of soft-deleted recipes do not count: a cart whose
	// recipes are all gone is an empty cart.
	var cartSize int64
	if err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Joins("JOIN recipes ON recipes.id = memberships.recipe_id AND recipes.deleted_at IS NULL").
		Where("memberships.user_id = ? AND memberships.kind = ?", user.ID, models.MembershipShoppingCart).
		Count(&cartSize).Error; err != nil {
		return "", err
	}
	if cartSize == 0 {
		return "", ErrEmptyCart
	}

	var rows []shoppingListRow
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN recipes ON recipes.id = recipe_ingredients.recipe_id").
		Joins("JOIN memberships ON memberships.recipe_id = recipe_ingredients.recipe_id").
		Where("memberships.user_id = ? AND memberships.kind = ?", user.ID, models.MembershipShoppingCart).
		Where("recipes.deleted_at IS NULL").
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").
		Scan(&rows).Error
	if err != nil {
		return "", err
	}

	return renderShoppingList(user, rows, time.Now()), nil
}

// ShoppingListFilename returns the attachment name for the report download.
func ShoppingListFilename(now time.Time) string {
	return fmt.Sprintf("%s_shopping_list.txt", now.Format("2006-01-02"))
}

func renderShoppingList(user *models.User, rows []shoppingListRow, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Ingredients to buy for: %s\n\n", user.FullName())
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format("2006-01-02"))

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("- %s (%s) - %d", row.Name, row.MeasurementUnit, row.Total))
	}
	b.WriteString(strings.Join(lines, "\n"))

	fmt.Fprintf(&b, "\n\nFoodgram (%d)", now.Year())
	return b.String()
}
