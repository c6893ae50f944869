package testhelpers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
)

// SetupTestDB opens a fresh in-memory SQLite database for a test. The shared
// cache keeps every pooled connection on the same database, and
// TranslateError (set by AutoMigrate's gorm config here) makes unique
// constraint violations come back as gorm.ErrDuplicatedKey like Postgres.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestUser inserts a user with a unique email and username.
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    username,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestIngredient inserts reference data.
func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// CreateTestTag inserts reference data with a slug-derived unique color.
func CreateTestTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		Name:  name,
		Color: "#" + uuid.NewString()[:6],
		Slug:  slug,
	}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// IngredientLine pairs an ingredient with an amount for recipe fixtures.
type IngredientLine struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateTestRecipe inserts a recipe with the given ingredient lines and a
// single tag.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines ...IngredientLine) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Name:        name,
		Text:        "test recipe",
		CookingTime: 10,
		AuthorID:    author.ID,
	}
	require.NoError(t, db.Create(recipe).Error)

	for _, line := range lines {
		require.NoError(t, db.Create(&models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: line.Ingredient.ID,
			Amount:       line.Amount,
		}).Error)
	}
	return recipe
}
