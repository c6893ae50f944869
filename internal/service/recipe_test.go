package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestCreateRecipe(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "alice")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	eggs := testhelpers.CreateTestIngredient(t, db, "eggs", "pcs")
	breakfast := testhelpers.CreateTestTag(t, db, "Breakfast", "breakfast")

	recipe, err := svc.Create(ctx, author.ID, &RecipeInput{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Ingredients: []IngredientAmount{
			{IngredientID: flour.ID, Amount: 200},
			{IngredientID: eggs.ID, Amount: 2},
		},
		TagIDs: []uuid.UUID{breakfast.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "pancakes", recipe.Name)
	assert.Equal(t, author.ID, recipe.AuthorID)
	require.Len(t, recipe.Ingredients, 2)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "breakfast", recipe.Tags[0].Slug)
}

func TestCreateRecipeDuplicateIngredient(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)

	author := testhelpers.CreateTestUser(t, db, "alice")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	tag := testhelpers.CreateTestTag(t, db, "Lunch", "lunch")

	_, err := svc.Create(context.Background(), author.ID, &RecipeInput{
		Name:        "bread",
		Text:        "bake",
		CookingTime: 60,
		Ingredients: []IngredientAmount{
			{IngredientID: flour.ID, Amount: 100},
			{IngredientID: flour.ID, Amount: 200},
		},
		TagIDs: []uuid.UUID{tag.ID},
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "ingredients")

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.EqualValues(t, 0, count, "a rejected write must leave nothing behind")
}

func TestCreateRecipeCollectsAllFieldErrors(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)

	author := testhelpers.CreateTestUser(t, db, "alice")

	_, err := svc.Create(context.Background(), author.ID, &RecipeInput{
		Name:        "empty",
		Text:        "nothing",
		CookingTime: 0,
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "ingredients")
	assert.Contains(t, ve.Fields, "tags")
	assert.Contains(t, ve.Fields, "cooking_time")
}

func TestCreateRecipeZeroAmount(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)

	author := testhelpers.CreateTestUser(t, db, "alice")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	tag := testhelpers.CreateTestTag(t, db, "Lunch", "lunch")

	_, err := svc.Create(context.Background(), author.ID, &RecipeInput{
		Name:        "bread",
		Text:        "bake",
		CookingTime: 60,
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 0}},
		TagIDs:      []uuid.UUID{tag.ID},
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "amount")
}

func TestCreateRecipeUnknownReferences(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)

	author := testhelpers.CreateTestUser(t, db, "alice")

	_, err := svc.Create(context.Background(), author.ID, &RecipeInput{
		Name:        "ghost",
		Text:        "?",
		CookingTime: 5,
		Ingredients: []IngredientAmount{{IngredientID: uuid.New(), Amount: 1}},
		TagIDs:      []uuid.UUID{uuid.New()},
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "ingredients")
	assert.Contains(t, ve.Fields, "tags")
}

func TestUpdateRecipeReplacesSets(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "alice")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	eggs := testhelpers.CreateTestIngredient(t, db, "eggs", "pcs")
	milk := testhelpers.CreateTestIngredient(t, db, "milk", "ml")
	lunch := testhelpers.CreateTestTag(t, db, "Lunch", "lunch")
	dinner := testhelpers.CreateTestTag(t, db, "Dinner", "dinner")

	recipe, err := svc.Create(ctx, author.ID, &RecipeInput{
		Name:        "pancakes",
		Text:        "v1",
		CookingTime: 20,
		Ingredients: []IngredientAmount{
			{IngredientID: flour.ID, Amount: 200},
			{IngredientID: eggs.ID, Amount: 2},
		},
		TagIDs: []uuid.UUID{lunch.ID},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, author.ID, recipe.ID, &RecipeInput{
		Name:        "crepes",
		Text:        "v2",
		CookingTime: 15,
		Ingredients: []IngredientAmount{{IngredientID: milk.ID, Amount: 500}},
		TagIDs:      []uuid.UUID{dinner.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "crepes", updated.Name)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, milk.ID, updated.Ingredients[0].IngredientID)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "dinner", updated.Tags[0].Slug)

	// No orphaned lines from the old set.
	var count int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateRecipeRejectedLeavesOldState(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "alice")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	lunch := testhelpers.CreateTestTag(t, db, "Lunch", "lunch")

	recipe, err := svc.Create(ctx, author.ID, &RecipeInput{
		Name:        "bread",
		Text:        "v1",
		CookingTime: 60,
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 300}},
		TagIDs:      []uuid.UUID{lunch.ID},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, author.ID, recipe.ID, &RecipeInput{
		Name:        "bad",
		Text:        "v2",
		CookingTime: 0,
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 300}},
		TagIDs:      []uuid.UUID{lunch.ID},
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	current, err := svc.Get(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "bread", current.Name)
	require.Len(t, current.Ingredients, 1)
}

func TestUpdateRecipeByNonAuthor(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "alice")
	intruder := testhelpers.CreateTestUser(t, db, "mallory")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	lunch := testhelpers.CreateTestTag(t, db, "Lunch", "lunch")

	in := &RecipeInput{
		Name:        "bread",
		Text:        "bake",
		CookingTime: 60,
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 300}},
		TagIDs:      []uuid.UUID{lunch.ID},
	}
	recipe, err := svc.Create(ctx, author.ID, in)
	require.NoError(t, err)

	_, err = svc.Update(ctx, intruder.ID, recipe.ID, in)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(ctx, intruder.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteRecipe(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "alice")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	lunch := testhelpers.CreateTestTag(t, db, "Lunch", "lunch")

	recipe, err := svc.Create(ctx, author.ID, &RecipeInput{
		Name:        "bread",
		Text:        "bake",
		CookingTime: 60,
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 300}},
		TagIDs:      []uuid.UUID{lunch.ID},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, author.ID, recipe.ID))

	_, err = svc.Get(ctx, recipe.ID)
	assert.True(t, errors.Is(err, ErrRecipeNotFound))
}

func TestListRecipesFilters(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)
	memberships := NewMembershipService(db)
	ctx := context.Background()

	alice := testhelpers.CreateTestUser(t, db, "alice")
	bob := testhelpers.CreateTestUser(t, db, "bob")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	lunch := testhelpers.CreateTestTag(t, db, "Lunch", "lunch")
	dinner := testhelpers.CreateTestTag(t, db, "Dinner", "dinner")

	mk := func(author *models.User, name string, tagID uuid.UUID) *models.Recipe {
		r, err := svc.Create(ctx, author.ID, &RecipeInput{
			Name:        name,
			Text:        "text",
			CookingTime: 10,
			Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 100}},
			TagIDs:      []uuid.UUID{tagID},
		})
		require.NoError(t, err)
		return r
	}

	soup := mk(alice, "soup", lunch.ID)
	mk(alice, "stew", dinner.ID)
	bread := mk(bob, "bread", lunch.ID)

	byAuthor, err := svc.List(ctx, RecipeListFilter{AuthorID: &bob.ID})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, bread.ID, byAuthor[0].ID)

	byTag, err := svc.List(ctx, RecipeListFilter{TagSlugs: []string{"lunch"}})
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	_, err = memberships.Add(ctx, alice.ID, soup.ID, models.MembershipFavorite)
	require.NoError(t, err)

	favorites, err := svc.List(ctx, RecipeListFilter{FavoritedBy: &alice.ID})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, soup.ID, favorites[0].ID)

	byQuery, err := svc.List(ctx, RecipeListFilter{Query: "bre"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, bread.ID, byQuery[0].ID)
}
