package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/models"
)

// Write shapes. These are distinct from the read shapes below on purpose:
// a recipe is written as ingredient IDs with amounts and tag IDs, but read
// back fully resolved.

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type IngredientAmountRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Text        string                    `json:"text"`
	Image       string                    `json:"image"`
	CookingTime int                       `json:"cooking_time"`
	Ingredients []IngredientAmountRequest `json:"ingredients"`
	Tags        []uuid.UUID               `json:"tags"`
}

// Read shapes.

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

type IngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// BriefRecipeResponse is the minimal projection returned from membership
// mutations and subscription previews.
type BriefRecipeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	CreatedAt        time.Time                  `json:"created_at"`
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []BriefRecipeResponse `json:"recipes"`
	RecipesCount int                   `json:"recipes_count"`
}

// Mapping functions.

func NewUserResponse(u *models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

func NewTagResponse(t *models.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func NewIngredientResponse(i *models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func NewBriefRecipeResponse(r *models.Recipe) BriefRecipeResponse {
	return BriefRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

func NewRecipeResponse(r *models.Recipe, favorited, inCart, authorSubscribed bool) RecipeResponse {
	resp := RecipeResponse{
		ID:               r.ID,
		Tags:             make([]TagResponse, 0, len(r.Tags)),
		Ingredients:      make([]RecipeIngredientResponse, 0, len(r.Ingredients)),
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            r.ImageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		CreatedAt:        r.CreatedAt,
	}
	if r.Author != nil {
		resp.Author = NewUserResponse(r.Author, authorSubscribed)
	}
	for i := range r.Tags {
		resp.Tags = append(resp.Tags, NewTagResponse(&r.Tags[i]))
	}
	for i := range r.Ingredients {
		line := &r.Ingredients[i]
		rir := RecipeIngredientResponse{ID: line.IngredientID, Amount: line.Amount}
		if line.Ingredient != nil {
			rir.Name = line.Ingredient.Name
			rir.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		resp.Ingredients = append(resp.Ingredients, rir)
	}
	return resp
}
