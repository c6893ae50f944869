package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

// RecipeHandler serves recipe CRUD, the shopping list download and image
// upload.
type RecipeHandler struct {
	recipes     *service.RecipeService
	memberships *service.MembershipService
	follows     *service.FollowService
	shopping    *service.ShoppingListService
	auth        *service.AuthService
	images      *service.ImageService
}

// NewRecipeHandler creates a new RecipeHandler instance. The image service
// may be nil when no object storage is configured.
func NewRecipeHandler(
	recipes *service.RecipeService,
	memberships *service.MembershipService,
	follows *service.FollowService,
	shopping *service.ShoppingListService,
	auth *service.AuthService,
	images *service.ImageService,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		memberships: memberships,
		follows:     follows,
		shopping:    shopping,
		auth:        auth,
		images:      images,
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeListFilter{Query: c.Query("q")}

	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid author id"})
			return
		}
		filter.AuthorID = &id
	}
	if tags := c.Query("tags"); tags != "" {
		filter.TagSlugs = strings.Split(tags, ",")
	}

	userID, authenticated := currentUserID(c)
	if authenticated {
		if c.Query("is_favorited") == "1" || c.Query("is_favorited") == "true" {
			filter.FavoritedBy = &userID
		}
		if c.Query("is_in_shopping_cart") == "1" || c.Query("is_in_shopping_cart") == "true" {
			filter.InCartOf = &userID
		}
	}

	recipes, err := h.recipes.List(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}
	if authenticated && len(recipes) > 0 {
		ids := make([]uuid.UUID, 0, len(recipes))
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		for i := range recipes {
			ids = append(ids, recipes[i].ID)
			authorIDs = append(authorIDs, recipes[i].AuthorID)
		}
		favorited, inCart, err = h.memberships.Flags(c.Request.Context(), userID, ids)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		subscribed, err = h.follows.SubscribedSet(c.Request.Context(), userID, authorIDs)
		if err != nil {
			handleServiceError(c, err)
			return
		}
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		out = append(out, NewRecipeResponse(r, favorited[r.ID], inCart[r.ID], subscribed[r.AuthorID]))
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var favorited, inCart, subscribed bool
	if userID, ok := currentUserID(c); ok {
		if favorited, err = h.memberships.Exists(c.Request.Context(), userID, recipe.ID, models.MembershipFavorite); err != nil {
			handleServiceError(c, err)
			return
		}
		if inCart, err = h.memberships.Exists(c.Request.Context(), userID, recipe.ID, models.MembershipShoppingCart); err != nil {
			handleServiceError(c, err)
			return
		}
		if subscribed, err = h.follows.IsSubscribed(c.Request.Context(), userID, recipe.AuthorID); err != nil {
			handleServiceError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, NewRecipeResponse(recipe, favorited, inCart, subscribed))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, recipeInput(&req))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRecipeResponse(recipe, false, false, false))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), userID, id, recipeInput(&req))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	favorited, err := h.memberships.Exists(c.Request.Context(), userID, recipe.ID, models.MembershipFavorite)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	inCart, err := h.memberships.Exists(c.Request.Context(), userID, recipe.ID, models.MembershipShoppingCart)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRecipeResponse(recipe, favorited, inCart, false))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart streams the aggregated shopping list as a text
// attachment named with the current date.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	report, err := h.shopping.BuildShoppingList(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := service.ShoppingListFilename(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

// UploadRecipeImage stores the uploaded file in S3 and points the recipe's
// image URL at it. Author-only, like every other recipe mutation.
func (h *RecipeHandler) UploadRecipeImage(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"errors": "image storage is not configured"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if recipe.AuthorID != userID {
		handleServiceError(c, service.ErrForbidden)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "failed to read image file"})
		return
	}
	defer file.Close()

	url, err := h.images.UploadRecipeImage(
		c.Request.Context(), recipe.ID,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := h.recipes.SetImageURL(c.Request.Context(), recipe.ID, url); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image": url})
}

func recipeInput(req *RecipeRequest) *service.RecipeInput {
	in := &service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    req.Image,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
	}
	for _, line := range req.Ingredients {
		in.Ingredients = append(in.Ingredients, service.IngredientAmount{
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return in
}
