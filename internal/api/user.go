package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

// UserHandler serves registration, login, profiles and subscriptions.
type UserHandler struct {
	db      *gorm.DB
	auth    *service.AuthService
	follows *service.FollowService
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(db *gorm.DB, auth *service.AuthService, follows *service.FollowService) *UserHandler {
	return &UserHandler{db: db, auth: auth, follows: follows}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	token, err := h.auth.Register(c.Request.Context(), req.Email, req.Username, req.FirstName, req.LastName, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *UserHandler) Logout(c *gin.Context) {
	token, _ := c.Get("token")
	tokenStr, _ := token.(string)

	if err := h.auth.Logout(c.Request.Context(), tokenStr); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Me(c *gin.Context) {
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

	c.JSON(http.StatusOK, NewUserResponse(user, false))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid user id"})
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// is_subscribed is false for anonymous readers.
	var subscribed bool
	if viewerID, ok := currentUserID(c); ok {
		if subscribed, err = h.follows.IsSubscribed(c.Request.Context(), viewerID, user.ID); err != nil {
			handleServiceError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, NewUserResponse(user, subscribed))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid user id"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	author, err := h.follows.Subscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp, err := h.subscriptionResponse(c, author)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid user id"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	if err := h.follows.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	authors, err := h.follows.Subscriptions(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	out := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		resp, err := h.subscriptionResponse(c, &authors[i])
		if err != nil {
			handleServiceError(c, err)
			return
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

// subscriptionResponse renders an author with their recipe previews.
func (h *UserHandler) subscriptionResponse(c *gin.Context, author *models.User) (SubscriptionResponse, error) {
	var recipes []models.Recipe
	if err := h.db.WithContext(c.Request.Context()).
		Where("author_id = ?", author.ID).
		Order("created_at DESC").
		Find(&recipes).Error; err != nil {
		return SubscriptionResponse{}, err
	}

	resp := SubscriptionResponse{
		UserResponse: NewUserResponse(author, true),
		Recipes:      make([]BriefRecipeResponse, 0, len(recipes)),
		RecipesCount: len(recipes),
	}
	for i := range recipes {
		resp.Recipes = append(resp.Recipes, NewBriefRecipeResponse(&recipes[i]))
	}
	return resp, nil
}
