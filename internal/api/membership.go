package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

// MembershipHandler serves the favorite and shopping-cart toggles.
type MembershipHandler struct {
	memberships *service.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler instance
func NewMembershipHandler(memberships *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{memberships: memberships}
}

func (h *MembershipHandler) Favorite(c *gin.Context) {
	h.add(c, models.MembershipFavorite)
}

func (h *MembershipHandler) Unfavorite(c *gin.Context) {
	h.remove(c, models.MembershipFavorite)
}

func (h *MembershipHandler) AddToCart(c *gin.Context) {
	h.add(c, models.MembershipShoppingCart)
}

func (h *MembershipHandler) RemoveFromCart(c *gin.Context) {
	h.remove(c, models.MembershipShoppingCart)
}

func (h *MembershipHandler) add(c *gin.Context, kind models.MembershipKind) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	recipe, err := h.memberships.Add(c.Request.Context(), userID, recipeID, kind)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBriefRecipeResponse(recipe))
}

func (h *MembershipHandler) remove(c *gin.Context, kind models.MembershipKind) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	if err := h.memberships.Remove(c.Request.Context(), userID, recipeID, kind); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
