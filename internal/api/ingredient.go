package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// IngredientHandler serves the read-only ingredient reference data.
type IngredientHandler struct {
	db *gorm.DB
}

// NewIngredientHandler creates a new IngredientHandler instance
func NewIngredientHandler(db *gorm.DB) *IngredientHandler {
	return &IngredientHandler{db: db}
}

// ListIngredients supports prefix search with ?name= so the frontend can
// autocomplete while the user types.
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Order("name ASC")
	if name := c.Query("name"); name != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(name))+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to fetch ingredients"})
		return
	}

	out := make([]IngredientResponse, 0, len(ingredients))
	for i := range ingredients {
		out = append(out, NewIngredientResponse(&ingredients[i]))
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": out})
}

// escapeLike neutralizes LIKE metacharacters so a literal % or _ in the
// search term only matches itself.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	var ingredient models.Ingredient
	err := h.db.WithContext(c.Request.Context()).First(&ingredient, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"errors": "ingredient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to fetch ingredient"})
		return
	}
	c.JSON(http.StatusOK, NewIngredientResponse(&ingredient))
}
