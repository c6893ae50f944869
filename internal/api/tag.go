package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// TagHandler serves the read-only tag reference data.
type TagHandler struct {
	db *gorm.DB
}

// NewTagHandler creates a new TagHandler instance
func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	var tags []models.Tag
	if err := h.db.WithContext(c.Request.Context()).Order("name ASC").Find(&tags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to fetch tags"})
		return
	}

	out := make([]TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, NewTagResponse(&tags[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tags": out})
}

func (h *TagHandler) GetTag(c *gin.Context) {
	var tag models.Tag
	err := h.db.WithContext(c.Request.Context()).First(&tag, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"errors": "tag not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to fetch tag"})
		return
	}
	c.JSON(http.StatusOK, NewTagResponse(&tag))
}
