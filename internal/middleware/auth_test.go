package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/foodgram/backend/internal/types"
)

type stubValidator struct {
	claims *types.TokenClaims
	err    error
}

func (v *stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	return v.claims, v.err
}

func requestWithAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	valid := &stubValidator{claims: &types.TokenClaims{UserID: userID, Username: "alice"}}

	router := gin.New()
	router.GET("/ping", AuthMiddleware(valid), func(c *gin.Context) {
		id, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})

	w := requestWithAuth(router, "Bearer sometoken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())

	w = requestWithAuth(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = requestWithAuth(router, "Token sometoken")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	rejecting := gin.New()
	rejecting.GET("/ping", AuthMiddleware(&stubValidator{err: errors.New("bad token")}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w = requestWithAuth(rejecting, "Bearer sometoken")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	valid := &stubValidator{claims: &types.TokenClaims{UserID: userID, Username: "alice"}}

	router := gin.New()
	router.GET("/ping", OptionalAuthMiddleware(valid), func(c *gin.Context) {
		if id, ok := c.Get("user_id"); ok {
			c.JSON(http.StatusOK, gin.H{"user_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": nil})
	})

	// Anonymous requests pass through without a principal.
	w := requestWithAuth(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")

	w = requestWithAuth(router, "Bearer sometoken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())

	// Invalid tokens degrade to anonymous instead of failing the request.
	broken := gin.New()
	broken.GET("/ping", OptionalAuthMiddleware(&stubValidator{err: errors.New("bad token")}), func(c *gin.Context) {
		_, ok := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	w = requestWithAuth(broken, "Bearer sometoken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")
}
