package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

// testAPI wires the full handler stack over an in-memory database. The
// routes mirror the production router; they are mounted here directly to
// keep the test package free of an import cycle with the router package.
type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)

	auth := service.NewAuthService(db, nil, "test-secret")
	recipes := service.NewRecipeService(db)
	memberships := service.NewMembershipService(db)
	follows := service.NewFollowService(db)
	shopping := service.NewShoppingListService(db)

	users := NewUserHandler(db, auth, follows)
	recipeHandler := NewRecipeHandler(recipes, memberships, follows, shopping, auth, nil)
	membershipHandler := NewMembershipHandler(memberships)
	tags := NewTagHandler(db)
	ingredients := NewIngredientHandler(db)

	router := gin.New()
	v1 := router.Group("/api/v1")

	v1.POST("/auth/register", users.Register)
	v1.POST("/auth/login", users.Login)
	v1.POST("/auth/logout", middleware.AuthMiddleware(auth), users.Logout)

	public := v1.Group("")
	public.Use(middleware.OptionalAuthMiddleware(auth))
	{
		public.GET("/tags", tags.ListTags)
		public.GET("/ingredients", ingredients.ListIngredients)
		public.GET("/recipes", recipeHandler.ListRecipes)
		public.GET("/recipes/:id", recipeHandler.GetRecipe)
		public.GET("/users/:id", users.GetUser)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(auth))
	{
		protected.GET("/users/me", users.Me)
		protected.GET("/users/subscriptions", users.Subscriptions)
		protected.POST("/users/:id/subscribe", users.Subscribe)
		protected.DELETE("/users/:id/subscribe", users.Unsubscribe)

		protected.POST("/recipes", recipeHandler.CreateRecipe)
		protected.PATCH("/recipes/:id", recipeHandler.UpdateRecipe)
		protected.DELETE("/recipes/:id", recipeHandler.DeleteRecipe)

		protected.POST("/recipes/:id/favorite", membershipHandler.Favorite)
		protected.DELETE("/recipes/:id/favorite", membershipHandler.Unfavorite)
		protected.POST("/recipes/:id/shopping_cart", membershipHandler.AddToCart)
		protected.DELETE("/recipes/:id/shopping_cart", membershipHandler.RemoveFromCart)
		protected.GET("/recipes/download_shopping_cart", recipeHandler.DownloadShoppingCart)
	}

	return &testAPI{router: router, db: db, auth: auth}
}

// register creates an account through the API and returns its token.
func (a *testAPI) register(t *testing.T, username string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": username,
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// do performs a request with an optional bearer token and JSON body.
func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}
