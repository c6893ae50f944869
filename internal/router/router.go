package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Users       *api.UserHandler
	Recipes     *api.RecipeHandler
	Memberships *api.MembershipHandler
	Tags        *api.TagHandler
	Ingredients *api.IngredientHandler
}

// SetupRouter configures the application routes. Reference data and recipe
// reads are public (with optional auth for the membership flags); every
// mutation requires a token. When a rate limiter is provided it guards the
// mutation routes.
func SetupRouter(h Handlers, validator middleware.TokenValidator, limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Users.Register)
		auth.POST("/login", h.Users.Login)
		auth.POST("/logout", middleware.AuthMiddleware(validator), h.Users.Logout)
	}

	// Public reads with an optional principal for the per-user flags.
	public := v1.Group("")
	public.Use(middleware.OptionalAuthMiddleware(validator))
	{
		public.GET("/tags", h.Tags.ListTags)
		public.GET("/tags/:id", h.Tags.GetTag)
		public.GET("/ingredients", h.Ingredients.ListIngredients)
		public.GET("/ingredients/:id", h.Ingredients.GetIngredient)
		public.GET("/recipes", h.Recipes.ListRecipes)
		public.GET("/recipes/:id", h.Recipes.GetRecipe)
		public.GET("/users/:id", h.Users.GetUser)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	if limiter != nil {
		protected.Use(limiter.Middleware())
	}
	{
		protected.GET("/users/me", h.Users.Me)
		protected.GET("/users/subscriptions", h.Users.Subscriptions)
		protected.POST("/users/:id/subscribe", h.Users.Subscribe)
		protected.DELETE("/users/:id/subscribe", h.Users.Unsubscribe)

		protected.POST("/recipes", h.Recipes.CreateRecipe)
		protected.PATCH("/recipes/:id", h.Recipes.UpdateRecipe)
		protected.DELETE("/recipes/:id", h.Recipes.DeleteRecipe)
		protected.POST("/recipes/:id/image", h.Recipes.UploadRecipeImage)

		protected.POST("/recipes/:id/favorite", h.Memberships.Favorite)
		protected.DELETE("/recipes/:id/favorite", h.Memberships.Unfavorite)
		protected.POST("/recipes/:id/shopping_cart", h.Memberships.AddToCart)
		protected.DELETE("/recipes/:id/shopping_cart", h.Memberships.RemoveFromCart)
		protected.GET("/recipes/download_shopping_cart", h.Recipes.DownloadShoppingCart)
	}

	return router
}
