package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"phonestore/internal/cart"
	"phonestore/internal/config"
	"phonestore/internal/database"
	"phonestore/internal/handlers"
	"phonestore/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("⚠️ product index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("⚠️ cart index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}

	cartStore := cart.NewStore(db)
	guestCarts := cart.NewGuestStore()

	r := gin.Default()
	r.Static("/public", "./public")

	r.POST("/auth/register", handlers.Register(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/login", handlers.Login(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/refresh", handlers.Refresh(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/logout", handlers.Logout(db))
	r.GET("/auth/me", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.GetMe(db))

	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/featured", handlers.GetFeaturedProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))
	r.GET("/categories", handlers.GetCategories(db))

	r.POST("/assist/chat", handlers.Chat(db))

	// cart endpoints serve both guests (X-Session-Id header) and
	// logged-in users (bearer token)
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.OptionalUserAuth(config.AppEnv.JWTSecret))
	{
		cartGroup.GET("", handlers.GetCart(cartStore, guestCarts))
		cartGroup.POST("/items", handlers.AddToCart(db, cartStore, guestCarts))
		cartGroup.PUT("/items/:itemId", handlers.UpdateCartItem(cartStore, guestCarts))
		cartGroup.DELETE("/items/:itemId", handlers.RemoveFromCart(cartStore, guestCarts))
		cartGroup.DELETE("", handlers.ClearCart(cartStore, guestCarts))
	}
	r.POST("/cart/merge", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.MergeCart(cartStore, guestCarts))

	r.POST("/checkout", middleware.OptionalUserAuth(config.AppEnv.JWTSecret), handlers.Checkout(db, cartStore, guestCarts))

	orders := r.Group("/orders")
	orders.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		orders.GET("", handlers.GetOrders(db))
		orders.GET("/:id", handlers.GetOrder(db))
	}

	user := r.Group("/user")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.GET("/addresses", handlers.GetUserAddresses(db))
		user.POST("/addresses", handlers.CreateUserAddress(db))
		user.PUT("/addresses/:id", handlers.UpdateUserAddress(db))
		user.DELETE("/addresses/:id", handlers.DeleteUserAddress(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))
		admin.POST("/products/:id/image", handlers.UploadProductImage(db))

		admin.GET("/categories", handlers.GetAllCategories(db))
		admin.POST("/categories", handlers.CreateCategory(db))
		admin.PUT("/categories/:id", handlers.UpdateCategory(db))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(db))

		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))
	}

	r.Run(":" + config.AppEnv.Port)
}
