package routes

import (
	"github.com/gin-gonic/gin"

	"equipx_go/config"
	"equipx_go/controllers"
	"equipx_go/middleware"
	"equipx_go/store"
)

// SetupRoutes 设置路由
func SetupRoutes(r *gin.Engine, st *store.Store) {
	// 应用全局中间件
	r.Use(middleware.CORS(middleware.CORSFromEnv(config.GetEnv("CORS_ORIGINS", ""))))
	r.Use(middleware.Logger())

	authController := controllers.NewAuthController(st, config.GetJWTService())
	listingController := controllers.NewListingController(st)
	chatController := controllers.NewChatController(st)

	api := r.Group("/api")
	{
		// ====== 认证路由 ======
		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/refresh", middleware.AuthMiddleware(), authController.RefreshToken)
			auth.POST("/logout", middleware.AuthMiddleware(), authController.Logout)
		}

		// ====== 用户路由 ======
		api.GET("/users/me", middleware.AuthMiddleware(), controllers.NewUserController().Me)

		// ====== 设备发布路由 ======
		products := api.Group("/products")
		{
			products.GET("", listingController.GetListings)
			products.GET("/:id", listingController.GetListing)
			products.POST("", middleware.AuthMiddleware(), listingController.CreateListing)
			products.PUT("/:id", middleware.AuthMiddleware(), listingController.UpdateListing)
			products.PUT("/:id/status", middleware.AuthMiddleware(), listingController.UpdateListingStatus)
			products.DELETE("/:id", middleware.AuthMiddleware(), listingController.DeleteListing)
		}

		// ====== 聊天路由（轮询） ======
		chats := api.Group("/chats", middleware.AuthMiddleware())
		{
			chats.GET("", chatController.GetMessages)
			chats.POST("", chatController.SendMessage)
		}

		// ====== 搜索路由 ======
		api.GET("/search", controllers.NewSearchController(st).SearchProducts)
	}
}
