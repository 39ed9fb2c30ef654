package router

import (
	"net/http"

	_ "github.com/3Eeeecho/go-filelabel/docs"
	"github.com/3Eeeecho/go-filelabel/internal/config"
	"github.com/3Eeeecho/go-filelabel/internal/handlers"
	"github.com/3Eeeecho/go-filelabel/internal/middlewares"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	File     *handlers.FileHandler
	Label    *handlers.LabelHandler
	Transfer *handlers.TransferHandler
}

func InitRouter(h *Handlers, cfg *config.Config) *gin.Engine {
	router := gin.Default() // 包含 Logger 和 Recovery 中间件

	// Health Check 路由
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		// 认证相关路由 (无需认证)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
		}

		// 需要认证的路由组
		authenticated := v1.Group("/")
		authenticated.Use(middlewares.AuthMiddleware(cfg))

		// 用户相关路由
		userGroup := authenticated.Group("/users")
		{
			userGroup.GET("/me", h.User.Me)
		}

		// 标签相关路由
		labelGroup := authenticated.Group("/labels")
		{
			labelGroup.POST("", h.Label.BulkCreate)
			labelGroup.PUT("", h.Label.BulkUpdate)
			labelGroup.DELETE("", h.Label.BulkDelete)
			labelGroup.GET("", h.Label.GetByIDs)
			labelGroup.GET("/mine", h.Label.Mine)
		}

		// 指派相关路由
		assignmentGroup := authenticated.Group("/assignments")
		{
			assignmentGroup.POST("", h.File.BulkAssign)
			assignmentGroup.DELETE("", h.File.BulkUnassign)
		}

		// 文件相关路由
		fileGroup := authenticated.Group("/files")
		{
			fileGroup.POST("", h.File.BulkCreate)
			fileGroup.PUT("", h.File.BulkUpdate)
			fileGroup.DELETE("", h.File.BulkDelete)
			fileGroup.GET("", h.File.GetByIDs)
			fileGroup.POST("/search", h.File.Search)
			fileGroup.POST("/:id/labels", h.File.AssignLabels)
			fileGroup.DELETE("/:id/labels", h.File.UnassignLabels)

			fileGroup.POST("/upload", h.Transfer.Upload)
			fileGroup.GET("/:id/download", h.Transfer.Download)
			fileGroup.GET("/:id/url", h.Transfer.PresignedURL)
			fileGroup.POST("/download-zip", h.Transfer.DownloadZip)
			fileGroup.POST("/suggest-labels", h.Transfer.SuggestLabels)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		xerr.Error(c, http.StatusNotFound, xerr.NotFoundCode, "Route not found")
	})

	return router
}
