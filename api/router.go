package api

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/storeit-dev/storeit/internal/auth"
	"github.com/storeit-dev/storeit/internal/cache"
	"github.com/storeit-dev/storeit/internal/config"
	"github.com/storeit-dev/storeit/pkg/controller"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func InitRouter(logger *zap.Logger, cnf *config.ServerCmdConfig, db *gorm.DB, cacher cache.Cacher, c *controller.Controller) *gin.Engine {
	r := gin.New()

	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authorized := auth.Middleware(db, cacher, cnf.JWT.Secret)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", c.Register)
			authGroup.POST("/login", c.LogIn)
			authGroup.GET("/session", authorized, c.Session)
			authGroup.POST("/logout", authorized, c.Logout)
		}
		files := api.Group("/files")
		{
			files.Use(authorized)
			files.GET("", c.ListFiles)
			files.POST("", c.UploadFile)
			files.GET(":fileID", c.GetFile)
			files.GET(":fileID/download", c.DownloadFile)
			files.PATCH(":fileID/name", c.RenameFile)
			files.PATCH(":fileID/users", c.UpdateFileUsers)
			files.DELETE(":fileID", c.DeleteFile)
		}
	}

	return r
}
