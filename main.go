package main

import (
	"context"
	"log/slog"
	"time"

	"buildtactical/config"
	"buildtactical/database"
	routes "buildtactical/internal/app/http"
	"buildtactical/internal/infra/logging"
	"buildtactical/internal/infra/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadEnv()
	slog.SetDefault(logging.NewLogger(config.APP_ENV))
	database.InitDB()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var store *storage.Client
	if config.S3_BUCKET != "" {
		s, err := storage.New(context.Background())
		if err != nil {
			slog.Error("s3 client init failed, file uploads disabled", "error", err)
		} else {
			store = s
		}
	} else {
		slog.Warn("S3_BUCKET not set, file uploads disabled")
	}

	routes.RegisterRoutes(r, store)

	if err := r.Run(":" + config.PORT); err != nil {
		slog.Error("server exited", "error", err)
	}
}
