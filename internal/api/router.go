package routes

import (
	"context"
	"time"

	v1 "github.com/farahadel/connectly/internal/api/v1"
	"github.com/farahadel/connectly/internal/auth"
	"github.com/farahadel/connectly/internal/config"
	"github.com/farahadel/connectly/internal/realtime"
	"github.com/farahadel/connectly/pkg/logger"
	storage "github.com/farahadel/connectly/pkg/redis"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func NewRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, db *gorm.DB, log *logger.Logger, rclient *storage.RedisClient) {
	app.Use(
		logger.SetupLogger(log),
		recover.New(),
		cors.New(
			cors.Config{
				AllowOrigins:     cfg.AllowOrigins,
				AllowCredentials: true,
				AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			},
		),
		compress.New(
			compress.Config{
				Level: compress.LevelBestCompression,
			},
		),
		limiter.New(
			limiter.Config{
				Expiration: 1 * time.Minute,
				Max:        120,
				KeyGenerator: func(c *fiber.Ctx) string {
					return c.IP()
				},
			},
		),
	)
	app.Use(log.Middleware())

	v1.DB = db
	v1.Redis = rclient
	v1.Logger = log

	api := app.Group("/api/v1")

	api.Get("/posts", v1.ListPosts)
	api.Get("/posts/:postId", v1.GetPost)
	api.Get("/comments/:postId", v1.ListComments)

	protected := api.Use(auth.RequireAuth())
	protected.Post("/posts", v1.CreatePost)
	protected.Post("/reactions/:postId", v1.UpsertReaction)
	protected.Delete("/reactions/:postId", v1.RemoveReaction)
	protected.Post("/comments/:postId", v1.CreateComment)
	protected.Patch("/comments/:commentId", v1.UpdateComment)
	protected.Delete("/comments/:commentId", v1.DeleteComment)

	gateway := realtime.NewGateway(db, rclient, log)
	app.Use("/ws", realtime.Upgrade)
	app.Get("/ws", gateway.Handler())

	go func() {
		<-ctx.Done()
		rclient.Close(log)
		log.Close()
	}()
}
