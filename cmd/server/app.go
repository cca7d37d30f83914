package main

import (
	"context"

	routes "github.com/farahadel/connectly/internal/api"
	"github.com/farahadel/connectly/internal/config"
	"github.com/farahadel/connectly/internal/db"
	"github.com/farahadel/connectly/internal/models"
	"github.com/farahadel/connectly/pkg/logger"
	storage "github.com/farahadel/connectly/pkg/redis"
	"github.com/farahadel/connectly/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()

	log, err := logger.NewLogger(ctx)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	rclient, err := storage.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize Redis")
		panic(err)
	}
	defer rclient.Close(log)

	gormDB, err := db.NewDB(
		ctx,
		cfg.DSN(),
		models.RegisterModels(),
		db.WithLogger(log),
	)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize PostgreSQL database")
		panic("DB init failed")
	}
	defer db.CloseDB(log)

	app := fiber.New()
	routes.NewRoutes(ctx, app, cfg, gormDB, log, rclient)

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Server stopped")
	}
}
