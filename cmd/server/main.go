package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/arfood/internal/config"
	"github.com/example/arfood/internal/database"
	"github.com/example/arfood/internal/middleware"
	"github.com/example/arfood/internal/notify"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL, cfg.IsProduction())
	store := repository.NewGormStore(db)

	app := fiber.New(fiber.Config{
		AppName:      "AR Food Backend",
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	var transports []notify.Transport
	if cfg.AMQPURL != "" {
		publisher, err := notify.DialAMQP(cfg.AMQPURL)
		if err != nil {
			log.Printf("AMQP unavailable, order events stay in-process: %v", err)
		} else {
			defer publisher.Close()
			transports = append(transports, publisher)
		}
	}

	routes.Register(app, store, cfg, notify.NewHub(), transports...)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
