package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"

	"event_ticketing/config"
	"event_ticketing/database"
	"event_ticketing/gateway"
	"event_ticketing/handler"
	"event_ticketing/leasestore"
	"event_ticketing/notify"
	"event_ticketing/router"
	"event_ticketing/service"
)

func main() {
	database.ConnectDB()

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Config("REDIS_ADDR"),
		Password: config.Config("REDIS_PASSWORD"),
	})
	store := leasestore.NewClient(rdb)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("lease store unreachable: %v", err)
	}
	cancel()

	gw, err := gateway.NewStripeGateway(config.Config("STRIPE_SECRET_KEY"), config.Config("STRIPE_CURRENCY"))
	if err != nil {
		log.Fatalf("configuring payment gateway: %v", err)
	}
	bus := notify.NewPublisher(config.Config("RABBITMQ_URL"))

	leaseTTL := time.Duration(config.ConfigInt("LEASE_TTL_SECONDS", 600)) * time.Second
	coordinator := service.NewOrderCoordinator(database.DB, store, gw, bus, config.Config("QR_HASH_SECRET"))
	locks := service.NewSeatLockManager(database.DB, store, coordinator, leaseTTL)
	guard := service.NewWebhookGuard(coordinator)

	sweepInterval := time.Duration(config.ConfigInt("REAPER_INTERVAL_SECONDS", 60)) * time.Second
	reaper := service.NewReaper(coordinator, leaseTTL, sweepInterval)
	if err := reaper.Start(); err != nil {
		log.Fatalf("starting expiry reaper: %v", err)
	}
	defer reaper.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.Config("CORS_ORIGIN"),
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, Stripe-Signature",
		AllowCredentials: true,
		MaxAge:           600,
	}))

	router.SetupRoutes(app, &router.Handlers{
		Seats:   handler.NewSeatHandler(locks),
		Orders:  handler.NewOrderHandler(locks, coordinator),
		Browse:  handler.NewBrowseHandler(database.DB),
		Webhook: handler.NewWebhookHandler(guard, config.Config("STRIPE_WEBHOOK_SECRET")),
	})

	port := config.Config("PORT")
	if port == "" {
		port = "8002"
	}
	log.Fatal(app.Listen(":" + port))
}
