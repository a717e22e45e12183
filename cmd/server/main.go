package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/flowkick/mchat-tools/internal/booking"
	"github.com/flowkick/mchat-tools/internal/config"
	"github.com/flowkick/mchat-tools/internal/database"
	"github.com/flowkick/mchat-tools/internal/handler"
	"github.com/flowkick/mchat-tools/internal/queue"
	"github.com/flowkick/mchat-tools/internal/repository"
	"github.com/flowkick/mchat-tools/internal/router"
	"github.com/flowkick/mchat-tools/internal/verification"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: rate limiting, response caching and the
	// verification flow all degrade gracefully without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting, caching and verification disabled")
	}

	admins := repository.NewAdminRepo(db)
	tokens := repository.NewTokenRepo(db)
	tools := repository.NewToolRepo(db)
	templates := repository.NewTemplateRepo(db)
	bookings := repository.NewBookingRepo(db)
	webhooks := repository.NewWebhookRepo(db)
	users := repository.NewUserRepo(db)

	engine := booking.NewEngine(repository.NewBookingStore(db), cfg.BookingLoc)
	codes := verification.NewStore(rdb, time.Duration(cfg.VerifyTTLMin)*time.Minute)

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(admins, tokens, cfg),
		Tools:     handler.NewOwnerToolHandler(tools),
		Templates: handler.NewOwnerTemplateHandler(templates),
		Bookings:  handler.NewOwnerBookingHandler(bookings),
		Webhooks:  handler.NewOwnerWebhookHandler(webhooks),
		Public:    handler.NewBookingHandler(engine, bookings, tools),
		Verify:    handler.NewVerifyHandler(codes, users),
	}

	go func() {
		if err := queue.StartWebhookDispatcher(webhooks); err != nil {
			log.Printf("webhook dispatcher stopped: %v", err)
		}
	}()

	e := router.New(cfg, rdb, h)
	log.Printf("listening on :%s (env=%s, tz=%s)", cfg.Port, cfg.Env, cfg.BookingLoc)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
