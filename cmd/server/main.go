package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/config"
	"github.com/iliyamo/cabin-reservation/internal/database"
	"github.com/iliyamo/cabin-reservation/internal/engine"
	"github.com/iliyamo/cabin-reservation/internal/handler"
	"github.com/iliyamo/cabin-reservation/internal/middleware"
	"github.com/iliyamo/cabin-reservation/internal/model"
	"github.com/iliyamo/cabin-reservation/internal/queue"
	"github.com/iliyamo/cabin-reservation/internal/repository"
	"github.com/iliyamo/cabin-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Seed the first SUPER_ADMIN so a fresh install can log in.
	seedAdmin(db, cfg)

	store := repository.NewStore(db)
	eng := engine.New(store, store)

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	cabinRepo := repository.NewCabinRepo(db)
	resRepo := repository.NewReservationRepo(db)
	priceRepo := repository.NewPriceRepo(db)
	blockedRepo := repository.NewBlockedDateRepo(db)
	couponRepo := repository.NewCouponRepo(db)

	// Redis is optional: when absent, caching and rate limiting degrade
	// to pass-through middleware.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewBrowseHandler(cabinRepo),
		handler.NewBookingHandler(eng, cabinRepo),
		cacheMW, limitMW,
	)
	router.RegisterAdmin(e,
		handler.NewAdminReservationHandler(eng, resRepo, cabinRepo),
		handler.NewAdminCabinHandler(cabinRepo),
		handler.NewAdminPricingHandler(priceRepo, blockedRepo),
		handler.NewAdminCouponHandler(couponRepo),
		cfg.JWTSecret,
	)

	// Background consumer that turns reservation events into audit log
	// lines.  It reconnects forever; a dead broker never stops the API.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seedAdmin creates the initial SUPER_ADMIN account from ADMIN_EMAIL /
// ADMIN_PASSWORD when no such account exists yet.  Without these
// variables the seed is skipped.
func seedAdmin(db *sql.DB, cfg config.Config) {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return // already provisioned
	} else if err != sql.ErrNoRows {
		log.Printf("seed admin: lookup failed: %v", err)
		return
	}
	if _, err := users.Create(ctx, email, password, model.RoleSuperAdmin, cfg.BcryptCost); err != nil {
		log.Printf("seed admin: create failed: %v", err)
		return
	}
	log.Printf("seeded SUPER_ADMIN account %s", email)
}
