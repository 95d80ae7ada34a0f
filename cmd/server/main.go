// Entry point of the booking service.  It wires configuration, storage,
// Redis, the realtime hub and the message-queue consumer together, then
// serves the HTTP API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/cinebook/movie-booking/internal/config"
	"github.com/cinebook/movie-booking/internal/database"
	"github.com/cinebook/movie-booking/internal/handler"
	"github.com/cinebook/movie-booking/internal/ledger"
	appmw "github.com/cinebook/movie-booking/internal/middleware"
	"github.com/cinebook/movie-booking/internal/queue"
	"github.com/cinebook/movie-booking/internal/realtime"
	"github.com/cinebook/movie-booking/internal/repository"
	"github.com/cinebook/movie-booking/internal/router"
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

	// Redis is optional: without it the limiter and cache turn into
	// pass-throughs and seat events stay process-local.
	rdb := config.NewRedisClient()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(rdb)
	go hub.Run(ctx)

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	showRepo := repository.NewShowRepo(db)
	ledgerRepo := repository.NewSeatLedgerRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	cinemaRepo := repository.NewCinemaRepo(db)
	movieRepo := repository.NewMovieRepo(db)

	locks := ledger.NewLocks()
	showHandler := handler.NewShowHandler(showRepo, ledgerRepo, hub, locks)
	bookingHandler := handler.NewBookingHandler(showRepo, ledgerRepo, bookingRepo, hub, locks)
	browseHandler := handler.NewBrowseHandler(cinemaRepo, movieRepo, showRepo)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	limiter := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterBrowse(e, browseHandler, showHandler, cache)
	router.RegisterCustomer(e, showHandler, bookingHandler, cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()
	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
