package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kalviumcommunity/rentels-api/internal/auth"
	"github.com/kalviumcommunity/rentels-api/internal/config"
	"github.com/kalviumcommunity/rentels-api/internal/database"
	"github.com/kalviumcommunity/rentels-api/internal/handler"
	"github.com/kalviumcommunity/rentels-api/internal/middleware"
	"github.com/kalviumcommunity/rentels-api/internal/repository"
	"github.com/kalviumcommunity/rentels-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	codec := auth.NewCodec(
		cfg.AccessSecret(), cfg.RefreshSecret(),
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
	)

	// The demo verifier is only constructed outside production; prod builds
	// wire the codec directly and the sentinel comparison is unreachable.
	var verifier auth.TokenVerifier = codec
	if !cfg.IsProd() {
		verifier = auth.DemoVerifier{Next: codec}
		log.Printf("demo token verifier enabled (env=%s)", cfg.Env)
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, sessions, codec)
	usersHandler := handler.NewUsersHandler(users)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, auth throttle disabled")
	}
	throttle := middleware.NewAuthThrottle(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.Pre(middleware.Edge(verifier, middleware.DefaultEdgeConfig(cfg.IsProd())))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, usersHandler, verifier, throttle)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
