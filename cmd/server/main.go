package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ssizenet/intranet-api/internal/config"
	"github.com/ssizenet/intranet-api/internal/database"
	"github.com/ssizenet/intranet-api/internal/handler"
	"github.com/ssizenet/intranet-api/internal/queue"
	"github.com/ssizenet/intranet-api/internal/repository"
	"github.com/ssizenet/intranet-api/internal/router"
	"github.com/ssizenet/intranet-api/internal/service/queue_publisher"
	"github.com/ssizenet/intranet-api/internal/storage"
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

	rdb := config.NewRedisClient() // nil when Redis is unreachable

	blobs, err := storage.NewDiskStore(cfg.BlobDir)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	settings := repository.NewSettingRepo(db)
	rents := repository.NewRentRepo(db)
	videos := repository.NewVideoRepo(db)
	posts := repository.NewPostRepo(db)

	publisher := queue_publisher.Publisher{URL: cfg.AMQPURL}
	if cfg.AMQPURL != "" {
		go queue.StartRentConsumer(cfg.AMQPURL)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users, tokens, settings, blobs),
		Rent:    handler.NewRentHandler(rents, publisher),
		Setting: handler.NewSettingHandler(settings),
		Video:   handler.NewVideoHandler(videos),
		Post:    handler.NewPostHandler(posts, blobs),
		Health:  handler.NewHealthHandler(db),
	}, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
