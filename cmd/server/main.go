package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dorhakim100/Sell-It-Backend/internal/api"
	"github.com/dorhakim100/Sell-It-Backend/internal/auth"
	"github.com/dorhakim100/Sell-It-Backend/internal/chat"
	"github.com/dorhakim100/Sell-It-Backend/internal/config"
	"github.com/dorhakim100/Sell-It-Backend/internal/db"
	"github.com/dorhakim100/Sell-It-Backend/internal/item"
	"github.com/dorhakim100/Sell-It-Backend/internal/logger"
	"github.com/dorhakim100/Sell-It-Backend/internal/notify"
	"github.com/dorhakim100/Sell-It-Backend/internal/user"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(logger.Config{Development: cfg.Server.Development})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zlog.Sync()

	gateway := db.NewGateway(cfg.Mongo.URI, cfg.Mongo.Database)
	defer func() { _ = gateway.Close(context.Background()) }()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	users := user.NewRepository(gateway, zlog)
	items := item.NewRepository(gateway, zlog)
	chats := chat.NewRepository(gateway, zlog)
	dispatcher := notify.NewDispatcher(cfg.Expo.AccessToken, zlog)
	chatSvc := chat.NewService(chats, users, dispatcher, zlog)
	authSvc := auth.NewService(users, cfg.JWT.Secret, cfg.TokenExpiry, zlog)

	app := api.NewServer(api.Deps{
		Auth:  authSvc,
		Chats: chatSvc,
		Users: users,
		Items: items,
		Redis: rdb,
		Log:   zlog,
	})

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zlog.Fatalw("server listen failed", "err", err)
		}
	}()
	zlog.Infow("server started", "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	zlog.Info("server stopped")
}
