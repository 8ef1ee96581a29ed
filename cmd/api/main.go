package main

import (
	"context"
	"log"

	"github.com/k1w1proplus/chat-backend/config"
	"github.com/k1w1proplus/chat-backend/internal/auth"
	"github.com/k1w1proplus/chat-backend/internal/bootstrap"
	"github.com/k1w1proplus/chat-backend/internal/media"
	"github.com/k1w1proplus/chat-backend/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN()})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	sqlDB, err := bootstrap.OpenSQLDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN()})
	if err != nil {
		log.Fatalf("database (sql): %v", err)
	}
	defer sqlDB.Close()

	if err := migrations.Migrate(sqlDB); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	app, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}

	authClient, err := auth.AuthClient(app)
	if err != nil {
		log.Fatalf("firebase auth: %v", err)
	}

	bucket, err := auth.StorageBucket(app)
	if err != nil {
		log.Fatalf("firebase storage: %v", err)
	}
	objects := media.NewGCSStore(bucket)

	r, messageStore := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "chat-backend",
		Version:     cfg.App.Version,
		AIBaseURL:   cfg.AI.BaseURL,
		AIModel:     cfg.AI.Model,
		DB:          db,
		SQLDB:       sqlDB,
		Redis:       rdb,
		AuthClient:  authClient,
		Objects:     objects,
	})

	janitor := media.NewJanitor(objects, messageStore, cfg.Media.JanitorGrace)
	if err := janitor.Start(cfg.Media.JanitorSpec); err != nil {
		log.Fatalf("media janitor: %v", err)
	}
	defer janitor.Stop()

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
