package bootstrap

import (
	"database/sql"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/k1w1proplus/chat-backend/internal/api/http"
	apimw "github.com/k1w1proplus/chat-backend/internal/api/http/middleware"
	"github.com/k1w1proplus/chat-backend/internal/chat"
	chatpg "github.com/k1w1proplus/chat-backend/internal/chat/postgres"
	"github.com/k1w1proplus/chat-backend/internal/media"
	"github.com/k1w1proplus/chat-backend/internal/projects"
	"github.com/k1w1proplus/chat-backend/internal/settings"
	"github.com/k1w1proplus/chat-backend/internal/users"

	"github.com/k1w1proplus/chat-backend/internal/ai"
	authmw "github.com/k1w1proplus/chat-backend/internal/auth/middleware"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	AIBaseURL   string
	AIModel     string

	DB         *pgxpool.Pool
	SQLDB      *sql.DB
	Redis      *redis.Client
	AuthClient *fbauth.Client
	Objects    media.ObjectStore
}

// BuildRouter wires repositories, services and handlers into the gin
// engine. It also returns the message store so the caller can hand it to
// the media janitor.
func BuildRouter(dep RouterDeps) (*gin.Engine, *chatpg.Store) {
	r := gin.Default()
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	userRepo := users.NewRepo(dep.SQLDB)
	projectRepo := projects.NewRepo(dep.DB)
	settingsRepo := settings.NewRepo(dep.Redis)
	messageStore := chatpg.NewStore(dep.DB, dep.Redis)

	directory := projects.NewDirectory(projectRepo, settingsRepo)
	aiService := ai.NewService(settingsRepo, dep.AIBaseURL, dep.AIModel)
	commandRouter := chat.NewRouter(messageStore, aiService)
	uploader := media.NewUploader(dep.Objects)

	api := r.Group("/api/v1")
	api.Use(apimw.RequestIDMiddleware())
	api.Use(authmw.FirebaseAuthMiddleware(dep.AuthClient))
	api.Use(authmw.WithUser(userRepo))

	projects.Register(api.Group("/projects"), directory)
	chat.Register(api.Group("/chat"), messageStore, commandRouter, directory)
	media.Register(api.Group("/uploads"), uploader, commandRouter, directory)
	settings.Register(api.Group("/settings"), settingsRepo)
	users.Register(api.Group("/users"), userRepo)

	return r, messageStore
}
