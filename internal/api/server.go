// Package api wires the fiber application: routes, auth middleware, CORS,
// rate limiting and metrics. Handlers translate HTTP to service calls and
// nothing more.
package api

import (
	"time"

	"github.com/dorhakim100/Sell-It-Backend/internal/auth"
	"github.com/dorhakim100/Sell-It-Backend/internal/chat"
	"github.com/dorhakim100/Sell-It-Backend/internal/item"
	"github.com/dorhakim100/Sell-It-Backend/internal/metrics"
	"github.com/dorhakim100/Sell-It-Backend/internal/user"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Deps struct {
	Auth  *auth.Service
	Chats *chat.Service
	Users *user.Repository
	Items *item.Repository
	Redis *redis.Client // nil disables rate limiting
	Log   *zap.SugaredLogger
}

func NewServer(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, http://localhost:8081",
		AllowCredentials: true,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	requireAuth := RequireAuth(d.Auth)

	authH := NewAuthHandler(d.Auth, d.Log)
	authGroup := app.Group("/api/auth")
	if d.Redis != nil {
		rl := NewRateLimiter(d.Redis, "auth", 20, time.Minute)
		authGroup.Use(rl.MiddlewareByKey(func(c *fiber.Ctx) string { return c.IP() }))
	}
	authGroup.Post("/login", authH.Login)
	authGroup.Post("/signup", authH.Signup)
	authGroup.Post("/logout", authH.Logout)

	userH := NewUserHandler(d.Users, d.Auth, d.Log)
	userGroup := app.Group("/api/user")
	userGroup.Get("/", userH.GetUsers)
	userGroup.Get("/:id", userH.GetUser)
	userGroup.Put("/:id", requireAuth, userH.UpdateUser)
	userGroup.Delete("/:id", requireAuth, RequireAdmin(), userH.RemoveUser)
	userGroup.Post("/:id/expo-token", requireAuth, userH.AddExpoToken)

	itemH := NewItemHandler(d.Items, d.Log)
	itemGroup := app.Group("/api/item")
	itemGroup.Get("/", itemH.GetItems)
	itemGroup.Get("/maxPage", itemH.GetMaxPage)
	itemGroup.Get("/:id", itemH.GetItem)
	itemGroup.Post("/", requireAuth, itemH.AddItem)
	itemGroup.Put("/:id", requireAuth, itemH.UpdateItem)
	itemGroup.Delete("/:id", requireAuth, itemH.RemoveItem)

	chatH := NewChatHandler(d.Chats, d.Log)
	chatGroup := app.Group("/api/chat")
	chatGroup.Get("/", chatH.GetChats)
	chatGroup.Get("/maxPage", chatH.GetMaxPage)
	chatGroup.Get("/isChat", chatH.CheckIsChat)
	chatGroup.Get("/:id", requireAuth, chatH.GetChatByID)
	chatGroup.Post("/", requireAuth, chatH.AddChat)
	chatGroup.Post("/:id/msg", requireAuth, chatH.AddChatMsg)
	chatGroup.Delete("/message/:id", requireAuth, chatH.DeleteMessage)
	chatGroup.Delete("/:id", requireAuth, chatH.RemoveChat)

	return app
}
