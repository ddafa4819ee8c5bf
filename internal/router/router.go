// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ssizenet/intranet-api/internal/config"
	"github.com/ssizenet/intranet-api/internal/handler"
	"github.com/ssizenet/intranet-api/internal/middleware"
	"github.com/ssizenet/intranet-api/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Rent    *handler.RentHandler
	Setting *handler.SettingHandler
	Video   *handler.VideoHandler
	Post    *handler.PostHandler
	Health  *handler.HealthHandler
}

// Register mounts all routes. Public auth endpoints sit under /v1/auth and
// carry the Redis token-bucket rate limiter; everything else lives under
// /v1 behind the JWT guard plus per-group authority checks. rdb may be nil,
// which disables rate limiting and response caching.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", h.Health.Check)

	pub := e.Group("/v1/auth")
	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		pub.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}
	pub.GET("/check-id", h.Auth.CheckID)
	pub.POST("/signup", h.Auth.Signup)
	pub.POST("/signin", h.Auth.Signin)
	pub.POST("/refresh", h.Auth.Refresh)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))

	// Logout needs a valid access token but no particular authority.
	v1.POST("/auth/logout", h.Auth.Logout)

	account := v1.Group("/auth", middleware.RequireAuthority(model.AuthorityUser))
	account.GET("/profile", h.Auth.Profile)
	account.PATCH("/profile", h.Auth.UpdateProfile)
	account.PATCH("/password", h.Auth.ChangePassword)
	account.POST("/profile/photo", h.Auth.UploadPhoto)
	account.DELETE("/profile/photo", h.Auth.DeletePhoto)
	account.DELETE("/account", h.Auth.DeleteAccount)

	rents := v1.Group("/rents",
		middleware.RequireAuthority(model.AuthorityUser, model.AuthorityEquipmentAdmin))
	rents.POST("", h.Rent.Apply)
	if cacheMW != nil {
		rents.GET("", h.Rent.List, cacheMW)
		rents.GET("/month", h.Rent.Month, cacheMW)
	} else {
		rents.GET("", h.Rent.List)
		rents.GET("/month", h.Rent.Month)
	}
	rents.GET("/:id", h.Rent.GetByID)
	rents.PATCH("/:id", h.Rent.Update)
	rents.DELETE("/:id", h.Rent.Delete)
	rents.POST("/approve", h.Rent.Approve,
		middleware.RequireAuthority(model.AuthorityEquipmentAdmin))

	settings := v1.Group("/settings", middleware.RequireAuthority(model.AuthorityAdmin))
	settings.POST("", h.Setting.Create)
	settings.GET("", h.Setting.Get)
	settings.PATCH("", h.Setting.Update)
	settings.DELETE("", h.Setting.Delete)

	videos := v1.Group("/videos",
		middleware.RequireAuthority(model.AuthorityUser, model.AuthorityVideoAdmin))
	videos.POST("", h.Video.Register)
	if cacheMW != nil {
		videos.GET("", h.Video.List, cacheMW)
	} else {
		videos.GET("", h.Video.List)
	}
	videos.GET("/:id", h.Video.GetByID)
	videos.PATCH("/:id", h.Video.Update)
	videos.DELETE("/:id", h.Video.Delete)
	videos.POST("/approve", h.Video.Approve,
		middleware.RequireAuthority(model.AuthorityVideoAdmin))

	posts := v1.Group("/posts",
		middleware.RequireAuthority(model.AuthorityUser, model.AuthorityBoardAdmin))
	posts.POST("", h.Post.Create)
	posts.GET("", h.Post.List)
	posts.GET("/:id", h.Post.GetByID)
	posts.PATCH("/:id", h.Post.Update)
	posts.DELETE("/:id", h.Post.Delete)
	posts.POST("/:id/comments", h.Post.CreateComment)
	posts.PATCH("/:id/comments/:commentId", h.Post.UpdateComment)
	posts.DELETE("/:id/comments/:commentId", h.Post.DeleteComment)
}
