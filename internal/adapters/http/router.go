package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Ritahchanger/propertify-console/config"
	"github.com/Ritahchanger/propertify-console/internal/adapters/http/handlers"
	internalhttp "github.com/Ritahchanger/propertify-console/internal/adapters/http/internal"
	guard "github.com/Ritahchanger/propertify-console/internal/adapters/http/middleware"
)

type Router struct {
	cfg     *config.Config
	handler *handlers.SessionHandler
	guard   *guard.SessionGuard
}

func NewRouter(cfg *config.Config, handler *handlers.SessionHandler, sessionGuard *guard.SessionGuard) *Router {
	return &Router{cfg: cfg, handler: handler, guard: sessionGuard}
}

func (r *Router) Setup(e *echo.Echo) {
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())

	internalhttp.Register(e, r.cfg.AppName)

	api := e.Group(r.cfg.HTTPBasePath)
	sess := api.Group("/session")
	sess.POST("/login", r.handler.Login)
	sess.POST("/register", r.handler.Register)
	sess.POST("/logout", r.handler.Logout)
	sess.GET("", r.handler.Session)

	protected := sess.Group("", r.guard.RequireSession)
	protected.GET("/me", r.handler.Me)
}
