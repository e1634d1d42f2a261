package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"registrations/cmd/middleware"
	"registrations/internal/handler"
)

type Routers struct {
	Handler handler.Handler
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	h := r.Handler

	app.POST("/registrations", h.CreateRegistration)
	app.PATCH("/registrations", h.UpdateRegistration)
	app.GET("/registrations", h.ListRegistrations)
	app.DELETE("/registrations", h.DeleteRegistration)
	app.PUT("/registrations/status", h.UpdateStatus)
	app.POST("/registrations/decline", h.DeclineRegistration)
	app.GET("/registrations/search", h.SearchRegistrations)
	app.GET("/registrations/count", h.CountRegistrations)
	app.GET("/registrations/:id", h.GetRegistration)

	return app
}
