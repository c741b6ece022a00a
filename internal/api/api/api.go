package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"sparxfest/cmd/middleware"
	"sparxfest/internal/auth"
	"sparxfest/internal/service"
)

type Routers struct {
	Service  service.Service
	Sessions *auth.Sessions
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	apiGroup := app.Group("/v1")

	apiGroup.GET("/events", r.Service.GetCatalog)
	apiGroup.GET("/schedule", r.Service.GetSchedule)
	apiGroup.POST("/registrations", r.Service.SubmitRegistration)

	adminGroup := apiGroup.Group("/admin")
	adminGroup.POST("/login", r.Service.Login)

	protected := adminGroup.Group("")
	protected.Use(middleware.AdminAuthMiddleware(r.Sessions))
	protected.GET("/registrations", r.Service.ListRegistrations)
	protected.POST("/registrations/:id/approve", r.Service.ApproveRegistration)
	protected.PUT("/registrations/:id", r.Service.UpdateRegistration)
	protected.DELETE("/registrations/:id", r.Service.DeleteRegistration)
	protected.GET("/registrations/export", r.Service.ExportRegistrations)

	return app
}
