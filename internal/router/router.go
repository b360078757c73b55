// Package router wires handlers, middleware and routes onto the Echo
// instance. Routes split into four surfaces: public browse, checkout +
// webhook, the authenticated buyer portal, and the organizer console.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/groovegrid/groovegrid/internal/handler"
	"github.com/groovegrid/groovegrid/internal/middleware"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Checkout   *handler.CheckoutHandler
	Webhook    *handler.WebhookHandler
	Public     *handler.PublicHandler
	Owner      *handler.OwnerHandler
	Campaigns  *handler.CampaignHandler
	Portal     *handler.PortalHandler
	Curriculum *handler.CurriculumHandler
}

// Register mounts all routes. rateLimit applies to the checkout surface
// only; pass an identity middleware when the limiter is disabled.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public browse, no auth.
	e.GET("/v1/organizations/:subdomain", h.Public.GetOrganization)
	e.GET("/v1/organizations/:subdomain/events", h.Public.ListEvents)
	e.GET("/v1/organizations/:subdomain/pass-types", h.Public.ListPassTypes)
	e.GET("/v1/organizations/:subdomain/packages", h.Public.ListPackages)
	e.GET("/v1/organizations/:subdomain/courses", h.Public.ListCourses)
	e.GET("/v1/events/:id", h.Public.GetEvent)

	// Checkout is guest-accessible; rate limited.
	e.POST("/v1/checkout", h.Checkout.Checkout, rateLimit)
	e.POST("/v1/courses/:id/enroll", h.Checkout.EnrollCourse, rateLimit)
	e.GET("/v1/checkout/sessions/:session_id", h.Checkout.SessionStatus)

	// Stripe calls this; authentication is the signature check inside.
	e.POST("/v1/webhooks/stripe", h.Webhook.HandleStripe)

	// Buyer portal: any authenticated user claims grants by email.
	portal := e.Group("/v1/portal")
	portal.Use(middleware.JWTAuth(jwtSecret))
	portal.GET("/orders", h.Portal.ListOrders)
	portal.GET("/tickets", h.Portal.ListTickets)
	portal.GET("/passes", h.Portal.ListPasses)
	portal.GET("/packages", h.Portal.ListPackages)
	portal.GET("/enrollments", h.Portal.ListEnrollments)

	// Organizer console: owner or admin role required.
	owner := e.Group("/v1/owner")
	owner.Use(middleware.JWTAuth(jwtSecret))
	owner.Use(middleware.RequireRole("owner", "admin"))
	owner.POST("/events", h.Owner.CreateEvent)
	owner.GET("/events", h.Owner.ListEvents)
	owner.GET("/events/:id", h.Owner.GetEvent)
	owner.PUT("/events/:id", h.Owner.UpdateEvent)
	owner.DELETE("/events/:id", h.Owner.DeleteEvent)
	owner.POST("/events/:id/publish", h.Owner.PublishEvent)
	owner.POST("/events/:id/cancel", h.Owner.CancelEvent)
	owner.POST("/events/:id/ticket-types", h.Owner.CreateTicketType)
	owner.PUT("/ticket-types/:id", h.Owner.UpdateTicketType)
	owner.DELETE("/ticket-types/:id", h.Owner.DeleteTicketType)
	owner.POST("/pass-types", h.Owner.CreatePassType)
	owner.GET("/pass-types", h.Owner.ListPassTypes)
	owner.PUT("/pass-types/:id", h.Owner.UpdatePassType)
	owner.POST("/packages", h.Owner.CreatePackage)
	owner.GET("/packages", h.Owner.ListPackages)
	owner.PUT("/packages/:id", h.Owner.UpdatePackage)
	owner.POST("/courses", h.Owner.CreateCourse)
	owner.GET("/courses", h.Owner.ListCourses)
	owner.PUT("/courses/:id", h.Owner.UpdateCourse)
	owner.GET("/orders", h.Owner.ListOrders)
	owner.GET("/orders/:id", h.Owner.GetOrder)
	owner.POST("/campaigns", h.Campaigns.CreateCampaign)
	owner.GET("/campaigns", h.Campaigns.ListCampaigns)
	owner.GET("/campaigns/:id", h.Campaigns.GetCampaign)
	owner.PUT("/campaigns/:id", h.Campaigns.UpdateCampaign)

	// Operations mounted outside /v1/owner but still organizer-only.
	ops := e.Group("/v1")
	ops.Use(middleware.JWTAuth(jwtSecret))
	ops.Use(middleware.RequireRole("owner", "admin"))
	ops.POST("/campaigns/:id/execute", h.Campaigns.ExecuteCampaign)
	ops.POST("/courses/generate", h.Curriculum.Generate)
	ops.GET("/events/export", h.Owner.ExportEvents)
	ops.POST("/events/import", h.Owner.ImportEvents)
}
