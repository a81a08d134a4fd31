package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"metro/internal/handler"
	"metro/internal/middleware"
	"metro/internal/session"
	"metro/internal/web"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PageHandler    *handler.PageHandler
	BookingHandler *handler.BookingHandler
	PaymentHandler *handler.PaymentHandler
	TicketHandler  *handler.TicketHandler
	Sessions       session.Store
	SessionOptions middleware.SessionOptions
	CORSOrigins    []string
	Responses      middleware.ResponseCache // Replayed Idempotency-Key responses
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	router := gin.New()

	tmpl, err := web.Templates(handler.TemplateFuncs())
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	if len(deps.CORSOrigins) > 0 {
		router.Use(middleware.CORSMiddleware(deps.CORSOrigins))
	}

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	sessioned := router.Group("/")
	sessioned.Use(middleware.Session(deps.Sessions, deps.SessionOptions))
	if deps.NewRelicApp != nil {
		sessioned.Use(middleware.BookingAttributes())
	}

	// Pages.
	{
		sessioned.GET("/", deps.PageHandler.Home)
		sessioned.POST("/booking", deps.PageHandler.SubmitBooking)
		sessioned.POST("/booking/reset", deps.PageHandler.ResetBooking)
		sessioned.POST("/payment", deps.PageHandler.SubmitPayment)
		sessioned.GET("/tickets", deps.PageHandler.MyTickets)
		sessioned.GET("/tickets/:id/qr.png", deps.PageHandler.DownloadQR)
		sessioned.GET("/tickets/:id/ticket.pdf", deps.PageHandler.DownloadPDF)
		sessioned.GET("/about", deps.PageHandler.About)
	}

	// API v1 routes.
	v1 := sessioned.Group("/v1")
	if deps.Responses != nil {
		v1.Use(middleware.Idempotency(deps.Responses))
	}
	{
		v1.GET("/network", deps.BookingHandler.GetNetwork)
		v1.POST("/fares/quote", deps.BookingHandler.QuoteFare)
		v1.GET("/schedule", deps.BookingHandler.GetSchedule)

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.CreateBooking)
			bookings.GET("/current", deps.BookingHandler.GetCurrentBooking)
			bookings.DELETE("/current", deps.BookingHandler.ResetBooking)
		}

		// Payment routes.
		v1.POST("/payments", deps.PaymentHandler.ProcessPayment)

		// Ticket routes.
		tickets := v1.Group("/tickets")
		{
			tickets.GET("", deps.TicketHandler.GetAll)
			tickets.GET("/:id", deps.TicketHandler.GetTicket)
			tickets.GET("/:id/qr", deps.TicketHandler.DownloadQR)
			tickets.GET("/:id/pdf", deps.TicketHandler.DownloadPDF)
		}
	}

	return router, nil
}
