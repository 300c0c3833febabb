package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"travel-booking-backend/internal/auth"
	"travel-booking-backend/internal/booking"
	bookingHttp "travel-booking-backend/internal/booking/http"
	"travel-booking-backend/internal/review"
	reviewHttp "travel-booking-backend/internal/review/http"
	"travel-booking-backend/internal/settings"
	settingsHttp "travel-booking-backend/internal/settings/http"
	"travel-booking-backend/internal/trip"
	tripHttp "travel-booking-backend/internal/trip/http"
	"travel-booking-backend/internal/user"
	userHttp "travel-booking-backend/internal/user/http"
	"travel-booking-backend/internal/waitinglist"
	waitinglistHttp "travel-booking-backend/internal/waitinglist/http"
)

// Config holds the services and settings the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService        user.Service
	TripService        trip.Service
	BookingService     booking.Service
	WaitingListService waitinglist.Service
	ReviewService      review.Service
	SettingsService    settings.Service

	JWTManager *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, Logger, Auth) and registers routes for all
// modules under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware validates the JWT; adminMiddleware further requires the
	// admin flag from the token claims.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	adminMiddleware := auth.AdminRequired()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	tripHandler := tripHttp.NewHandler(cfg.TripService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	waitingListHandler := waitinglistHttp.NewHandler(cfg.WaitingListService)
	reviewHandler := reviewHttp.NewHandler(cfg.ReviewService)
	settingsHandler := settingsHttp.NewHandler(cfg.SettingsService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		tripHttp.RegisterRoutes(v1, tripHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		waitinglistHttp.RegisterRoutes(v1, waitingListHandler, authMiddleware, adminMiddleware)
		reviewHttp.RegisterRoutes(v1, reviewHandler, authMiddleware)
		settingsHttp.RegisterRoutes(v1, settingsHandler, authMiddleware, adminMiddleware)
	}

	return r
}
