package app

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"travel-booking-backend/internal/api"
	"travel-booking-backend/internal/auth"
	"travel-booking-backend/internal/booking"
	"travel-booking-backend/internal/config"
	"travel-booking-backend/internal/inventory"
	"travel-booking-backend/internal/mailer"
	"travel-booking-backend/internal/payment"
	"travel-booking-backend/internal/pkg/storage"
	"travel-booking-backend/internal/review"
	"travel-booking-backend/internal/settings"
	"travel-booking-backend/internal/sweeper"
	"travel-booking-backend/internal/trip"
	"travel-booking-backend/internal/user"
	"travel-booking-backend/internal/waitinglist"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Sweeper    *sweeper.Sweeper
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)
	ledger := inventory.NewLedger()

	files, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	// Outbound mail. Without SMTP config, mail goes to the process log.
	var mail mailer.Sender
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFromName)
	} else {
		log.Print("SMTP not configured, emails go to the log")
		mail = mailer.NewLogSender()
	}

	// Card charges. Without PayPal credentials, charges are simulated.
	var processor payment.Processor
	if cfg.PayPalClientID != "" {
		processor = payment.NewPayPalClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret)
	} else {
		log.Print("PayPal not configured, payments are simulated")
		processor = payment.NewSimulatedProcessor()
	}

	// Settings Module
	settingsRepo := settings.NewPgxRepository(pool)
	settingsService := settings.NewService(settingsRepo)

	// User Module
	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, passwordHasher)

	// Trip Module
	tripRepo := trip.NewPgxRepository(pool)
	tripService := trip.NewService(tripRepo, settingsService, files)

	// Waiting List Module
	queueRepo := waitinglist.NewPgxRepository(pool)
	queueService := waitinglist.NewService(queueRepo, tripRepo, userService, mail, settingsService)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(pool, ledger)
	bookingService := booking.NewService(bookingRepo, tripRepo, queueService, processor, mail, settingsService)

	// Review Module
	reviewRepo := review.NewPgxRepository(pool)
	reviewService := review.NewService(reviewRepo, tripRepo)

	// Background sweeper
	sw := sweeper.New(queueService, bookingRepo, mail, settingsService, cfg.SweepInterval)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		UserService:        userService,
		TripService:        tripService,
		BookingService:     bookingService,
		WaitingListService: queueService,
		ReviewService:      reviewService,
		SettingsService:    settingsService,
		JWTManager:         jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Sweeper:    sw,
	}, nil
}
