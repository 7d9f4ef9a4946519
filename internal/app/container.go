package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/stay-booking-backend/internal/api"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	"github.com/nekogravitycat/stay-booking-backend/internal/cache"
	"github.com/nekogravitycat/stay-booking-backend/internal/notify"
	"github.com/nekogravitycat/stay-booking-backend/internal/ownerapp"
	"github.com/nekogravitycat/stay-booking-backend/internal/profit"
	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
	"github.com/nekogravitycat/stay-booking-backend/internal/review"
	"github.com/nekogravitycat/stay-booking-backend/internal/token"
	"github.com/nekogravitycat/stay-booking-backend/internal/unit"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *slog.Logger
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	// Optional infrastructure. Nil values fall back to in-process defaults.
	Redis    *redis.Client
	Notifier notify.Notifier

	CacheTTL         time.Duration
	RateLimit        cache.RateLimitConfig
	ConfirmTokenTTL  time.Duration
	ApprovalTokenTTL time.Duration
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Tokens     token.Store
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	var tokens token.Store = token.NewMemoryStore()
	if cfg.Redis != nil {
		tokens = token.NewRedisStore(cfg.Redis)
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	responseCache := cache.NewResponseCache(cfg.Redis, cfg.CacheTTL, "/v1/units")

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, tokens, notifier, user.Options{
		ConfirmTokenTTL: cfg.ConfirmTokenTTL,
	})

	// Unit Module
	checker := availability.NewChecker(availability.NewPgxSource(cfg.DBPool))
	unitRepo := unit.NewPgxRepository(cfg.DBPool)
	unitService := unit.NewService(unitRepo, checker)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, notifier)

	// Reservation Module
	reservationRepo := reservation.NewPgxRepository(cfg.DBPool)
	reservationService := reservation.NewService(reservationRepo, notifier)

	// Profit Module
	profitRepo := profit.NewPgxRepository(cfg.DBPool)
	profitService := profit.NewService(profitRepo)

	// Owner Application Module
	ownerAppRepo := ownerapp.NewPgxRepository(cfg.DBPool)
	ownerAppService := ownerapp.NewService(ownerAppRepo, tokens, notifier, ownerapp.Options{
		ApprovalTokenTTL: cfg.ApprovalTokenTTL,
	})

	// Review Module
	reviewRepo := review.NewPgxRepository(cfg.DBPool)
	reviewService := review.NewService(reviewRepo)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		Logger:             log,
		UserService:        userService,
		UnitService:        unitService,
		BookingService:     bookingService,
		ReservationService: reservationService,
		ProfitService:      profitService,
		OwnerAppService:    ownerAppService,
		ReviewService:      reviewService,
		JWTManager:         jwtManager,
		Redis:              cfg.Redis,
		Cache:              responseCache,
		RateLimit:          cfg.RateLimit,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Tokens:     tokens,
	}
}
