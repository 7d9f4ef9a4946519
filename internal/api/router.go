package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/stay-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/cache"
	"github.com/nekogravitycat/stay-booking-backend/internal/logging"
	"github.com/nekogravitycat/stay-booking-backend/internal/ownerapp"
	ownerappHttp "github.com/nekogravitycat/stay-booking-backend/internal/ownerapp/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/profit"
	profitHttp "github.com/nekogravitycat/stay-booking-backend/internal/profit/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
	reservationHttp "github.com/nekogravitycat/stay-booking-backend/internal/reservation/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/review"
	reviewHttp "github.com/nekogravitycat/stay-booking-backend/internal/review/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/unit"
	unitHttp "github.com/nekogravitycat/stay-booking-backend/internal/unit/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/stay-booking-backend/internal/user/http"
)

// Config carries the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *slog.Logger

	UserService        user.Service
	UnitService        unit.Service
	BookingService     booking.Service
	ReservationService reservation.Service
	ProfitService      profit.Service
	OwnerAppService    ownerapp.Service
	ReviewService      review.Service
	JWTManager         *auth.JWTManager

	// Redis is optional; without it responses are not cached and /auth is not throttled.
	Redis     *redis.Client
	Cache     *cache.ResponseCache
	RateLimit cache.RateLimitConfig
}

// Paths whose writes change what the public unit endpoints return. Deleting a
// user cascades to the units they own.
var invalidatingPaths = []string{"/v1/units", "/v1/bookings", "/v1/reservations", "/v1/reviews", "/v1/users"}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	request.RegisterValidators()

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: one structured line per request.
	// - Recovery: logs the panic with its stack and returns a 500 error.
	r.Use(logging.RequestLogger(log), logging.Recovery(log))
	r.Use(cors.New(corsConfig(cfg.IsProduction, cfg.ProdOrigins)))

	// authMiddleware: Validates the JWT and reloads the caller's role.
	authMiddleware := auth.AuthRequired(cfg.JWTManager, cfg.UserService)
	// adminMiddleware: Further checks that the authenticated user is an admin.
	adminMiddleware := auth.RequireRole(auth.RoleAdmin)
	// authLimiter throttles credential endpoints per client.
	authLimiter := cache.RateLimit(cfg.Redis, cfg.RateLimit)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	unitHandler := unitHttp.NewHandler(cfg.UnitService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	reservationHandler := reservationHttp.NewHandler(cfg.ReservationService)
	profitHandler := profitHttp.NewHandler(cfg.ProfitService)
	ownerAppHandler := ownerappHttp.NewHandler(cfg.OwnerAppService)
	reviewHandler := reviewHttp.NewHandler(cfg.ReviewService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	v1.Use(cfg.Cache.Middleware(), cfg.Cache.InvalidateOnWrite(invalidatingPaths...))
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware, authLimiter)
		unitHttp.RegisterRoutes(v1, unitHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		reservationHttp.RegisterRoutes(v1, reservationHandler, authMiddleware)
		profitHttp.RegisterRoutes(v1, profitHandler, authMiddleware)
		ownerappHttp.RegisterRoutes(v1, ownerAppHandler, authMiddleware, adminMiddleware)
		reviewHttp.RegisterRoutes(v1, reviewHandler, authMiddleware)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
