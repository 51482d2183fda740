package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"studiobook/internal/config"
	"studiobook/internal/database"
	"studiobook/internal/middleware"
	"studiobook/internal/modules/availability"
	"studiobook/internal/modules/booking"
	"studiobook/internal/modules/catalog"
	"studiobook/internal/modules/inbox"
	"studiobook/internal/modules/opentimes"
	jwtsvc "studiobook/internal/pkg/jwt"
	"studiobook/internal/repository"
	"studiobook/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	broker := stream.NewBroker()
	defer broker.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	userRepo := repository.NewUserRepository(db)
	studioRepo := repository.NewStudioRepository(db, broker)
	roomRepo := repository.NewRoomRepository(db, broker)
	availabilityRepo := repository.NewAvailabilityRepository(db, broker)
	bookingRepo := repository.NewBookingRepository(db, broker)
	provider := repository.NewProvider(studioRepo, roomRepo, availabilityRepo, bookingRepo, broker)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	catalogService := catalog.NewService(studioRepo, roomRepo, userRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	availabilityService := availability.NewService(availabilityRepo, studioRepo)
	availabilityHandler := availability.NewHandler(availabilityService)

	bookingService := booking.NewService(bookingRepo, studioRepo, roomRepo, availabilityRepo, userRepo)
	bookingHandler := booking.NewHandler(bookingService)

	nameCache := inbox.NewNameCache(rdb, cfg.NameCacheTTL)
	inboxService := inbox.NewService(bookingRepo, userRepo, studioRepo, nil, bookingService, nameCache)
	inboxHandler := inbox.NewHandler(inboxService)

	openTimesHandler := opentimes.NewWSHandler(provider, j)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// The live feed authenticates via query token inside the handler.
		openTimesHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			catalogHandler.RegisterRoutes(protected)
			availabilityHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			inboxHandler.RegisterRoutes(protected)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
