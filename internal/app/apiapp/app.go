package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/playpal-app/backend/internal/config"
	pgrepo "github.com/playpal-app/backend/internal/repo/postgres"
	redrepo "github.com/playpal-app/backend/internal/repo/redis"
	authsvc "github.com/playpal-app/backend/internal/services/auth"
	bookingsvc "github.com/playpal-app/backend/internal/services/bookings"
	discoverysvc "github.com/playpal-app/backend/internal/services/discovery"
	eventsvc "github.com/playpal-app/backend/internal/services/events"
	gametimesvc "github.com/playpal-app/backend/internal/services/gametimes"
	matchsvc "github.com/playpal-app/backend/internal/services/matches"
	progressionsvc "github.com/playpal-app/backend/internal/services/progression"
	ratesvc "github.com/playpal-app/backend/internal/services/rate"
	swipesvc "github.com/playpal-app/backend/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	availabilityCache := redrepo.NewAvailabilityCache(redisClient, cfg.Booking.AvailabilityCacheTTL)

	venueRepo := pgrepo.NewVenueRepo(pool)
	bookingRepo := pgrepo.NewBookingRepo(pool)
	gametimeRepo := pgrepo.NewGametimeRepo(pool)
	eventRepo := pgrepo.NewEventRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	xpRepo := pgrepo.NewXPRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, cfg.Auth.RefreshTTL)

	progressionService := progressionsvc.NewService(xpRepo, progressionsvc.Config{
		BookingCompletedXP: cfg.Progression.BookingCompletedXP,
		GametimeJoinedXP:   cfg.Progression.GametimeJoinedXP,
		MatchCreatedXP:     cfg.Progression.MatchCreatedXP,
	}.Default(), log)

	bookingService := bookingsvc.NewService(pool, venueRepo, bookingRepo, availabilityCache, progressionService, log)
	gametimeService := gametimesvc.NewService(pool, gametimeRepo, progressionService, log)
	eventService := eventsvc.NewService(pool, eventRepo, log)

	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.SwipesPerMinute, cfg.Limits.SwipesPer10Seconds)
	swipeService := swipesvc.NewService(pool, swipeRepo, matchRepo, rateLimiter, progressionService, log)
	matchService := matchsvc.NewService(pool, matchRepo)

	discoveryService := discoverysvc.NewService(profileRepo, discoverysvc.Config{
		MaxDistanceKM: cfg.Discovery.MaxDistanceKM,
		CandidatePool: cfg.Discovery.CandidatePool,
	}.Default())

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:        authService,
		VenueCatalog:       venueRepo,
		BookingService:     bookingService,
		GametimeService:    gametimeService,
		EventService:       eventService,
		SwipeService:       swipeService,
		MatchService:       matchService,
		DiscoveryService:   discoveryService,
		ProgressionService: progressionService,
		Logger:             log,
		Config:             cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
