package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/playpal-app/backend/internal/config"
	authsvc "github.com/playpal-app/backend/internal/services/auth"
	bookingsvc "github.com/playpal-app/backend/internal/services/bookings"
	discoverysvc "github.com/playpal-app/backend/internal/services/discovery"
	eventsvc "github.com/playpal-app/backend/internal/services/events"
	gametimesvc "github.com/playpal-app/backend/internal/services/gametimes"
	matchsvc "github.com/playpal-app/backend/internal/services/matches"
	progressionsvc "github.com/playpal-app/backend/internal/services/progression"
	swipesvc "github.com/playpal-app/backend/internal/services/swipes"
	"github.com/playpal-app/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	VenueCatalog       handlers.VenueCatalog
	BookingService     *bookingsvc.Service
	GametimeService    *gametimesvc.Service
	EventService       *eventsvc.Service
	SwipeService       *swipesvc.Service
	MatchService       *matchsvc.Service
	DiscoveryService   *discoverysvc.Service
	ProgressionService *progressionsvc.Service
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	venueHandler := handlers.NewVenueHandler(deps.VenueCatalog, deps.BookingService)
	bookingHandler := handlers.NewBookingHandler(deps.BookingService)
	gametimeHandler := handlers.NewGametimeHandler(deps.GametimeService)
	eventHandler := handlers.NewEventHandler(deps.EventService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchHandler := handlers.NewMatchHandler(deps.MatchService)
	discoveryHandler := handlers.NewDiscoveryHandler(deps.DiscoveryService)
	progressionHandler := handlers.NewProgressionHandler(deps.ProgressionService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
	})

	r.Route("/venues", func(r chi.Router) {
		r.Get("/", venueHandler.List)
		r.Get("/{venueID}", venueHandler.Get)
		r.Get("/{venueID}/slots", venueHandler.DaySlots)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", bookingHandler.Reserve)
		r.Get("/", bookingHandler.ListMine)
		r.Post("/{bookingID}/cancel", bookingHandler.Cancel)
		r.Post("/{bookingID}/complete", bookingHandler.Complete)
	})

	r.Route("/gametimes", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", gametimeHandler.Create)
		r.Get("/", gametimeHandler.List)
		r.Get("/{gametimeID}", gametimeHandler.Get)
		r.Post("/{gametimeID}/join", gametimeHandler.Join)
		r.Post("/{gametimeID}/leave", gametimeHandler.Leave)
		r.Post("/{gametimeID}/cancel", gametimeHandler.Cancel)
	})

	r.Route("/events", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", eventHandler.Create)
		r.Get("/", eventHandler.List)
		r.Get("/{eventID}", eventHandler.Get)
		r.Post("/{eventID}/register", eventHandler.Register)
		r.Post("/{eventID}/withdraw", eventHandler.Withdraw)
		r.Post("/{eventID}/cancel", eventHandler.Cancel)
	})

	r.With(authMW).Post("/swipes", swipeHandler.Handle)

	r.Route("/matches", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", matchHandler.List)
		r.Get("/{partnerID}", matchHandler.Get)
		r.Post("/{partnerID}/unmatch", matchHandler.Unmatch)
	})

	r.With(authMW).Get("/discovery", discoveryHandler.Discover)
	r.With(authMW).Get("/me/progression", progressionHandler.Me)
}
