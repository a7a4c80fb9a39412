package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/parkingly/parkingly-server/internal/clock"
	"github.com/parkingly/parkingly-server/internal/domain"
	"github.com/parkingly/parkingly-server/internal/handlers"
	"github.com/parkingly/parkingly-server/internal/idempotency"
	"github.com/parkingly/parkingly-server/internal/qr"
	"github.com/parkingly/parkingly-server/internal/repository"
	"github.com/parkingly/parkingly-server/internal/repository/memory"
	"github.com/parkingly/parkingly-server/internal/repository/postgres"
	"github.com/parkingly/parkingly-server/internal/service"
	"github.com/parkingly/parkingly-server/pkg/config"
	"github.com/parkingly/parkingly-server/pkg/database"
	"github.com/parkingly/parkingly-server/pkg/events"
	"github.com/parkingly/parkingly-server/pkg/logger"
	"github.com/parkingly/parkingly-server/pkg/mailer"
	mw "github.com/parkingly/parkingly-server/pkg/middleware"
)

type repositories struct {
	spots    repository.SpotRepository
	bookings repository.BookingRepository
	wallets  repository.WalletRepository
	history  repository.HistoryRepository
	users    repository.UserRepository
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	repos, cleanup, err := buildRepositories(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Event bus: NATS when configured, otherwise a no-op bus so the engine
	// never has to care whether a broker is present.
	var bus events.EventBus
	if cfg.NATS.URL != "" {
		natsBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		bus = natsBus
	} else {
		bus = events.NewNoopBus()
	}
	defer bus.Close()

	if err := service.SeedAdmin(ctx, repos.users, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Error("Failed to seed admin account", "error", err)
		os.Exit(1)
	}

	clk := clock.System()
	issuer := qr.NewIssuer(cfg.Parking.QRTokenTTL, clk)
	pricing := domain.PricingPolicy{
		FirstHourRate: cfg.Parking.FirstHourRate,
		ExtraHourRate: cfg.Parking.ExtraHourRate,
	}

	parkingService := service.NewParkingService(
		repos.spots, repos.bookings, repos.wallets, repos.history, repos.users,
		issuer, clk, pricing, bus,
	)
	walletService := service.NewWalletService(repos.wallets, clk, bus)
	authService := service.NewAuthService(repos.users, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	var mail mailer.Service
	if cfg.Email.DevMode || cfg.Email.MailerSendKey == "" {
		mail = mailer.DevMailer{}
	} else {
		mail = mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromAddress)
	}
	notifier := service.NewReceiptNotifier(mail)
	if err := notifier.Start(bus); err != nil {
		logger.Error("Failed to subscribe receipt notifier", "error", err)
		os.Exit(1)
	}

	var idemStore mw.IdempotencyStore
	if cfg.Redis.URL != "" {
		redisStore, err := idempotency.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		idemStore = redisStore
	} else {
		idemStore = idempotency.NewMemoryStore()
	}

	h := handlers.New(authService, parkingService, walletService, cfg.Auth.JWTSecret)
	router := h.Routes(idemStore)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}

func buildRepositories(ctx context.Context, cfg *config.Config) (*repositories, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := database.Connect(ctx, cfg.Storage.DatabaseURL, database.Options{
			MaxConns:    cfg.Storage.MaxConns,
			MinConns:    cfg.Storage.MinConns,
			MaxLifetime: cfg.Storage.MaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		return &repositories{
			spots:    postgres.NewSpotRepository(pool),
			bookings: postgres.NewBookingRepository(pool),
			wallets:  postgres.NewWalletRepository(pool),
			history:  postgres.NewHistoryRepository(pool),
			users:    postgres.NewUserRepository(pool),
		}, pool.Close, nil
	default:
		return &repositories{
			spots:    memory.NewSpotRepository(cfg.Parking.SpotCount, cfg.Parking.FirstHourRate),
			bookings: memory.NewBookingRepository(),
			wallets:  memory.NewWalletRepository(),
			history:  memory.NewHistoryRepository(),
			users:    memory.NewUserRepository(),
		}, func() {}, nil
	}
}
