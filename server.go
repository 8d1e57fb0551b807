package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go-storefront/cache"
	"go-storefront/config"
	"go-storefront/controllers"
	"go-storefront/events"
	"go-storefront/routes"
	"go-storefront/services"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// closer is run in reverse order on shutdown.
type closer func(context.Context) error

func newMailer(cfg *config.Config, logger zerolog.Logger) utils.Mailer {
	from := utils.Sender{Address: cfg.EmailSender, Name: cfg.EmailFromName}
	httpClient := utils.NewMailHTTPClient(cfg.MailConnectTimeout)
	switch cfg.MailProvider {
	case config.MailPostmark:
		return utils.NewPostmarkMailer(cfg.PostmarkAPIToken, from, httpClient)
	case config.MailSendGrid:
		return utils.NewSendGridMailer(cfg.SendGridAPIKey, from, httpClient)
	default:
		return utils.NewLogMailer(logger)
	}
}

func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*store.Store, closer, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn().Msg("using the in-memory store, data is lost on restart")
		return store.NewMemory().Store(), nil, nil
	}

	client, err := store.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")
	return store.NewMongo(db), client.Disconnect, nil
}

func newCheckoutLock(cfg *config.Config, logger zerolog.Logger) (cache.CheckoutLock, closer) {
	if cfg.RedisAddr == "" {
		return cache.NewLocalCheckoutLock(), nil
	}
	rdb := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	logger.Info().Str("addr", cfg.RedisAddr).Msg("checkout lock backed by Redis")
	return cache.NewRedisCheckoutLock(rdb, cfg.CheckoutLockTTL), func(context.Context) error { return rdb.Close() }
}

func newPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return events.Nop{}
	}
	logger.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaOrderTopic).Msg("publishing order events to Kafka")
	return events.NewKafkaPublisher(brokers, cfg.KafkaOrderTopic, 1024, logger)
}

// serve wires the application and runs the HTTP server until SIGINT or SIGTERM.
func serve(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](closeCtx); err != nil {
				logger.Warn().Err(err).Msg("shutdown step failed")
			}
		}
	}()

	st, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	lock, closeLock := newCheckoutLock(cfg, logger)
	if closeLock != nil {
		closers = append(closers, closeLock)
	}

	publisher := newPublisher(cfg, logger)
	closers = append(closers, func(context.Context) error { return publisher.Close() })

	policy, err := services.PolicyByName(cfg.OrderStatusPolicy)
	if err != nil {
		return err
	}
	tokens, err := utils.NewTokenMaker(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	email := utils.NewEmailService(newMailer(cfg, logger))
	cookie := controllers.CookieConfig{TTL: cfg.TokenTTL, Secure: cfg.CookieSecure}

	// Initialize services
	auth := services.NewAuthService(st.Users, tokens, services.NewGoogleUserInfoClient(cfg.GoogleUserInfoURL), logger)
	reset := services.NewPasswordResetService(st.Users, email, utils.NewOTPHasher(cfg.OTPSecret), cfg.OTPTTL, logger)
	account := services.NewAccountService(st, logger)
	notifier := services.NewNotifier(st.Notifications, publisher, logger)
	orders := services.NewOrderService(st, lock, notifier, email, policy, logger)

	// Initialize controllers
	handler := routes.NewHandler(routes.Controllers{
		Auth:    controllers.NewAuthController(auth, reset, cookie),
		User:    controllers.NewUserController(auth, account, cookie),
		Product: controllers.NewProductController(services.NewCatalogService(st.Products)),
		Cart: controllers.NewCartController(
			services.NewCartService(st.Carts, st.Products),
			services.NewWishlistService(st.Wishlists, st.Products),
		),
		Order:  controllers.NewOrderController(orders),
		Review: controllers.NewReviewController(services.NewReviewService(st.Reviews, st.Orders)),
		Vendor: controllers.NewVendorController(services.NewVendorService(st, logger), orders),
	}, routes.Options{
		Tokens:         tokens,
		Users:          st.Users,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
