package app

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	natsio "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	emailadapter "github.com/reelcart/storefront/internal/adapter/email"
	mongoadapter "github.com/reelcart/storefront/internal/adapter/mongo"
	natsadapter "github.com/reelcart/storefront/internal/adapter/nats"
	"github.com/reelcart/storefront/internal/adapter/payment"
	redisadapter "github.com/reelcart/storefront/internal/adapter/redis"
	"github.com/reelcart/storefront/internal/adapter/storage"
	"github.com/reelcart/storefront/internal/app/config"
	"github.com/reelcart/storefront/internal/platform/logger"
	httpport "github.com/reelcart/storefront/internal/port/http"
	"github.com/reelcart/storefront/internal/repository"
	"github.com/reelcart/storefront/internal/service"
	"go.mongodb.org/mongo-driver/mongo"
)

const templateDir = "./ui/html"
const staticDir = "./ui/static"

type App struct {
	cfg         *config.Config
	log         logger.Logger
	server      *nethttp.Server
	mongoClient *mongo.Client
	redisClient *redis.Client
	natsConn    *natsio.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, HTTP addr: %s", cfg.Env, cfg.HTTPServer.Addr)

	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	appLogger.Info("MongoDB client initialized")

	userRepo := mongoadapter.NewUserRepository(mongoClient, cfg.MongoDB, appLogger)
	productRepo := mongoadapter.NewProductRepository(mongoClient, cfg.MongoDB)
	orderRepo := mongoadapter.NewOrderRepository(mongoClient, cfg.MongoDB, appLogger)

	// The catalog cache is an optimization. When Redis is disabled or
	// unreachable every read goes straight to MongoDB.
	var redisClient *redis.Client
	var catalogCache repository.CatalogCache
	if cfg.Redis.Enabled {
		redisClient, err = redisadapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Warnf("Redis unavailable, catalog cache disabled: %v", err)
		} else {
			catalogCache = redisadapter.NewCatalogCache(redisClient)
			appLogger.Info("Redis catalog cache initialized")
		}
	}

	images, err := newImageStorage(ctx, cfg.Storage, appLogger)
	if err != nil {
		return nil, err
	}

	var natsConn *natsio.Conn
	var publisher natsadapter.MessagePublisher = natsadapter.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsConn, err = natsadapter.NewConnection(cfg.NATS, appLogger)
		if err != nil {
			appLogger.Warnf("NATS unavailable, order events disabled: %v", err)
		} else {
			publisher, err = natsadapter.NewPublisher(natsConn)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
			}
			appLogger.Info("NATS publisher initialized")
		}
	}

	sender := emailadapter.NewSMTPSender(cfg.SMTP, appLogger)
	provider := payment.NewStripeProvider(cfg.Stripe)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime
	sessionManager.Cookie.Secure = cfg.Session.Secure
	sessionManager.Cookie.SameSite = nethttp.SameSiteLaxMode
	if cfg.Session.Store == "mongo" {
		sessionManager.Store = mongoadapter.NewSessionStore(mongoClient, cfg.MongoDB, appLogger)
		appLogger.Info("Mongo session store initialized")
	}

	authService := service.NewAuthService(userRepo, sender, cfg.HTTPServer.BaseURL, appLogger)
	catalogService := service.NewCatalogService(productRepo, catalogCache, images,
		cfg.Cache.ListingTTL, cfg.Cache.SearchTTL, appLogger)
	cartService := service.NewCartService(userRepo, productRepo, appLogger)
	checkoutService := service.NewCheckoutService(orderRepo, userRepo, cartService,
		provider, publisher, cfg.HTTPServer.BaseURL, appLogger)
	invoiceService := service.NewInvoiceService(checkoutService, appLogger)

	handler, err := httpport.NewHandler(authService, catalogService, cartService,
		checkoutService, invoiceService, sessionManager, templateDir, appLogger)
	if err != nil {
		return nil, err
	}

	routes := handler.Routes(httpport.RouterConfig{
		StaticDir: staticDir,
		ImageDir:  cfg.Storage.LocalDir,
	})
	server := httpport.NewServer(cfg.HTTPServer, routes)

	return &App{
		cfg:         cfg,
		log:         appLogger,
		server:      server,
		mongoClient: mongoClient,
		redisClient: redisClient,
		natsConn:    natsConn,
	}, nil
}

func newImageStorage(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (storage.ImageStorage, error) {
	if cfg.Driver == "s3" {
		s3Storage, err := storage.NewS3Storage(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 image storage: %w", err)
		}
		log.Infof("S3 image storage initialized (bucket %s)", cfg.Bucket)
		return s3Storage, nil
	}

	localStorage, err := storage.NewLocalStorage(cfg.LocalDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local image storage: %w", err)
	}
	log.Infof("Local image storage initialized (dir %s)", cfg.LocalDir)
	return localStorage, nil
}

func (a *App) Run() {
	go func() {
		a.log.Infof("HTTP server listening on %s", a.cfg.HTTPServer.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			a.log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down...", receivedSignal)

	ctx := context.Background()
	if err := httpport.Shutdown(ctx, a.server, a.cfg.HTTPServer); err != nil {
		a.log.Errorf("Error during HTTP server shutdown: %v", err)
	} else {
		a.log.Info("HTTP server stopped")
	}

	if a.natsConn != nil {
		a.natsConn.Close()
		a.log.Info("NATS connection closed")
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		}
	}

	a.log.Info("Application shut down")
}
