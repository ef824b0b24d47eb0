package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"

	"github.com/jhoicas/fieldservice-invoicing/internal/application/auth"
	"github.com/jhoicas/fieldservice-invoicing/internal/application/billing"
	"github.com/jhoicas/fieldservice-invoicing/internal/application/session"
	"github.com/jhoicas/fieldservice-invoicing/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/fieldservice-invoicing/internal/infrastructure/pdf"
	"github.com/jhoicas/fieldservice-invoicing/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/fieldservice-invoicing/internal/interfaces/http"
	"github.com/jhoicas/fieldservice-invoicing/pkg/config"
	"github.com/jhoicas/fieldservice-invoicing/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	issuedRepo := postgres.NewIssuedSerialRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Caché de descriptores: sin REDIS_ADDR o si Redis no responde, se consulta directo a la DB.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.New(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible; caché de productos desactivada")
		} else {
			defer redisClient.Close()
		}
	}
	barcodes := cache.NewCachedBarcodeResolver(productRepo, redisClient, cfg.Redis.ProductTTL, log.Component("cache"))

	// Sesiones en curso: en memoria, con barrido de inactivas.
	store := session.NewStore(cfg.Engine.SessionTTL, nil)
	go store.RunSweeper(ctx, cfg.Engine.SweepInterval, log.Component("session_store"))

	sessionUC := session.NewUseCase(store, barcodes, issuedRepo, accountRepo, txRunner,
		log.Zerolog(), session.Config{ResolverTimeout: cfg.Engine.ResolverTimeout})

	lang, err := language.Parse(cfg.App.Locale)
	if err != nil {
		log.Warn().Err(err).Str("locale", cfg.App.Locale).Msg("PDF_LOCALE inválido; se usa es")
		lang = language.Spanish
	}
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.CompanyName, lang)
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, userRepo, pdfGenerator)
	invoiceUC := billing.NewInvoiceUseCase(invoiceRepo)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Field Service Invoicing API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":        "ok",
			"service":       cfg.App.Name,
			"open_sessions": store.Len(),
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		SessionUC:  sessionUC,
		InvoiceUC:  invoiceUC,
		InvoicePDF: invoicePDFUC,
		JWTSecret:  cfg.JWT.Secret,
		Logger:     log.Component("http"),

		LoginPerMinute: cfg.HTTP.LoginPerMinute,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Int("open_sessions_discarded", store.Len()).Msg("aplicación detenida")
}
