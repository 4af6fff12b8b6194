package main

import (
	"fmt"
	"log"
	"time"

	"billvox/internal/config"
	"billvox/internal/email/noop"
	"billvox/internal/email/ses"
	"billvox/internal/handler"
	"billvox/internal/port"
	"billvox/internal/repository/postgres"
	"billvox/internal/router"
	"billvox/internal/service"
	"billvox/internal/storage/s3"
	memorystore "billvox/internal/store/memory"
	redisstore "billvox/internal/store/redis"
	"billvox/internal/voice"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Repositories
	businessRepo := postgres.NewBusinessRepo(db)
	userRepo := postgres.NewUserRepo(db)
	productRepo := postgres.NewProductRepo(db)
	customerRepo := postgres.NewCustomerRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)

	// Matcher learning log: Redis when configured, in-memory otherwise.
	var corrections port.CorrectionStore
	if cfg.Redis.Addr != "" {
		corrections, err = redisstore.NewCorrectionStore(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	} else {
		log.Println("redis not configured; corrections are in-memory only")
		corrections = memorystore.NewCorrectionStore()
	}

	// Optional infrastructure
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender()
	}

	var remote port.RemoteIntentParser
	if cfg.Voice.RemoteEndpoint != "" {
		remote = voice.NewRemoteParser(
			cfg.Voice.RemoteEndpoint,
			cfg.Voice.RemoteAPIKey,
			time.Duration(cfg.Voice.TimeoutSecs)*time.Second,
		)
	}

	// Services
	authSvc := service.NewAuthService(userRepo, businessRepo, cfg.JWT)
	catalogSvc := service.NewCatalogService(productRepo, corrections)
	customerSvc := service.NewCustomerService(customerRepo)
	billingSvc := service.NewBillingService(invoiceRepo, productRepo, customerRepo, emailSender, storage, cfg.S3)
	voiceSvc := service.NewVoiceService(productRepo, corrections, customerRepo, remote, billingSvc, cfg.Voice.Locale)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	customerH := handler.NewCustomerHandler(customerSvc)
	voiceH := handler.NewVoiceHandler(voiceSvc)
	invoiceH := handler.NewInvoiceHandler(billingSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, authSvc, authH, catalogH, customerH, voiceH, invoiceH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
