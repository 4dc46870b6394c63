package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coverscan/internal/config"
	"coverscan/internal/email/noop"
	"coverscan/internal/email/ses"
	"coverscan/internal/handler"
	"coverscan/internal/parser"
	"coverscan/internal/parser/claude"
	"coverscan/internal/parser/openai"
	"coverscan/internal/port"
	"coverscan/internal/repository/postgres"
	"coverscan/internal/router"
	"coverscan/internal/service"
	s3storage "coverscan/internal/storage/s3"
	"coverscan/internal/validator"
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

	// Initialize repositories
	tenantRepo := postgres.NewTenantRepo(db)
	userRepo := postgres.NewUserRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)
	submissionRepo := postgres.NewSubmissionRepo(db)
	auditRepo := postgres.NewSubmissionAuditRepo(db)
	statsRepo := postgres.NewStatsRepo(db)
	makeRepo := postgres.NewVehicleMakeRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Recognition providers
	parser.RegisterProvider("claude", func(pc *config.ParserProviderConfig) (port.PageParser, error) {
		return claude.NewParser(pc), nil
	})
	parser.RegisterProvider("openai", func(pc *config.ParserProviderConfig) (port.PageParser, error) {
		return openai.NewParser(pc), nil
	})

	pageParser, err := buildPageParser(&cfg.Parser)
	if err != nil {
		return fmt.Errorf("failed to initialize recognition provider: %w", err)
	}
	pageSet := parser.NewPageSet(pageParser, parser.PageSetOptions{
		RequestsPerMinute: cfg.Parser.RequestsPerMinute,
		Concurrency:       cfg.Parser.Concurrency,
		CacheTTL:          time.Duration(cfg.Parser.CacheTTLSecs) * time.Second,
	})

	// Receipt emails: SES in production, log-only otherwise
	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noop.NewNoopSender()
	}

	checker := validator.NewEngine(validator.DefaultRegistry())

	// Initialize services
	authSvc := service.NewAuthService(userRepo, tenantRepo, cfg.JWT)
	fileSvc := service.NewFileService(fileRepo, s3Client, &cfg.S3)
	tenantSvc := service.NewTenantService(tenantRepo)
	userSvc := service.NewUserService(userRepo)
	statsSvc := service.NewStatsService(statsRepo)
	referenceSvc := service.NewReferenceService(makeRepo)
	submissionSvc := service.NewSubmissionService(
		submissionRepo, fileRepo, userRepo, auditRepo,
		s3Client, pageSet, checker, emailSender, cfg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// First tenant + admin on an empty database
	if err := authSvc.Bootstrap(ctx, cfg.Bootstrap); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	// Queue worker retries rate-limited submissions
	worker := service.NewProcessQueueWorker(submissionRepo, submissionSvc, service.ProcessQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	fileH := handler.NewFileHandler(fileSvc)
	submissionH := handler.NewSubmissionHandler(submissionSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	referenceH := handler.NewReferenceHandler(referenceSvc)
	tenantH := handler.NewTenantHandler(tenantSvc)
	userH := handler.NewUserHandler(userSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins,
		authH, fileH, submissionH, statsH, referenceH, tenantH, userH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-workerDone

	return nil
}

// buildPageParser creates the primary provider, wrapping it with the
// secondary into a FallbackParser when one is configured.
func buildPageParser(cfg *config.ParserConfig) (port.PageParser, error) {
	primary, err := parser.NewPageParser(&cfg.Primary)
	if err != nil {
		return nil, err
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}

	secondary, err := parser.NewPageParser(secondaryCfg)
	if err != nil {
		return nil, err
	}
	return parser.NewFallbackParser([]port.PageParser{primary, secondary}), nil
}
