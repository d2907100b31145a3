package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/outbox"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/taxtable"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	employeeService "github.com/cmlabs-hris/payroll-backend-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	taxLiabilityService "github.com/cmlabs-hris/payroll-backend-go/internal/service/taxliability"
	timesheetService "github.com/cmlabs-hris/payroll-backend-go/internal/service/timesheet"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the outbox relay",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if doMigrate, _ := cmd.Flags().GetBool("migrate"); doMigrate {
		if _, err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// Repositories
	transactor := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	timesheetRepo := postgresql.NewTimesheetRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	ledgerRepo := postgresql.NewTaxLiabilityRepository(db)
	outboxRepo := postgresql.NewOutboxRepository(db)

	// Withholding tables, cached in redis when configured
	tables, err := taxtable.Load(cfg.Payroll.TaxTablePath)
	if err != nil {
		return err
	}
	var lookup payroll.WithholdingLookup = tables
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, lookups fall through to the tables", "error", err)
		}
		lookup = taxtable.NewCachedLookup(tables, rdb, cfg.Redis.TTL, logger)
	}
	logger.Info("withholding tables loaded", "path", cfg.Payroll.TaxTablePath, "years", tables.Years())

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize local storage: %w", err)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}

	// Services
	calculator, err := payrollService.NewCalculator(lookup, cfg.Payroll.PayFrequency)
	if err != nil {
		return err
	}
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, logger)
	timesheetSvc := timesheetService.NewTimesheetService(timesheetRepo, employeeRepo, cfg.Payroll.WeekStart, logger)
	taxLiabilitySvc := taxLiabilityService.NewTaxLiabilityService(ledgerRepo, logger)
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		payrollRepo,
		employeeRepo,
		timesheetRepo,
		calculator,
		taxLiabilitySvc,
		outboxRepo,
		fileStorage,
		cfg.Kafka.Topic,
		logger,
	)

	// Outbox relay
	scheduler := cron.NewScheduler(logger)
	if len(cfg.Kafka.Brokers) > 0 {
		writer := outbox.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.WriteTimeout)
		defer writer.Close()
		relay := outbox.NewRelay(outboxRepo, writer, cfg.Outbox.BatchSize, logger)
		cron.NewOutboxJobs(relay, cfg.Outbox.Interval).RegisterJobs(scheduler)
	} else {
		logger.Warn("KAFKA_BROKERS not set, committed run events stay in the outbox")
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		logger,
		middleware.NewUserRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst),
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			FilesDir:       cfg.Storage.BasePath,
		},
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewTimesheetHandler(timesheetSvc),
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewTaxLiabilityHandler(taxLiabilitySvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
