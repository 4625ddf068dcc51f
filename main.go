package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/hotel-backoffice/config"
	"github.com/yeremiapane/hotel-backoffice/controllers"
	"github.com/yeremiapane/hotel-backoffice/database"
	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/metrics"
	"github.com/yeremiapane/hotel-backoffice/router"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.SetLogLevel(cfg.Log.Level)
	if cfg.Log.JSON {
		utils.SetJSONFormat()
	}
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Auth.JWTSecret == "" {
		utils.InfoLogger.Warnln("JWT_SECRET is not set, using the development secret")
	}
	utils.ConfigureJWT(cfg.Auth.JWTSecret, cfg.TokenTTL())

	// Initialize DB
	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if err := database.Seed(db, database.SeedOptions{
		AdminName:     cfg.Seed.AdminName,
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
	}); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed database: %v", err)
	}

	events := hub.New()
	var tokens utils.TokenStore = utils.NewMemoryTokenStore()
	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		tokens = utils.NewRedisTokenStore(rdb)
		events.UseRedis(rdb, hub.DefaultChannel)
		utils.InfoLogger.Printf("Using redis at %s for tokens and live events", cfg.Redis.Address)
	}

	var mailer utils.Mailer = utils.LogMailer{}
	if cfg.SMTPEnabled() {
		mailer = utils.NewSMTPMailer(utils.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	controllers.RegisterValidators()
	metrics.Register()

	svc := services.New(db, services.Options{
		TaxRate:        cfg.Billing.TaxRate,
		InvoiceDueDays: cfg.Billing.DueDays,
		Events:         events,
		Mailer:         mailer,
		Tokens:         tokens,
	})

	var scheduler *services.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = services.NewScheduler(svc, tokens, services.SchedulerConfig{
			ReportCron: cfg.Scheduler.ReportCron,
			NoShowCron: cfg.Scheduler.NoShowCron,
		})
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to create scheduler: %v", err)
		}
		scheduler.Start()
	}

	r := router.SetupRouter(router.Deps{
		Services: svc,
		Hub:      events,
		DB:       db,
		Redis:    rdb,
		Config:   cfg,
	})
	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// live events are best effort; the API keeps serving without them
		if err := events.Run(ctx); err != nil {
			utils.ErrorLogger.Errorf("Live events stopped: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		utils.InfoLogger.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if scheduler != nil {
			if err := scheduler.Shutdown(); err != nil {
				utils.ErrorLogger.Errorf("Scheduler shutdown: %v", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		utils.ErrorLogger.Fatalf("Server stopped: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	utils.InfoLogger.Println("Server exited")
}
