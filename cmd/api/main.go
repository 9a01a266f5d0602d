package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/azizikri/coupon-distributor/internal/auth"
	"github.com/azizikri/coupon-distributor/internal/config"
	httphandler "github.com/azizikri/coupon-distributor/internal/delivery/http"
	"github.com/azizikri/coupon-distributor/internal/delivery/kafka"
	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/azizikri/coupon-distributor/internal/repository"
	"github.com/azizikri/coupon-distributor/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Load()

	pool, err := initDB(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.RunMigrations(pool, "db/migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	store := repository.New(pool)

	if err := seedAdmin(context.Background(), store, cfg, log); err != nil {
		log.Fatal("failed to seed admin user", zap.Error(err))
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	audit := kafka.NewNoopPublisher()
	var kafkaClient *kgo.Client
	if cfg.AuditOn() {
		kafkaClient, err = kgo.NewClient(
			kgo.SeedBrokers(strings.Split(cfg.KafkaBrokers, ",")...),
			kgo.ClientID(cfg.KafkaClientID),
		)
		if err != nil {
			log.Fatal("failed to create kafka client", zap.Error(err))
		}

		if err := kafka.EnsureTopics(ctx, kafkaClient, cfg); err != nil {
			log.Warn("failed to ensure audit topic", zap.Error(err))
		}

		audit = kafka.NewPublisher(cfg, kafkaClient, log)
	}

	claims := usecase.NewClaimService(store, audit)
	provision := usecase.NewProvisionService(store, audit)
	users := usecase.NewUserService(store, tokens)

	handler := httphandler.NewHandler(claims, provision, users, tokens, log)

	r := chi.NewRouter()
	r.Use(httphandler.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler.Routes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("starting server", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}

	if kafkaClient != nil {
		kafkaClient.Close()
	}

	wg.Wait()
	log.Info("shutdown complete")
}

func initDB(cfg *config.Config) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// seedAdmin creates the bootstrap administrator account on first start.
// Subsequent starts find the account and leave it untouched.
func seedAdmin(ctx context.Context, store repository.Store, cfg *config.Config, log *zap.Logger) error {
	_, err := store.GetUserByAccount(ctx, cfg.AdminAccount)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := domain.User{
		Name:         "Administrator",
		Account:      cfg.AdminAccount,
		PasswordHash: hash,
		Capabilities: domain.MergeCapabilities(domain.CapAdmin, domain.CapSignIn, domain.CapInventory, domain.CapClaim),
	}
	if err := store.CreateUser(ctx, &admin); err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return nil
		}
		return err
	}

	log.Info("seeded admin user", zap.String("account", cfg.AdminAccount))
	return nil
}
