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

	"github.com/example/configurator-checkout/internal/adapter/cache"
	"github.com/example/configurator-checkout/internal/adapter/httpapi"
	"github.com/example/configurator-checkout/internal/adapter/natsstan"
	"github.com/example/configurator-checkout/internal/adapter/paypal"
	"github.com/example/configurator-checkout/internal/adapter/repo"
	"github.com/example/configurator-checkout/internal/adapter/session"
	"github.com/example/configurator-checkout/internal/config"
	"github.com/example/configurator-checkout/internal/domain"
	"github.com/example/configurator-checkout/internal/usecase"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("checkout: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "checkout",
		Usage: "order pricing and payment service for the product configurator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path (yaml, toml or json)",
				EnvVars: []string{"CHECKOUT_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}
}

func connect(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}

func migrate(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	pool, err := connect(c.Context, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := repo.EnsureSchema(c.Context, pool); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	log.Printf("migrations applied")
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	prices, err := cfg.PriceTable()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := repo.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	events, closeEvents := newPublisher(cfg.Stan)
	defer closeEvents()

	var configurations domain.ConfigurationStore = repo.NewPostgresConfigurationRepo(pool)
	if cfg.CacheConfig {
		configurations = cache.NewReadThrough(configurations)
	}
	ucOrder := usecase.CreateOrder{
		Configurations: configurations,
		Sessions:       session.Provider{},
		Orders:         repo.NewPostgresOrderRepo(pool),
		Prices:         prices,
		Events:         events,
	}
	ucPayment := usecase.CreatePayment{
		Orders: ucOrder,
		Payments: paypal.NewClient(paypal.Config{
			BaseURL:      cfg.PayPal.BaseURL,
			ClientID:     cfg.PayPal.ClientID,
			ClientSecret: cfg.PayPal.ClientSecret,
			Timeout:      cfg.PayPal.Timeout,
		}),
		Events:   events,
		ItemName: cfg.PayPal.ItemName,
	}
	if cfg.PayPal.ClientID == "" {
		log.Printf("WARN: paypal credentials not set, payment requests will fail")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(ucOrder, ucPayment, cfg.UserHeader),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		log.Printf("http listening on %s", srv.Addr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
	case <-ctx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
	return nil
}

// newPublisher подключается к NATS Streaming; при ошибке сервис работает без событий.
func newPublisher(cfg config.StanConfig) (domain.EventPublisher, func()) {
	if !cfg.Enabled {
		return natsstan.NopPublisher{}, func() {}
	}
	p, err := natsstan.Connect(cfg.ClusterID, cfg.ClientID, cfg.URL, cfg.Subject)
	if err != nil {
		log.Printf("WARN: order events disabled: %v", err)
		return natsstan.NopPublisher{}, func() {}
	}
	return p, func() {
		if err := p.Close(); err != nil {
			log.Printf("stan close: %v", err)
		}
	}
}
