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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/iliyamo/train-seat-reservation/internal/config"
	"github.com/iliyamo/train-seat-reservation/internal/handler"
	"github.com/iliyamo/train-seat-reservation/internal/metrics"
	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/queue"
	"github.com/iliyamo/train-seat-reservation/internal/repository"
	"github.com/iliyamo/train-seat-reservation/internal/router"
	"github.com/iliyamo/train-seat-reservation/internal/service"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func run() error {
	var envFile, addr, seedFile string
	flagSet := pflag.NewFlagSet("train-server", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flagSet.StringVar(&addr, "addr", "", "listen address (default :$APP_PORT)")
	flagSet.StringVar(&seedFile, "seed", "", "YAML train seed file (overrides TRAIN_SEED_FILE)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if err := config.LoadEnv(envFile); err != nil {
		return err
	}
	cfg := config.Load()
	if seedFile != "" {
		cfg.TrainSeedFile = seedFile
	}
	if addr == "" {
		addr = ":" + cfg.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	catalog := repository.NewTrainCatalog(stores.trains)
	if err := catalog.Load(ctx); err != nil {
		return err
	}
	users := repository.NewUserDirectory(stores.users, cfg.BcryptCost)
	if err := users.Load(ctx); err != nil {
		return err
	}
	if err := seedTrains(ctx, catalog, cfg.TrainSeedFile); err != nil {
		return err
	}
	if err := ensureAdmin(ctx, users, cfg.AdminUser, cfg.AdminPassword); err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	for _, t := range catalog.List() {
		m.SetSeatsAvailable(t.TrainID, t.Seats.AvailableCount())
	}

	opts := []service.Option{service.WithMetrics(m)}
	qcfg := config.LoadQueueConfig()
	if qcfg.Enabled {
		opts = append(opts, service.WithPublisher(service.NewAMQPPublisher(qcfg.URL)))
		if qcfg.Consume {
			go func() {
				if err := queue.StartTicketConsumer(ctx, qcfg.URL, cfg.LogDir); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("ticket-consumer: stopped: %v", err)
				}
			}()
		}
	}
	reservations := service.NewReservationManager(catalog, users, opts...)

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret)
	router.RegisterTrains(e, handler.NewTrainHandler(reservations), cfg.JWTSecret, config.LoadCacheConfig(), rdb)
	router.RegisterTickets(e, handler.NewTicketHandler(reservations), cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (env=%s, store=%s, trains=%d)", addr, cfg.Env, cfg.StoreBackend, len(catalog.List()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func seedTrains(ctx context.Context, catalog *repository.TrainCatalog, path string) error {
	if path == "" {
		return nil
	}
	trains, err := repository.LoadTrainSeed(path)
	if err != nil {
		return err
	}
	added, err := catalog.SeedIfMissing(ctx, trains)
	if err != nil {
		return fmt.Errorf("seeding trains from %s: %w", path, err)
	}
	log.Printf("seed: %d of %d trains added from %s", added, len(trains), path)
	return nil
}

func ensureAdmin(ctx context.Context, users *repository.UserDirectory, name, password string) error {
	if name == "" {
		return nil
	}
	if u, ok := users.Find(name); ok {
		if u.EffectiveRole() != model.RoleAdmin {
			log.Printf("admin: user %q exists without the ADMIN role; leaving it unchanged", name)
		}
		return nil
	}
	if _, err := users.Register(ctx, name, password, model.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin %q: %w", name, err)
	}
	log.Printf("admin: created %q", name)
	return nil
}
