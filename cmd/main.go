package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sparxfest/cmd/buildCFG"
	"sparxfest/internal/api/api"
	"sparxfest/internal/auth"
	"sparxfest/internal/catalog"
	"sparxfest/internal/mailer"
	"sparxfest/internal/queue"
	"sparxfest/internal/rabbit"
	"sparxfest/internal/repo"
	"sparxfest/internal/service"
	"sparxfest/internal/syncworker"
	"sparxfest/internal/uploader"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	zlog.Init()
	log := zlog.Logger

	cfg := config.New()
	if err := cfg.Load("config.yaml", "", "'"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)
	port := serverCfg.Port

	masterDSN, slaveDSNs, poolOptions, err := buildCFG.BuildDBConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build DB config")
	}
	db, err := dbpg.New(masterDSN, slaveDSNs, poolOptions)
	if err != nil {
		log.Fatal().Msgf("failed to connect to DB: %v", err)
	}
	if err := db.Master.Ping(); err != nil {
		log.Fatal().Msgf("DB ping failed: %v", err)
	}
	log.Info().Msg("Database connected successfully")

	repository, err := repo.NewRepository(db, &log)
	if err != nil {
		log.Fatal().Msgf("failed to initialize repository: %v", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot get working directory")
	}
	migrationPath := filepath.Join(cwd, "migrations/postgres")
	if err := repository.MigrateUp(migrationPath); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("Migrations applied successfully")

	cat, err := catalog.Load(buildCFG.BuildCatalogPath(cfg, &log))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load event catalog")
	}
	log.Info().Msgf("Event catalog loaded (%d events)", len(cat.All()))

	store, err := queue.Open(buildCFG.BuildQueuePath(cfg, &log), &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open offline queue store")
	}
	defer store.Close()

	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RabbitMQ config")
	}
	rmq, err := rabbit.NewClient(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Queue)
	if err != nil {
		log.Fatal().Msgf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rmq.Close()

	var mail *mailer.Mailer
	if mailCfg, ok := buildCFG.BuildMailerConfig(cfg, &log); ok {
		mail = mailer.New(mailCfg, &log)
	}

	uploaderCfg, err := buildCFG.BuildUploaderConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load uploader config")
	}
	uploads := uploader.NewClient(uploaderCfg.Endpoint, uploaderCfg.Preset, &log)

	authCfg, err := buildCFG.BuildAuthConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load auth config")
	}
	provider := auth.NewIdentityClient(authCfg.Endpoint, authCfg.APIKey, &log)
	sessions := auth.NewSessions(authCfg.JWTSecret, authCfg.SessionTTL)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())

	worker := syncworker.NewWorker(rmq, repository, store, mail)
	go worker.Start(workerCtx)

	serviceInstance := service.NewService(service.Deps{
		Repo:     repository,
		Catalog:  cat,
		Uploads:  uploads,
		Provider: provider,
		Sessions: sessions,
		Store:    store,
		Rabbit:   rmq,
		Mail:     mail,
		Log:      &log,
	})
	app := api.NewRouters(&api.Routers{Service: serviceInstance, Sessions: sessions})

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", port)
		if err := app.Run(":" + port); err != nil {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	cancelWorkers()
	worker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if closer, ok := interface{}(app).(interface{ Close(context.Context) error }); ok {
		if err := closer.Close(shutdownCtx); err != nil {
			log.Error().Msgf("Error shutting down server: %v", err)
		}
	}

	log.Info().Msg("Shutdown complete")
}
