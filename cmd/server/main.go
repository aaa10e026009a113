package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	router "github.com/jatinupadhyay27/my-meet/internal/adapters/http"
	"github.com/jatinupadhyay27/my-meet/internal/app"
	"github.com/jatinupadhyay27/my-meet/internal/app/orch"
	"github.com/jatinupadhyay27/my-meet/internal/config"
	"github.com/jatinupadhyay27/my-meet/internal/meetings"
	"github.com/jatinupadhyay27/my-meet/internal/recordstore"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := recordstore.New(cfg.RecordingsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open recording store")
	}
	recorder := app.NewRecorder(store)

	repo, err := buildRepo(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect meeting store")
	}
	cache := buildCache(cfg)
	svc, err := meetings.NewService(repo, cache, []byte(cfg.Secret), cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build meetings service")
	}

	o := &orch.Orchestrator{
		Registry:  app.NewRegistry(),
		Rooms:     app.NewRoomManager(recorder.OnOccupancy),
		Directory: svc,
		Policy:    app.SimplePolicy{},
	}

	r := router.SetupRouter(ctx, cfg, o, svc, store)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("my-meet coordinator started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	// Finalize in-flight recordings before the process exits.
	recorder.Shutdown()
	log.Info().Msg("Server exited gracefully")
}

// buildRepo picks mongo when configured, otherwise the in-memory repo so
// dev mode runs with no infrastructure.
func buildRepo(ctx context.Context, cfg *config.Config) (meetings.Repo, error) {
	if cfg.MongoURI == "" {
		log.Warn().Msg("mongo_uri not set, meeting metadata is in-memory only")
		return meetings.NewMemoryRepo(), nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, err
	}
	return meetings.NewMongoRepo(client, cfg.MongoDatabase), nil
}

func buildCache(cfg *config.Config) *meetings.Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	return meetings.NewCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
}
