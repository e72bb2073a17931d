package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridroom/gridroom-backend/internal/config"
	"github.com/gridroom/gridroom-backend/internal/pubsub"
	"github.com/gridroom/gridroom-backend/internal/repository"
	"github.com/gridroom/gridroom-backend/internal/repository/storage"
	"github.com/gridroom/gridroom-backend/internal/service"
	"github.com/gridroom/gridroom-backend/transport/push"
	"github.com/gridroom/gridroom-backend/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	roomRepo := repository.NewRoomRepository(redisStorage.Connection)
	participantRepo := repository.NewParticipantRepository(redisStorage.Connection)
	statsRepo := repository.NewStatsRepository(sqliteStorage.Connection)

	broker := pubsub.NewBroker(logger, redisStorage.Connection)

	authService := service.NewAuthService(conf.JWTSecretKey)
	botService := service.NewBotService()
	statsService := service.NewStatsService(statsRepo)
	gameplayService := service.NewGameplayService(logger, roomRepo, participantRepo, broker, authService, botService, statsService)

	// run control API server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting control API server", "port", conf.HTTPPort)
		restServer := rest.New(logger, gameplayService, authService)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("control API server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run push gateway
	pushErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting push gateway", "port", conf.PushPort)
		pushServer := push.New(logger, broker, authService)
		if pushErr := pushServer.Start(ctx, conf.PushPort); pushErr != nil {
			log.Error("push gateway error", "error", pushErr)
			pushErrCh <- pushErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("control API server error: %w", err)
	case err = <-pushErrCh:
		return fmt.Errorf("push gateway error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
