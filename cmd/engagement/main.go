package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZetoOfficial/engagement-analytics/internal/app"
	"github.com/ZetoOfficial/engagement-analytics/internal/cli"
	"github.com/ZetoOfficial/engagement-analytics/internal/config"
	"github.com/ZetoOfficial/engagement-analytics/internal/logger"
	"github.com/ZetoOfficial/engagement-analytics/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type store interface {
	app.Storage
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func main() {
	os.Exit(run(os.Args[0], os.Args[1:], os.Stderr))
}

// run returns the process exit code only after the store is closed.
func run(name string, argv []string, stderr io.Writer) int {
	if err := godotenv.Load(config.DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Errorf("load env: %v", err)
		return 1
	}

	args, err := cli.ParseArgs(name, argv, stderr)
	if err != nil {
		logrus.Error(err)
		return 2
	}

	if err := logger.Setup(args.LogLevel, args.LogFile); err != nil {
		logrus.Error(err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logrus.Infof("Получен сигнал: %s. Завершение работы...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	myApp := app.NewApp(nil)
	if !args.List {
		s, err := openStore(ctx)
		if err != nil {
			logrus.Errorf("open store: %v", err)
			return 1
		}
		defer func() {
			if err := s.Close(context.Background()); err != nil {
				logrus.Warningf("close store: %v", err)
			}
		}()
		if err := s.Ping(ctx); err != nil {
			logrus.Errorf("Не удалось подключиться к хранилищу: %v", err)
			return 1
		}
		logrus.Info("Подключение к хранилищу успешно установлено")
		myApp = app.NewApp(s)
	}

	if err := myApp.Run(ctx, args); err != nil {
		logrus.Error(err)
		return 1
	}

	logrus.Info("Программа завершена успешно.")
	return 0
}

var openStore = func(ctx context.Context) (store, error) {
	switch backend := config.GetEnv(config.EnvStoreBackend, config.BackendNeo4j); backend {
	case config.BackendNeo4j:
		return storage.NewNeo4jStorage(
			os.Getenv(config.EnvNeo4jURI),
			os.Getenv(config.EnvNeo4jUser),
			os.Getenv(config.EnvNeo4jPassword),
			config.GetEnv(config.EnvNeo4jDatabase, "neo4j"),
		)
	case config.BackendPostgres:
		return storage.NewPostgresStorage(ctx, os.Getenv(config.EnvDatabaseURL))
	case config.BackendFixture:
		return storage.NewFixtureStorage(config.GetEnv(config.EnvFixtureFile, "fixture.yaml"))
	default:
		return nil, errors.New("unknown store backend " + backend)
	}
}
