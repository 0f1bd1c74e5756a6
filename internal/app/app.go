package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ZetoOfficial/engagement-analytics/internal/cli"
	"github.com/ZetoOfficial/engagement-analytics/internal/models"
	"github.com/ZetoOfficial/engagement-analytics/internal/reports"
	"github.com/ZetoOfficial/engagement-analytics/internal/storage"
	"github.com/sirupsen/logrus"
)

type Storage interface {
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// Seeder is implemented by stores that accept fixture data.
type Seeder interface {
	Seed(ctx context.Context, data *models.Snapshot) error
}

type App struct {
	storage Storage
	engine  *reports.Engine
}

func NewApp(storage Storage) *App {
	return &App{storage: storage, engine: reports.NewEngine(storage)}
}

// Engine exposes the report engine, e.g. to pin its clock.
func (a *App) Engine() *reports.Engine {
	return a.engine
}

func (a *App) Run(ctx context.Context, args *cli.Args) error {
	switch {
	case args.List:
		for _, name := range reports.Names() {
			r, _ := reports.Lookup(name)
			logrus.WithFields(logrus.Fields{
				"report":   name,
				"ranked":   r.Ranked,
				"windowed": r.Windowed,
			}).Info(r.Description)
		}
		return nil
	case args.Seed != "":
		return a.seed(ctx, args.Seed)
	case args.Dump != "":
		return a.dump(ctx, args.Dump)
	}

	logrus.Infof("Run report: %s", args.Report)
	result, err := a.engine.Run(ctx, args.Report, args.Options)
	if err != nil {
		return fmt.Errorf("run report: %w", err)
	}
	for _, record := range result.Records {
		logrus.WithFields(record.Fields()).Info(result.Report)
	}
	return nil
}

func (a *App) seed(ctx context.Context, path string) error {
	seeder, ok := a.storage.(Seeder)
	if !ok {
		return fmt.Errorf("seed: store %T does not accept writes", a.storage)
	}
	fixture, err := storage.NewFixtureStorage(path)
	if err != nil {
		return err
	}
	data, err := fixture.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	logrus.Info("Save fixture to storage")
	if err := seeder.Seed(ctx, data); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

func (a *App) dump(ctx context.Context, path string) error {
	data, err := a.storage.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	if err := storage.EncodeFixture(f, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("dump: %w", err)
	}
	return f.Close()
}
