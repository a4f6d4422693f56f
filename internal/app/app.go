package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/adaptive-quiz/internal/config"
	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
	"github.com/aliskhannn/adaptive-quiz/internal/infra/postgres"
	"github.com/aliskhannn/adaptive-quiz/internal/infra/redis"
	"github.com/aliskhannn/adaptive-quiz/internal/repository"
	"github.com/aliskhannn/adaptive-quiz/internal/service"
	"github.com/aliskhannn/adaptive-quiz/internal/storage"
)

type learnerStore interface {
	service.LearnerStore
	Close() error
}

// App holds the services shared by the HTTP server and the Telegram bot.
type App struct {
	Cfg      *config.Config
	Log      *zap.Logger
	Bank     *repository.QuestionBankRepository
	Store    service.LearnerStore
	Practice *service.PracticeService
	Reports  *service.ReportService

	closers []func() error
}

// New wires the question bank, the learner store, the optional attempt journal
// and the adaptive services.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	log.Info("loading question bank", zap.String("path", cfg.QuestionBankPath))
	bank, err := repository.NewQuestionBankRepository(cfg.QuestionBankPath)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	adaptive := adaptiveConfig(cfg.Adaptive)
	a := &App{Cfg: cfg, Log: log, Bank: bank}

	store, err := newLearnerStore(ctx, cfg, service.NewLearnerFactory(bank, adaptive.Mastery.InitialMastery))
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)
	log.Info("learner store ready", zap.String("driver", cfg.Store.Driver))

	var journal service.AttemptJournal
	if cfg.DB.Enabled() {
		j, err := a.openJournal(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		journal = j
		log.Info("attempt journal enabled")
	}

	selector := service.NewTopicSelector(nil, adaptive.GreedyProbability)
	a.Practice = service.NewPracticeService(bank, store, journal, selector, adaptive, log)
	a.Reports = service.NewReportService(bank, store, adaptive)

	return a, nil
}

// Sweeper returns the eviction sweeper of the learner store and any extra targets.
func (a *App) Sweeper(extra ...service.Evictor) *service.EvictionSweeper {
	targets := append([]service.Evictor{a.Store}, extra...)
	return service.NewEvictionSweeper(a.Cfg.Store.SweepSchedule, a.Log, targets...)
}

// Close releases store and database connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.Log.Sync()
	return errors.Join(errs...)
}

func (a *App) openJournal(ctx context.Context) (*service.JournalService, error) {
	dsn, err := a.Cfg.DB.DSN()
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(a.Cfg.DB.MaxConnections),
		MaxConnLifetime: a.Cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		return nil, fmt.Errorf("ensure journal schema: %w", err)
	}

	return service.NewJournalService(postgres.NewTransactor(pool)), nil
}

func newLearnerStore(ctx context.Context, cfg *config.Config, factory entities.LearnerFactory) (learnerStore, error) {
	switch cfg.Store.Driver {
	case config.StoreRedis:
		rdb, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return redis.NewLearnerStore(rdb, cfg.Redis.Prefix, cfg.Store.TTL, factory), nil
	default:
		return storage.NewLearnerStorage(cfg.Store.TTL, factory), nil
	}
}

func adaptiveConfig(c config.Adaptive) service.AdaptiveConfig {
	return service.AdaptiveConfig{
		Mastery: entities.MasteryRules{
			InitialMastery: c.InitialMastery,
			StepUp:         c.StepUp,
			StepDown:       c.StepDown,
			RecentWindow:   c.RecentWindow,
		},
		GreedyProbability: c.GreedyProbability,
		TargetSuccess:     c.TargetSuccess,
		HintMinAttempts:   c.HintMinAttempts,
		HintErrorRate:     c.HintErrorRate,
	}
}
