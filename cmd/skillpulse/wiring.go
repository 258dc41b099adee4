package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/amishk599/skillpulse/internal/advisor"
	"github.com/amishk599/skillpulse/internal/ai"
	"github.com/amishk599/skillpulse/internal/catalog"
	"github.com/amishk599/skillpulse/internal/config"
	"github.com/amishk599/skillpulse/internal/filter"
	"github.com/amishk599/skillpulse/internal/gap"
	"github.com/amishk599/skillpulse/internal/market"
	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/normalize"
	"github.com/amishk599/skillpulse/internal/notifier"
	"github.com/amishk599/skillpulse/internal/ratelimit"
	"github.com/amishk599/skillpulse/internal/retry"
	"github.com/amishk599/skillpulse/internal/score"
	"github.com/amishk599/skillpulse/internal/store"
	"github.com/amishk599/skillpulse/internal/summary"
	"github.com/amishk599/skillpulse/internal/trend"
)

// app holds everything a command needs, built once from config.
type app struct {
	cfg     *config.Config
	store   store.Store
	demand  *market.DemandCache
	service *advisor.Service
	logger  *slog.Logger
	closers []func() error
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	st, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	cache, err := openCache(ctx, cfg.Cache, st, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if rc, ok := cache.(*store.RedisCache); ok {
		a.closers = append(a.closers, rc.Close)
	}

	roles := catalog.Default()
	if cfg.Catalog.Path != "" {
		if roles, err = catalog.LoadFile(cfg.Catalog.Path); err != nil {
			a.Close()
			return nil, err
		}
		logger.Info("role catalog loaded", "path", cfg.Catalog.Path, "roles", roles.Len())
	}

	n, closeNotifier, err := setupNotifier(cfg.Notification, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeNotifier)

	client, err := setupGenerator(ctx, cfg.AI, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, client.Close)

	a.demand = market.NewDemandCache(st, cfg.Trend.DemandCacheTTL, logger)
	scorer := score.NewScorer(score.NewEngine(), normalize.New(logger), a.demand)

	banned := filter.DefaultBannedKeywords
	if cfg.Filter.BannedKeywords != nil {
		banned = cfg.Filter.BannedKeywords
	}

	var history model.HistoryStore
	if st.SupportsHistory() {
		history = st
	}
	trends := trend.NewSynthesizer(history, st, trend.Config{
		BaseDemand: cfg.Trend.BaseDemand,
		Classifier: trendClassifier(cfg.Filter),
	}, logger)

	pipeline := summary.NewPipeline(summary.Deps{
		Candidates: st,
		Client:     ratelimit.NewClient(client, ratelimit.NewProviderLimiter(cfg.AI.MinDelay)),
		Cache:      cache,
		Notifier:   n,
		Filter:     filter.NewContentFilter(banned),
		Retry:      retry.NewPolicy(cfg.AI.MaxAttempts, cfg.AI.BaseDelay, cfg.AI.Timeout, logger).WithMaxDelay(cfg.AI.MaxDelay),
		Scorer:     scorer,
		CacheTTL:   cfg.Cache.TTL,
	}, logger)

	a.service = advisor.New(advisor.Deps{
		Candidates: st,
		Roles:      roles,
		Scorer:     scorer,
		Gaps:       gap.NewAnalyzer(a.demand, nil),
		Learning:   gap.NewLearningPlanner(a.demand),
		Trends:     trends,
		Summaries:  pipeline,
		Demand:     a.demand,
	}, logger)

	return a, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		st, err := store.NewPostgresStore(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		logger.Info("using postgres store")
		return st, nil
	case "none":
		logger.Info("storage disabled, serving the built-in market table")
		return store.NewNopStore(market.NewStaticTable(nil)), nil
	default:
		st, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Debug("using sqlite store", "path", cfg.Path)
		return st, nil
	}
}

// openCache returns the summary cache. The "store" driver reuses st, which
// reports SupportsCache false when storage is disabled.
func openCache(ctx context.Context, cfg config.CacheConfig, st store.Store, logger *slog.Logger) (model.CacheStore, error) {
	switch cfg.Driver {
	case "redis":
		c, err := store.NewRedisCache(ctx, store.RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using redis summary cache", "addr", cfg.RedisAddr)
		return c, nil
	case "none":
		return store.NewNopStore(nil), nil
	default:
		return st, nil
	}
}

func setupNotifier(cfg config.NotificationConfig, logger *slog.Logger) (model.Notifier, func() error, error) {
	nop := func() error { return nil }
	switch cfg.Type {
	case "slack":
		logger.Info("using slack notifier")
		httpClient := &http.Client{Timeout: 30 * time.Second}
		return notifier.NewSlackNotifier(cfg.WebhookURL, httpClient, logger), nop, nil
	case "amqp":
		n, err := notifier.DialAMQP(cfg.AMQPURL, cfg.Exchange, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using amqp notifier", "exchange", cfg.Exchange)
		return n, n.Close, nil
	default:
		return notifier.NewLogNotifier(logger), nop, nil
	}
}

func setupGenerator(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (ai.Client, error) {
	client, err := ai.NewClient(ctx, ai.Settings{
		Enabled:     cfg.Enabled,
		Provider:    cfg.Provider,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		HTTPTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ai client: %w", err)
	}
	if client.Available() {
		logger.Info("ai generation enabled", "provider", client.Name(), "model", cfg.Model)
	}
	return client, nil
}

// trendClassifier builds the rising/declining classifier from configured
// keyword lists. It returns nil when neither list is overridden.
func trendClassifier(cfg config.FilterConfig) *filter.Classifier {
	if cfg.RisingKeywords == nil && cfg.DecliningKeywords == nil {
		return nil
	}
	rising, declining := filter.DefaultRisingKeywords, filter.DefaultDecliningKeywords
	if cfg.RisingKeywords != nil {
		rising = cfg.RisingKeywords
	}
	if cfg.DecliningKeywords != nil {
		declining = cfg.DecliningKeywords
	}
	return filter.NewClassifier(filter.TrendRules(rising, declining), filter.LabelStable)
}

// withApp loads config, builds the app for a one-shot command and runs fn.
// Logs go to stderr so stdout carries only command output.
func withApp(fn func(ctx context.Context, a *app) error) error {
	logger := newLogger(os.Stderr, debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func parseCandidateID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("candidate id must be a positive integer, got %q", s)
	}
	return id, nil
}
