package cmd

import (
	"fmt"

	"github.com/keystroke-labs/lantern/internal/complete"
	"github.com/keystroke-labs/lantern/internal/config"
	"github.com/keystroke-labs/lantern/internal/index"
	"github.com/keystroke-labs/lantern/internal/item"
	"github.com/keystroke-labs/lantern/internal/learn"
	"github.com/keystroke-labs/lantern/internal/reconcile"
	"github.com/keystroke-labs/lantern/internal/sources"
)

// app bundles the wired stores and engines behind each command.
type app struct {
	cfg        *config.Config
	store      *index.Store
	learner    *learn.Store
	registry   *item.Registry
	engine     *complete.Engine
	reconciler *reconcile.Reconciler
	sources    []item.Source
	actions    []item.Action
}

// openApp loads the configuration and opens every store. Callers own
// the returned app and must Close it.
func openApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	srcs, err := sources.FromConfig(cfg.Sources)
	if err != nil {
		return nil, err
	}

	store, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	learner, err := learn.Open(cfg.Learn.Path)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open learning store: %w", err)
	}

	engineCfg := complete.DefaultConfig()
	engineCfg.MinRelevance = cfg.Completion.MinRelevance
	engineCfg.MaxAlternates = cfg.Completion.MaxAlternates
	engineCfg.SourcePriority = cfg.Completion.SourcePriority

	engine, err := complete.New(store, learner, engineCfg)
	if err != nil {
		_ = learner.Close()
		_ = store.Close()
		return nil, err
	}

	registry := sources.DefaultRegistry()

	return &app{
		cfg:        cfg,
		store:      store,
		learner:    learner,
		registry:   registry,
		engine:     engine,
		reconciler: reconcile.New(store, registry),
		sources:    srcs,
		actions:    sources.DefaultActions(),
	}, nil
}

func (a *app) Close() {
	_ = a.learner.Close()
	_ = a.store.Close()
}
