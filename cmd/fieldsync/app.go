package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Guizzs26/go-field-sync/internal/config"
	"github.com/Guizzs26/go-field-sync/internal/db"
	"github.com/Guizzs26/go-field-sync/internal/models"
	"github.com/Guizzs26/go-field-sync/internal/service"
	"github.com/Guizzs26/go-field-sync/internal/transport"
	"github.com/Guizzs26/go-field-sync/pkg/infra"
)

// app owns the process-wide resources: opened once before a command runs,
// released once after it returns
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  db.Store
	repo   *service.Repository
}

func (a *app) open(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := infra.SetupLogger(cfg)
	slog.SetDefault(logger)

	store, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	a.cfg = cfg
	a.logger = logger
	a.store = store
	a.repo = service.NewRepository(store, models.DefaultRegistry(), logger)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	errs = append(errs, infra.CloseLogger())
	return errors.Join(errs...)
}

// transmitter builds the configured ingest transport. release must be called
// once the sync pass is over
func (a *app) transmitter(ctx context.Context) (service.Transmitter, func(), error) {
	switch a.cfg.Transport {
	case config.TransportAMQP:
		c, err := a.connectRabbitMQ(ctx)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	default:
		c := transport.NewHTTPIngestClient(a.cfg.IngestBaseURL, a.cfg.IngestTimeout, a.logger)
		return c, func() {}, nil
	}
}

// connectRabbitMQ dials the broker, backing off between failed attempts
func (a *app) connectRabbitMQ(ctx context.Context) (*transport.RabbitMQIngestClient, error) {
	backoff := infra.NewBackoff(time.Second, 10*time.Second, 2.0)

	var lastErr error
	for attempt := 1; attempt <= a.cfg.SyncMaxAttempts; attempt++ {
		c, err := transport.NewRabbitMQIngestClient(a.cfg.RabbitMQURL, a.cfg.RabbitMQExchange, a.cfg.RabbitMQQueue, a.logger)
		if err == nil {
			a.logger.Info("RabbitMQ link established", "exchange", a.cfg.RabbitMQExchange)
			return c, nil
		}
		lastErr = err

		if attempt == a.cfg.SyncMaxAttempts {
			break
		}
		a.logger.Error("RabbitMQ link failure, retrying", "attempt", attempt, "error", err)
		if err := backoff.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("rabbitmq unreachable: %w", lastErr)
}

func (a *app) syncService(t service.Transmitter) *service.SyncService {
	return service.NewSyncService(a.repo, t, a.repo.Registry(), service.RetryPolicy{
		MaxAttempts: a.cfg.SyncMaxAttempts,
		MinDelay:    a.cfg.RetryMinDelay,
		MaxDelay:    a.cfg.RetryMaxDelay,
	}, a.logger)
}
