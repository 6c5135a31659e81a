package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Guizzs26/go-field-sync/internal/mapper"
	"github.com/Guizzs26/go-field-sync/internal/models"
	"github.com/Guizzs26/go-field-sync/pkg/infra"
	"github.com/Guizzs26/go-field-sync/pkg/metrics"
)

// RecordRepository defines the record persistence the sync engine relies on
type RecordRepository interface {
	LoadAll(ctx context.Context, t models.RecordType) ([]models.Record, error)
	MarkSynced(ctx context.Context, t models.RecordType, ids []string) (int, error)
	Stats(ctx context.Context) (map[models.RecordType]models.Counts, error)
}

// Transmitter defines the contract for delivering one plot batch to the collector.
// A nil error means the whole batch was accepted. SyncService never cancels the
// context of a send, so implementations bound each call with their own timeout
type Transmitter interface {
	Transmit(ctx context.Context, b mapper.Batch) error
}

// RetryPolicy bounds the attempts made for a group failing with transient errors
type RetryPolicy struct {
	MaxAttempts int
	MinDelay    time.Duration
	MaxDelay    time.Duration
}

// SyncService moves pending records from the local store to the remote collector,
// one plot group at a time
type SyncService struct {
	repo        RecordRepository
	transmitter Transmitter
	registry    models.Registry
	retry       RetryPolicy
	logger      *slog.Logger

	// one pass at a time
	mu sync.Mutex
}

func NewSyncService(r RecordRepository, t Transmitter, reg models.Registry, p RetryPolicy, l *slog.Logger) *SyncService {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.MaxDelay < p.MinDelay {
		p.MaxDelay = p.MinDelay
	}
	return &SyncService{
		repo:        r,
		transmitter: t,
		registry:    reg,
		retry:       p,
		logger:      l,
	}
}

// SyncAll runs one pass over every record type in registry order.
// Transport failures are isolated per group and land in the report; a store
// failure or cancellation ends the pass and is returned with the partial report
func (s *SyncService) SyncAll(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	report := &Report{StartedAt: start}

	defer func() {
		report.FinishedAt = time.Now()
		metrics.PassDuration.Observe(report.FinishedAt.Sub(start).Seconds())

		s.logger.Info("Sync pass telemetry",
			"groups", len(report.Groups),
			"succeeded", len(report.Succeeded()),
			"failed", len(report.Failed()),
			"skipped", len(report.Skipped()),
			"duration_ms", report.FinishedAt.Sub(start).Milliseconds(),
		)
	}()

	for _, desc := range s.registry {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Sync pass cancelled before record type", "record_type", desc.Type)
			return report, err
		}

		if err := s.syncType(ctx, desc, report); err != nil {
			return report, err
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return report, fmt.Errorf("collect stats: %w", err)
	}
	report.Stats = stats
	for t, c := range stats {
		metrics.PendingRecords.WithLabelValues(string(t)).Set(float64(c.Pending))
	}

	return report, nil
}

func (s *SyncService) syncType(ctx context.Context, desc models.Descriptor, report *Report) error {
	records, err := s.repo.LoadAll(ctx, desc.Type)
	if err != nil {
		return fmt.Errorf("load %s records: %w", desc.Type, err)
	}

	plan := PlanGroups(records)
	if len(plan) == 0 {
		s.logger.Debug("Nothing pending", "record_type", desc.Type)
		return nil
	}

	s.logger.Info("Syncing record type",
		"record_type", desc.Type,
		"groups", len(plan),
		"pending", plan.Pending(),
	)

	for i, g := range plan {
		select {
		case <-ctx.Done():
			s.logger.Warn("Shutdown signal received. Skipping remaining groups.",
				"record_type", desc.Type,
				"remaining", len(plan)-i,
			)
			for _, rest := range plan[i:] {
				report.Groups = append(report.Groups, GroupResult{
					Type:   desc.Type,
					PlotID: rest.PlotID,
					Count:  len(rest.Records),
					Status: StatusSkipped,
					Err:    ctx.Err(),
				})
				metrics.GroupsProcessed.WithLabelValues(string(StatusSkipped), string(desc.Type)).Inc()
			}
			return ctx.Err()
		default:
		}

		res, err := s.syncGroup(ctx, desc, g)
		report.Groups = append(report.Groups, res)
		metrics.GroupsProcessed.WithLabelValues(string(res.Status), string(desc.Type)).Inc()
		if err != nil {
			return err
		}
	}

	return nil
}

// syncGroup transmits one plot group. The returned error is reserved for store
// failures; transport failures are reported through the result
func (s *SyncService) syncGroup(ctx context.Context, desc models.Descriptor, g Group) (GroupResult, error) {
	res := GroupResult{Type: desc.Type, PlotID: g.PlotID, Count: len(g.Records)}
	l := s.logger.With("record_type", desc.Type, "plot_id", g.PlotID)

	batch, err := mapper.BuildBatch(desc, g.PlotID, g.Records)
	if err != nil {
		l.Error("Could not build batch", "error", err)
		res.Status = StatusFailed
		res.Err = err
		return res, nil
	}

	metrics.GroupSize.Observe(float64(len(batch.Items)))

	// A batch already on the wire is never abandoned halfway; the transport timeout bounds it
	sendCtx := context.WithoutCancel(ctx)
	bo := infra.NewBackoff(s.retry.MinDelay, s.retry.MaxDelay, 2.0)

	for {
		res.Attempts++
		err = s.transmitter.Transmit(sendCtx, batch)
		if err == nil || !models.IsRetryable(err) || res.Attempts >= s.retry.MaxAttempts {
			break
		}

		metrics.TransmitRetries.WithLabelValues(string(desc.Type)).Inc()
		l.Warn("Transient ingest failure, retrying",
			"attempt", res.Attempts,
			"max_attempts", s.retry.MaxAttempts,
			"error", err,
		)
		if werr := bo.Wait(ctx); werr != nil {
			break
		}
	}

	if err != nil {
		l.Error("Group transmission failed, records stay pending",
			"records", len(g.Records),
			"attempts", res.Attempts,
			"error", err,
		)
		res.Status = StatusFailed
		res.Err = err
		return res, nil
	}

	// The collector holds the batch now; record that even if the caller is leaving
	n, err := s.repo.MarkSynced(context.WithoutCancel(ctx), desc.Type, batch.RecordIDs)
	if err != nil {
		l.Error("CRITICAL: Batch accepted but sync state not persisted", "error", err)
		res.Status = StatusFailed
		res.Err = err
		return res, fmt.Errorf("mark %s/%s synced: %w", desc.Type, g.PlotID, err)
	}

	metrics.RecordsSynced.WithLabelValues(string(desc.Type)).Add(float64(n))
	l.Info("Group synced", "records", n, "attempts", res.Attempts)

	res.Status = StatusSucceeded
	return res, nil
}
