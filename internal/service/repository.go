package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Guizzs26/go-field-sync/internal/db"
	"github.com/Guizzs26/go-field-sync/internal/models"
	"github.com/google/uuid"
)

// Repository owns the per-type record sequences kept in the local store.
// Every operation runs under mu. Read-modify-write cycles also hold the store
// lock when the store is a db.Locker, so other processes sharing it wait too
type Repository struct {
	store    db.Store
	registry models.Registry
	logger   *slog.Logger

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

func NewRepository(s db.Store, reg models.Registry, l *slog.Logger) *Repository {
	return &Repository{
		store:    s,
		registry: reg,
		logger:   l,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// Registry exposes the record types this repository serves
func (r *Repository) Registry() models.Registry {
	return r.registry
}

// Append validates input, then persists a new unsynced record before returning it.
// A validation failure leaves the store untouched
func (r *Repository) Append(ctx context.Context, t models.RecordType, plotID string, input models.Input) (models.Record, error) {
	desc, err := r.registry.Lookup(t)
	if err != nil {
		return models.Record{}, err
	}

	plot, fields, err := desc.Validate(plotID, input)
	if err != nil {
		return models.Record{}, err
	}

	unlock, err := r.lock(ctx)
	if err != nil {
		return models.Record{}, err
	}
	defer unlock()

	records, err := r.load(ctx, desc)
	if err != nil {
		return models.Record{}, err
	}

	rec := models.Record{
		ID:        r.newID(),
		PlotID:    plot,
		CreatedAt: r.now(),
		Synced:    false,
		Fields:    fields,
	}

	if err := r.save(ctx, desc, append(records, rec)); err != nil {
		return models.Record{}, err
	}

	r.logger.Debug("Record captured",
		"record_type", t,
		"record_id", rec.ID,
		"plot_id", rec.PlotID,
	)
	return rec, nil
}

// LoadAll returns the full sequence of a type, empty on first run
func (r *Repository) LoadAll(ctx context.Context, t models.RecordType) ([]models.Record, error) {
	desc, err := r.registry.Lookup(t)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx, desc)
}

// MarkSynced flips exactly the listed records to synced and reports how many
// changed. Already synced or unknown ids are ignored
func (r *Repository) MarkSynced(ctx context.Context, t models.RecordType, ids []string) (int, error) {
	desc, err := r.registry.Lookup(t)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	unlock, err := r.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	records, err := r.load(ctx, desc)
	if err != nil {
		return 0, err
	}

	flipped := 0
	for i := range records {
		if !records[i].Synced && slices.Contains(ids, records[i].ID) {
			records[i].Synced = true
			flipped++
		}
	}

	if flipped == 0 {
		return 0, nil
	}
	if err := r.save(ctx, desc, records); err != nil {
		return 0, err
	}
	return flipped, nil
}

// ClearAll empties the sequence of one type
func (r *Repository) ClearAll(ctx context.Context, t models.RecordType) error {
	desc, err := r.registry.Lookup(t)
	if err != nil {
		return err
	}

	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := r.save(ctx, desc, []models.Record{}); err != nil {
		return err
	}
	r.logger.Info("Record type cleared", "record_type", t)
	return nil
}

// Purge removes every namespace from the store. A failed delete does not stop
// the others; every failure is returned joined
func (r *Repository) Purge(ctx context.Context) error {
	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	var errs []error
	for _, desc := range r.registry {
		if err := r.store.Delete(ctx, desc.StoreKey); err != nil {
			r.logger.Error("Failed to purge namespace", "store_key", desc.StoreKey, "error", err)
			errs = append(errs, &models.StoreIOError{Op: "delete", Key: desc.StoreKey, Err: err})
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.logger.Warn("All local records purged")
	return nil
}

// Stats counts synced and pending records per type
func (r *Repository) Stats(ctx context.Context) (map[models.RecordType]models.Counts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[models.RecordType]models.Counts, len(r.registry))
	for _, desc := range r.registry {
		records, err := r.load(ctx, desc)
		if err != nil {
			return nil, err
		}
		out[desc.Type] = models.CountRecords(records)
	}
	return out, nil
}

// lock serializes one read-modify-write cycle and returns its release func
func (r *Repository) lock(ctx context.Context) (func(), error) {
	r.mu.Lock()

	l, ok := r.store.(db.Locker)
	if !ok {
		return r.mu.Unlock, nil
	}
	release, err := l.Lock(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, &models.StoreIOError{Op: "lock", Key: "*", Err: err}
	}

	return func() {
		if err := release(); err != nil {
			r.logger.Warn("Failed to release store lock", "error", err)
		}
		r.mu.Unlock()
	}, nil
}

func (r *Repository) load(ctx context.Context, desc models.Descriptor) ([]models.Record, error) {
	blob, err := r.store.Read(ctx, desc.StoreKey)
	if errors.Is(err, db.ErrNotFound) {
		return []models.Record{}, nil
	}
	if err != nil {
		return nil, &models.StoreIOError{Op: "read", Key: desc.StoreKey, Err: err}
	}

	var records []models.Record
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, &models.StoreIOError{Op: "decode", Key: desc.StoreKey, Err: err}
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

func (r *Repository) save(ctx context.Context, desc models.Descriptor, records []models.Record) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return &models.StoreIOError{Op: "encode", Key: desc.StoreKey, Err: err}
	}
	if err := r.store.Write(ctx, desc.StoreKey, blob); err != nil {
		return &models.StoreIOError{Op: "write", Key: desc.StoreKey, Err: err}
	}
	return nil
}
