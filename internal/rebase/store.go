package rebase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rpi-index-lab/internal/domain"
)

// IndexStore owns the index records and the active rebasing snapshot.
// Records are immutable after construction; the snapshot is replaced
// wholesale on every successful rebase.
type IndexStore struct {
	// rebaseMu serializes rebases so listeners observe snapshots in version order.
	rebaseMu sync.Mutex

	mu       sync.RWMutex
	records  []domain.IndexRecord // sorted by ordinal
	snapshot *Snapshot            // nil until the first successful rebase
	version  uint64

	logger    *slog.Logger
	tracer    trace.Tracer
	listeners []func(*Snapshot)
}

// Option configures an IndexStore.
type Option func(*IndexStore)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *IndexStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracerProvider enables diagnostic spans for rebasing.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *IndexStore) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// OnRebase registers fn to be called after each successful rebase.
// Callbacks run synchronously and in version order; they must not call Rebase.
func OnRebase(fn func(*Snapshot)) Option {
	return func(s *IndexStore) {
		s.listeners = append(s.listeners, fn)
	}
}

// NewIndexStore builds a store from normalized records.
// Returns ErrInvalidPeriod or ErrDuplicatePeriod on bad input.
func NewIndexStore(records []domain.IndexRecord, opts ...Option) (*IndexStore, error) {
	s := &IndexStore{
		records: make([]domain.IndexRecord, len(records)),
		logger:  slog.Default(),
		tracer:  defaultTracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "rebase.index_store"))

	copy(s.records, records)
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].Ordinal() < s.records[j].Ordinal()
	})

	seen := make(map[domain.Period]struct{}, len(s.records))
	for _, r := range s.records {
		p := r.Period()
		if !p.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, p.Label())
		}
		if _, exists := seen[p]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePeriod, p.Label())
		}
		seen[p] = struct{}{}
	}

	return s, nil
}

// Len returns the number of records.
func (s *IndexStore) Len() int {
	return len(s.records)
}

// Records returns a copy of all records ordered by period.
func (s *IndexStore) Records() []domain.IndexRecord {
	out := make([]domain.IndexRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Snapshot returns the active snapshot, or nil before the first rebase.
func (s *IndexStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// BasePeriod returns the active base, or domain.DefaultBasePeriod before the first rebase.
func (s *IndexStore) BasePeriod() domain.Period {
	if snap := s.Snapshot(); snap != nil {
		return snap.Base
	}
	return domain.DefaultBasePeriod
}

// Rebase recomputes every derived value against base and makes the result active.
// On error the previous snapshot stays active. Concurrent calls are serialized.
func (s *IndexStore) Rebase(ctx context.Context, base domain.Period) (*Snapshot, error) {
	s.rebaseMu.Lock()
	defer s.rebaseMu.Unlock()

	_, span := s.tracer.Start(ctx, "rebase.Rebase", trace.WithAttributes(
		attribute.String("rebase.base", base.Label()),
		attribute.Int("rebase.records", len(s.records)),
	))
	defer span.End()

	// Records never change, so readers are only blocked for the swap.
	snap, err := Compute(s.records, base)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.mu.Lock()
	s.version++
	snap.Version = s.version
	s.snapshot = snap
	listeners := s.listeners
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Float64("rebase.index_multiplier", snap.IndexMultiplier),
		attribute.Float64("rebase.nominal_multiplier", snap.NominalMultiplier),
		attribute.Int64("rebase.version", int64(snap.Version)),
	)
	s.logger.Debug("rebased index series",
		slog.String("base", base.Label()),
		slog.Uint64("version", snap.Version),
		slog.Float64("index_multiplier", snap.IndexMultiplier),
		slog.Float64("nominal_multiplier", snap.NominalMultiplier))

	for _, fn := range listeners {
		fn(snap)
	}

	return snap, nil
}

// SetBasePeriod is the boolean form of Rebase: it reports whether the base
// was applied and logs a warning otherwise. Prior derived state is preserved on failure.
func (s *IndexStore) SetBasePeriod(ctx context.Context, base domain.Period) bool {
	if _, err := s.Rebase(ctx, base); err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, ErrBaseNotFound) && !errors.Is(err, ErrInvalidPeriod) {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "base period not applied",
			slog.String("base", base.Label()),
			slog.String("error", err.Error()))
		return false
	}
	return true
}

// View is a consistent read of the records and the snapshot active at the time of the call.
type View struct {
	Records  []domain.IndexRecord // shared, must not be modified
	Snapshot *Snapshot            // nil before the first rebase
}

// View returns the records together with the active snapshot.
func (s *IndexStore) View() View {
	return View{Records: s.records, Snapshot: s.Snapshot()}
}
