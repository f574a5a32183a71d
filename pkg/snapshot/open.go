package snapshot

import (
	"context"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/telemetry"
)

// Open returns the store configured in cfg, with its operations counted in
// m. m may be nil.
func Open(cfg *config.Config, m *telemetry.Metrics) (Store, error) {
	switch cfg.Snapshot.Backend {
	case config.BackendS3:
		client := NewS3Client(cfg.Snapshot.Region, cfg.Snapshot.Endpoint)
		return Instrument(NewS3Store(client, cfg.Snapshot.Bucket, cfg.Snapshot.Prefix), config.BackendS3, m), nil
	case config.BackendDisk, "":
		s, err := NewDiskStore(cfg.SnapshotPath())
		if err != nil {
			return nil, errors.FromError(err, "E061")
		}
		return Instrument(s, config.BackendDisk, m), nil
	default:
		return nil, errors.New("E040").
			WithDetail("unknown snapshot backend " + cfg.Snapshot.Backend)
	}
}

// Instrument wraps s so that every operation is recorded in m under
// backend.
func Instrument(s Store, backend string, m *telemetry.Metrics) Store {
	if m == nil {
		return s
	}
	return &instrumented{Store: s, backend: backend, metrics: m}
}

type instrumented struct {
	Store
	backend string
	metrics *telemetry.Metrics
}

func (s *instrumented) Save(ctx context.Context, snap *Snapshot) error {
	err := s.Store.Save(ctx, snap)
	s.metrics.SnapshotOp(s.backend, "save", err)
	return err
}

func (s *instrumented) Load(ctx context.Context, name string) (*Snapshot, error) {
	snap, err := s.Store.Load(ctx, name)
	s.metrics.SnapshotOp(s.backend, "load", err)
	return snap, err
}

func (s *instrumented) List(ctx context.Context) ([]string, error) {
	names, err := s.Store.List(ctx)
	s.metrics.SnapshotOp(s.backend, "list", err)
	return names, err
}

func (s *instrumented) Delete(ctx context.Context, name string) error {
	err := s.Store.Delete(ctx, name)
	s.metrics.SnapshotOp(s.backend, "delete", err)
	return err
}
