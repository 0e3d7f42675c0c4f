package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

const DefaultBatchSize = 1000

// ErrRunInProgress is returned when an import or clear is already running on
// the same Importer.
var ErrRunInProgress = errors.New("ingestion run already in progress")

// Store is the write side of the energy store.
type Store interface {
	DeleteAllNILM(ctx context.Context) (int64, error)
	InsertNILMBatch(ctx context.Context, records []models.NILMRecord) error
	DeleteAllPV(ctx context.Context) (int64, error)
	InsertPVBatch(ctx context.Context, records []models.PVRecord) error
}

type Importer struct {
	Store Store
	// BatchSize defaults to DefaultBatchSize.
	BatchSize int
	// SampleWhenEmpty fills Office/LA with generated readings when no NILM
	// source file exists at all.
	SampleWhenEmpty bool
	// PVBase is the instant PV hour 0 maps to. Zero means the start of the run.
	PVBase  time.Time
	Metrics *Metrics
	Now     func() time.Time

	mu sync.Mutex
}

func New(store Store) *Importer {
	return &Importer{Store: store, BatchSize: DefaultBatchSize}
}

func (im *Importer) batchSize() int {
	if im.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return im.BatchSize
}

func (im *Importer) now() time.Time {
	if im.Now == nil {
		return time.Now().UTC()
	}
	return im.Now().UTC()
}

func (im *Importer) lock() error {
	if !im.mu.TryLock() {
		return ErrRunInProgress
	}
	return nil
}

// Clear removes every record of kind.
func (im *Importer) Clear(ctx context.Context, kind Kind) (int64, error) {
	if err := im.lock(); err != nil {
		return 0, err
	}
	defer im.mu.Unlock()

	switch kind {
	case KindNILM:
		return im.Store.DeleteAllNILM(ctx)
	case KindPV:
		return im.Store.DeleteAllPV(ctx)
	default:
		return 0, fmt.Errorf("unknown record kind %q", kind)
	}
}

// insertBatches writes an in-memory record set in order, one batch at a
// time, stopping at the first failed batch.
func insertBatches[T any](ctx context.Context, records []T, size int, insert func(context.Context, []T) error) (int, int, error) {
	b := &batcher[T]{size: size, insert: insert}
	for _, chunk := range common.Chunk(records, size) {
		b.buf = chunk
		if err := b.flush(ctx); err != nil {
			return b.written, b.batches, err
		}
	}
	return b.written, b.batches, nil
}

// batcher buffers streamed records and inserts them once size is reached.
// The buffer is reused after each insert.
type batcher[T any] struct {
	size    int
	insert  func(context.Context, []T) error
	buf     []T
	written int
	batches int
}

func (b *batcher[T]) add(ctx context.Context, record T) error {
	b.buf = append(b.buf, record)
	if len(b.buf) >= b.size {
		return b.flush(ctx)
	}
	return nil
}

func (b *batcher[T]) flush(ctx context.Context) error {
	if len(b.buf) == 0 {
		return nil
	}
	if err := b.insert(ctx, b.buf); err != nil {
		return fmt.Errorf("batch %d: %w", b.batches+1, err)
	}
	b.written += len(b.buf)
	b.batches++
	b.buf = b.buf[:0]
	return nil
}
