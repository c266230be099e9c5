package align

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/log"
	"gonum.org/v1/gonum/stat"
)

// Stats is a process-wide, reference-counted aggregator of per-run
// counters. Every counter is updated with sync/atomic so that concurrent
// batches can contribute without a lock; updates are associative and
// commutative regardless of completion order.
type Stats struct {
	readsSeen    uint64
	readsAligned uint64
	batchesRun   uint64
	bytesSpilled uint64
	seedsDerived uint64

	mu              sync.Mutex // guards batchReadCounts only
	batchReadCounts []float64
}

// NewStats creates an empty Stats aggregator.
func NewStats() *Stats {
	return &Stats{}
}

// AddReadsSeen records n reads pulled from the input source into a batch.
func (s *Stats) AddReadsSeen(n uint64) { atomic.AddUint64(&s.readsSeen, n) }

// AddReadsAligned records n reads the kernel reported at least one
// alignment for.
func (s *Stats) AddReadsAligned(n uint64) { atomic.AddUint64(&s.readsAligned, n) }

// AddBytesSpilled records n bytes written to a per-batch spill file.
func (s *Stats) AddBytesSpilled(n uint64) { atomic.AddUint64(&s.bytesSpilled, n) }

// AddSeedDerived records that one more per-batch kernel seed was derived
// via DeriveBatchSeed (RunConfig.Randomize only).
func (s *Stats) AddSeedDerived() { atomic.AddUint64(&s.seedsDerived, 1) }

// RecordBatchComplete records that one more batch finished, with
// readCount reads processed; readCount feeds the end-of-run mean/stddev
// summary.
func (s *Stats) RecordBatchComplete(readCount int) {
	atomic.AddUint64(&s.batchesRun, 1)
	s.mu.Lock()
	s.batchReadCounts = append(s.batchReadCounts, float64(readCount))
	s.mu.Unlock()
}

// Snapshot is a point-in-time, race-free copy of the aggregator's counters.
type Snapshot struct {
	ReadsSeen, ReadsAligned, BatchesRun, BytesSpilled, SeedsDerived uint64
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		ReadsSeen:    atomic.LoadUint64(&s.readsSeen),
		ReadsAligned: atomic.LoadUint64(&s.readsAligned),
		BatchesRun:   atomic.LoadUint64(&s.batchesRun),
		BytesSpilled: atomic.LoadUint64(&s.bytesSpilled),
		SeedsDerived: atomic.LoadUint64(&s.seedsDerived),
	}
}

// LogSummary emits a one-line summary of the run's counters. When at least
// two batches completed, it additionally reports the mean and standard
// deviation of per-batch read counts, computed with gonum/stat.
func (s *Stats) LogSummary(prefix string) {
	snap := s.Snapshot()
	line := fmt.Sprintf("%s: reads=%d aligned=%d batches=%d spilled=%dB seeds=%d",
		prefix, snap.ReadsSeen, snap.ReadsAligned, snap.BatchesRun, snap.BytesSpilled, snap.SeedsDerived)

	s.mu.Lock()
	counts := append([]float64(nil), s.batchReadCounts...)
	s.mu.Unlock()

	if len(counts) >= 2 {
		mean, std := stat.MeanStdDev(counts, nil)
		line += fmt.Sprintf(" batchReads(mean=%.1f stddev=%.1f)", mean, std)
	}
	log.Printf("%s", line)
}
