package align

import (
	"context"
	"sync"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"v.io/x/lib/vlog"
)

// admissionPollInterval is the coarse sleep the multi-threaded path uses
// while waiting for a worker slot to free up.
const admissionPollInterval = time.Second

// Driver is the Search Driver: it pulls reads from an InputSource into
// successive Batches, runs them under the configured worker parallelism,
// and hands completed batch outputs to a Collator strictly in batch_oid
// order.
type Driver struct {
	Config  *RunConfig
	Seed    *BatchSeed
	Builder BatchBuilder
	Source  InputSource
	Temp    *TempStore
	Out     *Collator
}

// NewDriver assembles a Driver from its already-constructed collaborators.
func NewDriver(cfg *RunConfig, seed *BatchSeed, builder BatchBuilder, source InputSource, temp *TempStore, out *Collator) *Driver {
	return &Driver{Config: cfg, Seed: seed, Builder: builder, Source: source, Temp: temp, Out: out}
}

// loopState is the main loop's mutable cursor; it is touched only by the
// driver goroutine.
type loopState struct {
	curQId        int
	batchStartQId int
	batchNum      int
	nextOid       int
}

func (st *loopState) advance(b Batch, strict bool) {
	st.curQId = b.EndQId()
	if !strict || b.Filled() {
		st.batchStartQId = st.curQId
		st.batchNum++
	}
}

// Run consumes the input source to completion (or to end_batch), writes the
// final ordered output, and returns.
func (d *Driver) Run(ctx context.Context) (err error) {
	if err = d.Config.Validate(); err != nil {
		return err
	}
	if !d.Config.ForcePaired && !d.Config.ForceUnpaired {
		return errors.E("invalid configuration: neither paired nor unpaired search requested")
	}

	columns := d.Config.Columns()
	actual, err := d.Source.Open(ctx, columns)
	if err != nil {
		return errors.E(err, "search driver: failed to open input source")
	}
	defer func() {
		if cerr := d.Source.Close(ctx); cerr != nil {
			log.Error.Printf("search driver: failed to close input source: %v", cerr)
		}
	}()
	if actual != columns {
		if d.Config.ForcePaired {
			return errors.E("input: paired search is requested but input is not paired")
		}
		return errors.E("input: unpaired search is requested but input is paired")
	}

	defer func() {
		if cerr := d.Temp.Cleanup(ctx); cerr != nil {
			log.Error.Printf("search driver: failed to remove temp files on exit: %v", cerr)
		}
	}()

	if d.Config.Workers == 1 {
		err = d.runSingleThreaded(ctx)
	} else {
		err = d.runMultiThreaded(ctx)
	}
	if closeErr := d.Out.Close(ctx); err == nil {
		err = closeErr
	}
	if err == nil {
		d.Seed.Stats.LogSummary(d.metricsPrefix())
	}
	return err
}

func (d *Driver) metricsPrefix() string {
	if d.Config.MetricsPrefix != "" {
		return d.Config.MetricsPrefix
	}
	return "search driver"
}

// buildNextBatch performs steps 3a-3c of the Main loop: compute remaining
// capacity, construct the next batch, and register its output file.
func (d *Driver) buildNextBatch(ctx context.Context, st *loopState) (b Batch, oid int, path string, skip bool, err error) {
	remaining := d.Seed.EffectiveBatchLimit - (st.curQId - st.batchStartQId)
	oid = st.nextOid
	st.nextOid++
	b, err = d.Builder.Build(ctx, d.Seed, d.Source, oid, st.batchNum, st.curQId, remaining)
	if err != nil {
		return nil, oid, "", false, errors.E(err, "search driver: failed to construct batch", "oid", oid)
	}
	path = OutSAMName(d.Temp, oid)
	skip = st.batchNum < d.Config.StartBatch || st.batchNum > d.Config.EndBatch
	return b, oid, path, skip, nil
}

// runSingleThreaded runs every batch inline on the driver goroutine. It is
// the only path insert-size discovery may use, since the discovered
// distribution must tune later batches deterministically.
func (d *Driver) runSingleThreaded(ctx context.Context) error {
	st := &loopState{batchNum: 1}
	for st.batchNum <= d.Config.EndBatch {
		b, oid, path, skip, err := d.buildNextBatch(ctx, st)
		if err != nil {
			return err
		}
		if b.ReadCount() == 0 {
			break
		}
		d.Seed.Stats.AddReadsSeen(uint64(b.ReadCount()))

		if skip {
			vlog.Infof("search driver: skipping batch %d (oid %d), outside [%d,%d]",
				st.batchNum, oid, d.Config.StartBatch, d.Config.EndBatch)
			if err := d.Out.Append(ctx, d.Temp, oid, path); err != nil {
				return err
			}
			st.advance(b, d.Config.StrictBatch)
			continue
		}

		cont, err := b.Run(ctx, path)
		if err != nil {
			return errors.E(err, "search driver: batch failed", "oid", oid)
		}
		d.Seed.Stats.RecordBatchComplete(b.ReadCount())
		if err := d.Out.Append(ctx, d.Temp, oid, path); err != nil {
			return err
		}
		st.advance(b, d.Config.StrictBatch)
		if !cont {
			log.Printf("search driver: batch %d requested early stop (insert-size discovery)", oid)
			break
		}
	}
	return nil
}

// workerSlot is a single-writer (worker), single-reader (driver) done flag,
// plus the error the worker observed, if any.
type workerSlot struct {
	mu   sync.Mutex
	done bool
	err  error
}

func (s *workerSlot) setDone(err error) {
	s.mu.Lock()
	s.done, s.err = true, err
	s.mu.Unlock()
}

func (s *workerSlot) isDone() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, s.err
}

// runMultiThreaded runs batches concurrently under a bounded worker pool,
// the same admission-wait-plus-ordered-append shape as
// cmd/bio-bam-sort/sorter.Sorter's background-sorter pool.
func (d *Driver) runMultiThreaded(ctx context.Context) error {
	var (
		wg    sync.WaitGroup
		once  errors.Once
		mu    sync.Mutex // guards slots and paths
		slots = make(map[int]*workerSlot)
		paths = make(map[int]string)

		nextAppend = 0
		lastOid    = -1
	)

	reap := func() {
		mu.Lock()
		defer mu.Unlock()
		for oid, slot := range slots {
			if done, err := slot.isDone(); done {
				if err != nil {
					once.Set(err)
				}
				delete(slots, oid)
			}
		}
	}

	// orderedAppend is the non-blocking ordered-append check: advance
	// nextAppend while it is not present in the active slot set (meaning it
	// has already been reaped).
	orderedAppend := func() {
		mu.Lock()
		defer mu.Unlock()
		for nextAppend <= lastOid {
			if _, active := slots[nextAppend]; active {
				break
			}
			path, ok := paths[nextAppend]
			if !ok {
				break
			}
			if err := d.Out.Append(ctx, d.Temp, nextAppend, path); err != nil {
				once.Set(err)
			}
			delete(paths, nextAppend)
			nextAppend++
		}
	}

	st := &loopState{batchNum: 1}
	for st.batchNum <= d.Config.EndBatch && once.Err() == nil {
		reap()
		for len(slots) >= d.Config.Workers {
			time.Sleep(admissionPollInterval)
			reap()
		}

		b, oid, path, skip, err := d.buildNextBatch(ctx, st)
		if err != nil {
			once.Set(err)
			break
		}
		if b.ReadCount() == 0 {
			break
		}
		d.Seed.Stats.AddReadsSeen(uint64(b.ReadCount()))

		mu.Lock()
		paths[oid] = path
		lastOid = oid
		mu.Unlock()

		if skip {
			vlog.Infof("search driver: skipping batch %d (oid %d), outside [%d,%d]",
				st.batchNum, oid, d.Config.StartBatch, d.Config.EndBatch)
		} else {
			slot := &workerSlot{}
			mu.Lock()
			slots[oid] = slot
			mu.Unlock()
			wg.Add(1)
			go func(b Batch, oid int, path string) {
				defer wg.Done()
				_, runErr := b.Run(ctx, path)
				if runErr != nil {
					runErr = errors.E(runErr, "search driver: batch failed", "oid", oid)
				} else {
					d.Seed.Stats.RecordBatchComplete(b.ReadCount())
				}
				slot.setDone(runErr)
			}(b, oid, path)
		}
		st.advance(b, d.Config.StrictBatch)
		orderedAppend()
	}

	// Drain: join every outstanding worker, then perform a final,
	// unconditional ordered-append sweep up to the last constructed oid.
	wg.Wait()
	reap()
	mu.Lock()
	for nextAppend <= lastOid {
		if _, active := slots[nextAppend]; active {
			vlog.Fatalf("search driver: oid %d still active after join", nextAppend)
		}
		path, ok := paths[nextAppend]
		if ok {
			if err := d.Out.Append(ctx, d.Temp, nextAppend, path); err != nil {
				once.Set(err)
			}
			delete(paths, nextAppend)
		}
		nextAppend++
	}
	mu.Unlock()

	return once.Err()
}
