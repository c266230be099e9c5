package align

import (
	"context"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/bio/align/index"
)

// BatchSeed is the immutable-once-built payload every Batch in a run is
// constructed from: RunConfig plus the fields the Batch Factory derives
// from it. BatchSeed is safe to share (read only) across concurrent
// workers.
type BatchSeed struct {
	Config                *RunConfig
	IPAM                   IPAM
	CanonicalResultConfig  string
	Arena                  *Arena
	Index                  *index.Store
	IDMap                  *index.IDMap
	Stats                  *Stats
	EffectiveBatchLimit    int
	// UnpairedScratch and PairedScratch are preallocated only on the
	// single-threaded path; nil otherwise.
	UnpairedScratch, PairedScratch []byte
}

// NewBatchSeed is the Batch Factory: it packages RunConfig into an
// immutable BatchSeed, resolving the result-configuration string into an
// IPAM vector and, on the single-threaded path, preallocating the two
// scratch buffers from arena. cfg must already have passed Validate.
func NewBatchSeed(cfg *RunConfig, arena *Arena, idx *index.Store, idmap *index.IDMap, stats *Stats) (*BatchSeed, error) {
	canon, ipam, err := ResolveResultConfig(cfg.ResultConfig, cfg.SAStart)
	if err != nil {
		return nil, err
	}
	seed := &BatchSeed{
		Config:                cfg,
		IPAM:                  ipam,
		CanonicalResultConfig: canon,
		Arena:                 arena,
		Index:                 idx,
		IDMap:                 idmap,
		Stats:                 stats,
		EffectiveBatchLimit:   cfg.EffectiveBatchLimit(),
	}
	if cfg.Workers == 1 {
		unpairedBytes := cfg.BatchLimit * cfg.MaxQueryLen
		pairedBytes := seed.EffectiveBatchLimit * cfg.MaxQueryLen
		if seed.UnpairedScratch, err = arena.Alloc(unpairedBytes); err != nil {
			return nil, errors.E(err, "batch factory: failed to preallocate unpaired scratch buffer")
		}
		if seed.PairedScratch, err = arena.Alloc(pairedBytes); err != nil {
			return nil, errors.E(err, "batch factory: failed to preallocate paired scratch buffer")
		}
	}
	return seed, nil
}

// Batch is a constructed, runnable unit of work over a contiguous slice of
// the input read stream. The alignment kernel's internals (seeding,
// extension, scoring) are out of scope; Batch is opaque beyond this small
// lifecycle contract.
type Batch interface {
	// OID is the dense, strictly increasing output ordinal assigned at
	// construction.
	OID() int
	// BatchNum is the gating index against [StartBatch, EndBatch].
	BatchNum() int
	// StartQId is the query id this batch begins at.
	StartQId() int
	// EndQId is the query id one past this batch's last read; it is set at
	// construction, so it is valid whether or not the batch is Run.
	EndQId() int
	// ReadCount is the number of reads (or read pairs) this batch consumed.
	ReadCount() int
	// Filled reports whether this batch consumed exactly its requested
	// limit, as opposed to running short because the input was exhausted.
	Filled() bool
	// Run executes the batch, writing its results to outputPath. It
	// returns cont=false only when insert-size discovery determines the
	// run should stop early; this is only possible on the single-threaded
	// path.
	Run(ctx context.Context, outputPath string) (cont bool, err error)
}

// DeriveBatchSeed deterministically derives the alignment kernel's
// per-batch PRNG seed from the run seed and batch_oid when
// RunConfig.Randomize is set, so reproducibility holds across worker
// counts without a PRNG shared across goroutines. Kernel implementations
// call this from BatchBuilder.Build.
func DeriveBatchSeed(runSeed uint64, oid int) uint64 {
	return farm.Hash64WithSeed(nil, runSeed+uint64(oid))
}

// BatchBuilder is the out-of-scope alignment kernel's construction entry
// point: it consumes up to limit reads (or read pairs, if seed.Config.
// ForcePaired) from source, advancing it, and returns a new Batch stamped
// with oid/batchNum/startQId. The Driver depends only on this interface,
// not on any particular kernel implementation.
type BatchBuilder interface {
	Build(ctx context.Context, seed *BatchSeed, source InputSource, oid, batchNum, startQId, limit int) (Batch, error)
}
