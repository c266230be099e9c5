package align

import (
	"github.com/grailbio/base/errors"
)

// SearchMode selects the alignment kernel's search strategy. The kernel
// itself is out of scope for this package; Driver only validates and
// forwards the mode.
type SearchMode int

const (
	// Default selects the kernel's standard search strategy.
	Default SearchMode = iota
	// SumErr selects a search bounded by the sum of substitution+indel errors.
	SumErr
	// Partial allows partial (clipped) alignments.
	Partial
	// BoundErr bounds each error category independently.
	BoundErr
)

func (m SearchMode) String() string {
	switch m {
	case Default:
		return "default"
	case SumErr:
		return "sumerr"
	case Partial:
		return "partial"
	case BoundErr:
		return "bounderr"
	default:
		return "unknown"
	}
}

// Bounds referenced by Validate; these are the repository's chosen
// concrete values for limits left otherwise unfixed.
const (
	// MinResLimit is the smallest allowed ResultsPerRead.
	MinResLimit = 1
	// MaxResLimit is the largest allowed ResultsPerRead.
	MaxResLimit = 1 << 16
	// MaxPairFuzz is the largest allowed PairFuzz.
	MaxPairFuzz = 1 << 20
	// MinQLen is the smallest allowed MaxQueryLen.
	MinQLen = 1
	// MaxQLen is the largest allowed MaxQueryLen.
	MaxQLen = 1 << 16
	// MaxNErr is the largest allowed ErrorBudget.
	MaxNErr = 31
)

// RunConfig is the immutable, once-validated configuration a Driver is
// constructed from. Fields map 1-to-1 to CLI flags (see cmd/srprism-align).
type RunConfig struct {
	// MemCapMB is the hard byte cap (in megabytes) for the Memory Arena.
	MemCapMB int64
	// BatchLimit is the number of reads per batch; under ForcePaired it is
	// doubled (see EffectiveBatchLimit).
	BatchLimit int
	// StartBatch and EndBatch gate which batch_num values actually execute.
	StartBatch, EndBatch int
	// Workers is the worker parallelism. Workers==1 selects the
	// single-threaded path.
	Workers int
	// ErrorBudget is the per-read error budget forwarded to the kernel.
	ErrorBudget int
	// MaxQueryLen bounds the length of any one query/read.
	MaxQueryLen int
	// ForcePaired and ForceUnpaired select the input column count; exactly
	// one may be true.
	ForcePaired, ForceUnpaired bool
	// PairDistance and PairFuzz describe the expected insert-size window.
	PairDistance, PairFuzz int
	// ResultConfig is the 4-char (or aliased) result-configuration string.
	ResultConfig string
	// SearchMode selects the kernel's search strategy.
	SearchMode SearchMode
	// SAStart and SAEnd describe the (signed) subject-area scan window; see
	// ResolveResultConfig for the sign's effect on strand admissibility.
	SAStart, SAEnd int
	// Randomize and Seed control deterministic per-batch seed derivation
	// (see DeriveBatchSeed).
	Randomize bool
	Seed      uint64
	// IndexPath is the base path of the pre-built reference index.
	IndexPath string
	// TempDir is the directory Temp Store files are created under.
	TempDir string
	// OutputPath is the final alignment output path.
	OutputPath string
	// SkipUnmapped suppresses unmapped reads from the final output.
	SkipUnmapped bool
	// UseQueryIDs and UseSubjectIDs select name-based (vs. ordinal) reporting.
	UseQueryIDs, UseSubjectIDs bool
	// RepeatThreshold caps how repetitive a seed may be before it is ignored
	// by the kernel.
	RepeatThreshold int
	// ResultsPerRead caps the number of reported alignments per read.
	ResultsPerRead int
	// StrictBatch requires every counted batch but the last to be full, that
	// is, to hold exactly EffectiveBatchLimit reads (or read pairs); see the
	// Driver's batch_num advancement rule.
	StrictBatch bool
	// MetricsPrefix labels the end-of-run Stats summary line; it does not
	// affect alignment semantics.
	MetricsPrefix string
}

// Validate rejects the first invalid field it finds, returning a
// descriptive error. Validate must be called, and must succeed, before
// Driver.Run begins any work (spec step 1).
func (c *RunConfig) Validate() error {
	switch c.SearchMode {
	case Default, SumErr, Partial, BoundErr:
	default:
		return errors.E("invalid configuration: unknown search mode", c.SearchMode)
	}
	if c.MemCapMB <= 0 {
		return errors.E("invalid configuration: memory limit must be > 0")
	}
	if c.BatchLimit <= 0 {
		return errors.E("invalid configuration: batch limit must be > 0")
	}
	if c.StartBatch < 1 {
		return errors.E("invalid configuration: start batch must be >= 1")
	}
	if c.EndBatch < c.StartBatch {
		return errors.E("invalid configuration: end batch must be >= start batch")
	}
	if c.ResultsPerRead < MinResLimit || c.ResultsPerRead > MaxResLimit {
		return errors.E("invalid configuration: results-per-read limit out of range", c.ResultsPerRead)
	}
	if c.PairDistance == 0 {
		return errors.E("invalid configuration: pair distance must be nonzero")
	}
	if c.PairFuzz > c.PairDistance || c.PairFuzz > MaxPairFuzz {
		return errors.E("invalid configuration: pair fuzz out of range", c.PairFuzz)
	}
	if c.MaxQueryLen < MinQLen || c.MaxQueryLen > MaxQLen {
		return errors.E("invalid configuration: max query length out of range", c.MaxQueryLen)
	}
	if c.ErrorBudget > MaxNErr {
		return errors.E("invalid configuration: error budget too large", c.ErrorBudget)
	}
	if c.ForcePaired && c.ForceUnpaired {
		return errors.E("invalid configuration: both paired search and unpaired search requested")
	}
	if c.SAStart == 0 {
		return errors.E("invalid configuration: sa-start must be nonzero")
	}
	if c.SAStart > 0 && c.SAEnd < c.SAStart {
		return errors.E("invalid configuration: sa-end must be >= sa-start")
	}
	if c.SAStart < 0 && c.SAEnd > c.SAStart {
		return errors.E("invalid configuration: sa-end must be <= sa-start")
	}
	return nil
}

// Columns returns the number of input columns Driver.Run requires of the
// input source: 1 for unpaired, 2 for paired. ForceUnpaired takes
// precedence per spec step 2, matching RunConfig.Validate's mutual
// exclusivity check.
func (c *RunConfig) Columns() int {
	if c.ForceUnpaired {
		return 1
	}
	return 2
}

// EffectiveBatchLimit is the limit each batch is built with: BatchLimit,
// doubled under forced pairing. Batch builders count each read pair as one
// against it, so a paired batch holds up to 2*BatchLimit pairs.
func (c *RunConfig) EffectiveBatchLimit() int {
	if c.ForcePaired {
		return c.BatchLimit * 2
	}
	return c.BatchLimit
}
