// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// srprism-align runs the batched search driver against a FASTQ (or FASTA)
// input against a pre-built reference dictionary.
//
// Usage: srprism-align -index ref -r1 r1.fastq [-r2 r2.fastq] -output out.sam
package main

import (
	"flag"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bio/align"
	"github.com/grailbio/bio/align/index"
	"github.com/grailbio/bio/align/input"
	"github.com/grailbio/bio/align/kernel"
)

var (
	indexPathFlag = flag.String("index", "", "Base path of the reference index; dictionary is read from <index>.fa")
	r1Flag        = flag.String("r1", "", "FASTQ (or, with -fasta, FASTA) file of R1 reads")
	r2Flag        = flag.String("r2", "", "FASTQ file of R2 reads; if set, search runs in paired mode")
	fastaFlag     = flag.Bool("fasta", false, "Treat -r1 as a FASTA file of unpaired query sequences")
	outputFlag    = flag.String("output", "", "Path to write the final alignment output")
	tempDirFlag   = flag.String("temp-dir", os.TempDir(), "Directory for per-batch temporary output")

	memCapMBFlag   = flag.Int64("memory-limit-mb", 4096, "Hard byte cap, in megabytes, for the run's memory arena")
	batchLimitFlag = flag.Int("batch-size", 10000, "Reads per batch; doubled when -r2 is set, with each read pair counting as one")
	startBatchFlag = flag.Int("start-batch", 1, "First batch_num to execute")
	endBatchFlag   = flag.Int("end-batch", 1<<30, "Last batch_num to execute")
	workersFlag    = flag.Int("workers", 1, "Worker parallelism; 1 selects the single-threaded path")
	strictBatchFlag = flag.Bool("strict-batch", false,
		"Require every counted batch but the last to be full (see -batch-size)")

	errorBudgetFlag  = flag.Int("num-errors", 0, "Per-read error budget forwarded to the search kernel")
	maxQueryLenFlag  = flag.Int("max-query-len", 512, "Upper bound on any one query/read length")
	resultConfigFlag = flag.String("result-config", "1111", "4-char (or aliased) result-configuration string")
	searchModeFlag   = flag.String("mode", "default", "Search mode: default, sumerr, partial or bounderr")
	saStartFlag      = flag.Int("sa-start", 1, "Subject-area scan window start (signed)")
	saEndFlag        = flag.Int("sa-end", 1, "Subject-area scan window end (signed)")

	pairDistanceFlag = flag.Int("pair-distance", 500, "Expected insert size")
	pairFuzzFlag     = flag.Int("pair-fuzz", 100, "Allowed deviation from -pair-distance")

	randomizeFlag = flag.Bool("randomize", false, "Derive a per-batch search seed from -seed")
	seedFlag      = flag.Uint64("seed", 0, "Run seed; combined with batch_oid when -randomize is set")

	skipUnmappedFlag     = flag.Bool("skip-unmapped", false, "Suppress unmapped reads from the final output")
	useQueryIDsFlag      = flag.Bool("use-query-ids", false, "Report queries by name instead of ordinal")
	useSubjectIDsFlag    = flag.Bool("use-subject-ids", false, "Report subjects by name instead of ordinal")
	repeatThresholdFlag  = flag.Int("repeat-threshold", 0, "Seed repetitiveness cap forwarded to the search kernel")
	resultsPerReadFlag   = flag.Int("results-per-read", 10, "Cap on reported alignments per read")
)

func parseSearchMode(s string) (align.SearchMode, error) {
	switch s {
	case "default":
		return align.Default, nil
	case "sumerr":
		return align.SumErr, nil
	case "partial":
		return align.Partial, nil
	case "bounderr":
		return align.BoundErr, nil
	default:
		return 0, errors.E("invalid -mode", s)
	}
}

func buildConfig() (*align.RunConfig, error) {
	mode, err := parseSearchMode(*searchModeFlag)
	if err != nil {
		return nil, err
	}
	cfg := &align.RunConfig{
		MemCapMB:        *memCapMBFlag,
		BatchLimit:      *batchLimitFlag,
		StartBatch:      *startBatchFlag,
		EndBatch:        *endBatchFlag,
		Workers:         *workersFlag,
		ErrorBudget:     *errorBudgetFlag,
		MaxQueryLen:     *maxQueryLenFlag,
		ForcePaired:     *r2Flag != "",
		ForceUnpaired:   *r2Flag == "",
		PairDistance:    *pairDistanceFlag,
		PairFuzz:        *pairFuzzFlag,
		ResultConfig:    *resultConfigFlag,
		SearchMode:      mode,
		SAStart:         *saStartFlag,
		SAEnd:           *saEndFlag,
		Randomize:       *randomizeFlag,
		Seed:            *seedFlag,
		IndexPath:       *indexPathFlag,
		TempDir:         *tempDirFlag,
		OutputPath:      *outputFlag,
		SkipUnmapped:    *skipUnmappedFlag,
		UseQueryIDs:     *useQueryIDsFlag,
		UseSubjectIDs:   *useSubjectIDsFlag,
		RepeatThreshold: *repeatThresholdFlag,
		ResultsPerRead:  *resultsPerReadFlag,
		StrictBatch:     *strictBatchFlag,
		MetricsPrefix:   "srprism-align",
	}
	return cfg, cfg.Validate()
}

func run() error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if *indexPathFlag == "" {
		return errors.E("flag -index is required")
	}
	if *r1Flag == "" {
		return errors.E("flag -r1 is required")
	}
	if *outputFlag == "" {
		return errors.E("flag -output is required")
	}

	ctx := vcontext.Background()
	header, err := loadSubjectDict(ctx, *indexPathFlag)
	if err != nil {
		return err
	}
	idx := index.NewStore(header)
	idmap := index.NewIDMap(idx)
	arena := align.NewArena(cfg.MemCapMB)
	stats := align.NewStats()

	seed, err := align.NewBatchSeed(cfg, arena, idx, idmap, stats)
	if err != nil {
		return err
	}

	var source align.InputSource
	if *fastaFlag {
		source = input.NewFASTASource(*r1Flag)
	} else {
		source = input.NewFASTQSource(*r1Flag, *r2Flag)
	}

	temp := align.NewTempStore(cfg.TempDir)
	out, err := align.NewCollator(ctx, cfg.OutputPath)
	if err != nil {
		return err
	}

	driver := align.NewDriver(cfg, seed, kernel.NewBuilder(), source, temp, out)
	return driver.Run(ctx)
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if err := run(); err != nil {
		log.Panic(err)
	}
}
