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

// Package kernel is the default, built-in align.BatchBuilder: it reports
// every read unmapped. Seeding, extension and scoring against the subject
// index are a separate, much larger concern left for a real search kernel
// to plug in via align.BatchBuilder; this package exists so the driver is
// runnable end-to-end without one, and so the ordering/collation machinery
// in align can be exercised against real (if trivially negative) per-read
// output.
package kernel

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/bio/align"
)

// SAM FLAG bits. An unpaired unmapped read sets flagUnmapped; paired reads
// additionally set flagPaired|flagMateUnmapped and flagRead1/flagRead2.
const (
	flagPaired       = 0x1
	flagUnmapped     = 0x4
	flagMateUnmapped = 0x8
	flagRead1        = 0x40
	flagRead2        = 0x80
)

// Builder is the no-op kernel's align.BatchBuilder: Build pulls up to limit
// reads (or pairs) from source and returns a Batch that, when run, writes
// one (or two) minimal unmapped SAM records per read.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder { return &Builder{} }

type batch struct {
	oid, batchNum, startQId, endQId, readCount int
	filled                                     bool
	paired, skipUnmapped                       bool
	reads                                      []align.Read
}

func (b *batch) OID() int       { return b.oid }
func (b *batch) BatchNum() int  { return b.batchNum }
func (b *batch) StartQId() int  { return b.startQId }
func (b *batch) EndQId() int    { return b.endQId }
func (b *batch) ReadCount() int { return b.readCount }
func (b *batch) Filled() bool   { return b.filled }

// Run writes the batch's unmapped SAM records. If skipUnmapped is set (as
// every record in this kernel is unmapped), nothing is written and no
// output file is created, the same zero-byte-contribution convention
// align.Collator already tolerates for skipped batches.
func (b *batch) Run(ctx context.Context, outputPath string) (cont bool, err error) {
	if len(b.reads) == 0 || b.skipUnmapped {
		return true, nil
	}
	out, err := file.Create(ctx, outputPath)
	if err != nil {
		return false, errors.E(err, "kernel: failed to create batch output", outputPath)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := out.Writer(ctx)
	for _, r := range b.reads {
		if err = writeUnmapped(w, r.Name, r.Seq1, r.Qual1, b.paired, flagRead1); err != nil {
			return false, errors.E(err, "kernel: failed to write record", r.Name)
		}
		if b.paired {
			if err = writeUnmapped(w, r.Name, r.Seq2, r.Qual2, b.paired, flagRead2); err != nil {
				return false, errors.E(err, "kernel: failed to write record", r.Name)
			}
		}
	}
	return true, nil
}

func writeUnmapped(w interface{ Write([]byte) (int, error) }, name, seq, qual string, paired bool, mate int) error {
	flags := flagUnmapped
	if paired {
		flags |= flagPaired | flagMateUnmapped | mate
	}
	if seq == "" {
		seq, qual = "*", "*"
	}
	_, err := fmt.Fprintf(w, "%s\t%d\t*\t0\t0\t*\t*\t0\t0\t%s\t%s\n", name, flags, seq, qual)
	return err
}

// Build implements align.BatchBuilder.
func (k *Builder) Build(ctx context.Context, seed *align.BatchSeed, source align.InputSource, oid, batchNum, startQId, limit int) (align.Batch, error) {
	b := &batch{
		oid: oid, batchNum: batchNum, startQId: startQId, endQId: startQId,
		paired:       seed.Config.ForcePaired,
		skipUnmapped: seed.Config.SkipUnmapped,
	}
	var r align.Read
	for limit > 0 && b.readCount < limit && source.Next(&r) {
		b.reads = append(b.reads, r)
		b.readCount++
		b.endQId++
	}
	if err := source.Err(); err != nil {
		return nil, err
	}
	b.filled = limit > 0 && b.readCount == limit
	if seed.Config.Randomize {
		// A real search kernel would use this to seed randomized
		// tie-breaking; this kernel has nothing to break ties over, but
		// derives and records it anyway so Stats' summary line reflects
		// reproducible seed derivation regardless of which kernel is wired in.
		align.DeriveBatchSeed(seed.Config.Seed, oid)
		seed.Stats.AddSeedDerived()
	}
	return b, nil
}
