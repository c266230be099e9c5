package align

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// FakeInputSource is a fake InputSource backed by an in-memory read list;
// only for unittests of the Driver's scheduling logic (the real input
// source is out of scope, per align/input).
type FakeInputSource struct {
	Reads   []Read
	Columns int // the actual column count Open reports

	pos int
	err error
}

// Open implements InputSource.
func (s *FakeInputSource) Open(ctx context.Context, columns int) (int, error) {
	s.pos = 0
	return s.Columns, nil
}

// Close implements InputSource.
func (s *FakeInputSource) Close(ctx context.Context) error { return nil }

// Next implements InputSource.
func (s *FakeInputSource) Next(r *Read) bool {
	if s.pos >= len(s.Reads) {
		return false
	}
	*r = s.Reads[s.pos]
	s.pos++
	return true
}

// Err implements InputSource.
func (s *FakeInputSource) Err() error { return s.err }

// CurQId implements InputSource.
func (s *FakeInputSource) CurQId() int { return s.pos }

// fakeBatch is FakeBatchBuilder's Batch; only for unittests.
type fakeBatch struct {
	oid, batchNum, startQId, endQId, readCount int
	filled                                     bool
	names                                      []string
	noContinue                                 bool
}

func (b *fakeBatch) OID() int       { return b.oid }
func (b *fakeBatch) BatchNum() int  { return b.batchNum }
func (b *fakeBatch) StartQId() int  { return b.startQId }
func (b *fakeBatch) EndQId() int    { return b.endQId }
func (b *fakeBatch) ReadCount() int { return b.readCount }
func (b *fakeBatch) Filled() bool   { return b.filled }

// Run writes one line per read it consumed; a batch that consumed zero
// reads produces no output file at all, matching what a skipped real batch
// would leave behind.
func (b *fakeBatch) Run(ctx context.Context, outputPath string) (bool, error) {
	if b.readCount == 0 {
		return !b.noContinue, nil
	}
	out, err := file.Create(ctx, outputPath)
	if err != nil {
		return false, errors.E(err, "fakebatch: failed to create output", outputPath)
	}
	w := out.Writer(ctx)
	for _, name := range b.names {
		if _, err := fmt.Fprintf(w, "%s\toid=%d\n", name, b.oid); err != nil {
			return false, errors.E(err, "fakebatch: failed to write output")
		}
	}
	if err := out.Close(ctx); err != nil {
		return false, errors.E(err, "fakebatch: failed to close output", outputPath)
	}
	return !b.noContinue, nil
}

// FakeBatchBuilder is a BatchBuilder that pulls reads directly from a
// FakeInputSource; only for unittests of the Driver's scheduling logic.
type FakeBatchBuilder struct {
	// StopAfterOID, if >= 0, makes the batch with that oid report "do not
	// continue", simulating insert-size discovery's early stop.
	StopAfterOID int
}

// NewFakeBatchBuilder creates a FakeBatchBuilder with early-stop disabled.
func NewFakeBatchBuilder() *FakeBatchBuilder {
	return &FakeBatchBuilder{StopAfterOID: -1}
}

// Build implements BatchBuilder.
func (fb *FakeBatchBuilder) Build(ctx context.Context, seed *BatchSeed, source InputSource, oid, batchNum, startQId, limit int) (Batch, error) {
	b := &fakeBatch{oid: oid, batchNum: batchNum, startQId: startQId, endQId: startQId}
	var r Read
	for limit > 0 && b.readCount < limit && source.Next(&r) {
		b.names = append(b.names, r.Name)
		b.readCount++
		b.endQId++
	}
	if err := source.Err(); err != nil {
		return nil, err
	}
	b.filled = limit > 0 && b.readCount == limit
	b.noContinue = oid == fb.StopAfterOID
	return b, nil
}
