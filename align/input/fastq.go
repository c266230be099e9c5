// Package input holds the default align.InputSource implementations: a
// FASTQ-backed source (single file for unpaired, two files for paired) and
// a FASTA-backed source (unpaired only). Parsing itself is out of scope of
// the align package; these are thin adapters over this repository's own
// encoding/fastq and encoding/fasta decoders.
package input

import (
	"context"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/bio/align"
	"github.com/grailbio/bio/encoding/fastq"
)

// FASTQSource is the default align.InputSource backed by one (unpaired) or
// two (paired) FASTQ files, with transparent compression detection, the
// same pattern as cmd/bio-fusion/main.go's readFASTQ.
type FASTQSource struct {
	Path1, Path2 string // Path2 empty requests unpaired input

	in1, in2 file.File
	single   *fastq.Scanner
	pair     *fastq.PairScanner
	curQId   int
	err      error
}

// NewFASTQSource creates a FASTQSource. path2 may be empty for unpaired
// input.
func NewFASTQSource(path1, path2 string) *FASTQSource {
	return &FASTQSource{Path1: path1, Path2: path2}
}

func openDecompressed(ctx context.Context, path string) (file.File, io.Reader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "input: failed to open", path)
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	return in, r, nil
}

// Open implements align.InputSource.
func (s *FASTQSource) Open(ctx context.Context, columns int) (int, error) {
	in1, r1, err := openDecompressed(ctx, s.Path1)
	if err != nil {
		return 0, err
	}
	s.in1 = in1
	if s.Path2 == "" {
		s.single = fastq.NewScanner(r1, fastq.ID|fastq.Seq|fastq.Qual)
		return 1, nil
	}
	in2, r2, err := openDecompressed(ctx, s.Path2)
	if err != nil {
		return 0, err
	}
	s.in2 = in2
	s.pair = fastq.NewPairScanner(r1, r2, fastq.ID|fastq.Seq|fastq.Qual)
	return 2, nil
}

// Close implements align.InputSource.
func (s *FASTQSource) Close(ctx context.Context) error {
	var once errors.Once
	if s.in1 != nil {
		once.Set(s.in1.Close(ctx))
	}
	if s.in2 != nil {
		once.Set(s.in2.Close(ctx))
	}
	return once.Err()
}

// Next implements align.InputSource.
func (s *FASTQSource) Next(r *align.Read) bool {
	if s.pair != nil {
		var r1, r2 fastq.Read
		if !s.pair.Scan(&r1, &r2) {
			s.err = s.pair.Err()
			return false
		}
		r.Name, r.Seq1, r.Qual1 = r1.ID, r1.Seq, r1.Qual
		r.Seq2, r.Qual2 = r2.Seq, r2.Qual
		s.curQId++
		return true
	}
	var rd fastq.Read
	if !s.single.Scan(&rd) {
		s.err = s.single.Err()
		return false
	}
	r.Name, r.Seq1, r.Qual1 = rd.ID, rd.Seq, rd.Qual
	r.Seq2, r.Qual2 = "", ""
	s.curQId++
	return true
}

// Err implements align.InputSource.
func (s *FASTQSource) Err() error { return s.err }

// CurQId implements align.InputSource.
func (s *FASTQSource) CurQId() int { return s.curQId }
