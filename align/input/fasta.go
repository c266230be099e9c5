package input

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/bio/align"
	"github.com/grailbio/bio/encoding/fasta"
)

// FASTASource is an align.InputSource backed by an in-memory fasta.Fasta,
// one read per named sequence, for single-column unpaired runs against
// reference-style FASTA query input. It has no quality scores; Next
// populates Qual1 with an all-'I' string (Phred 40) the same length as
// Seq1, the placeholder encoding/fastq itself uses nowhere but that SAM
// writers downstream expect a qual string of matching length.
type FASTASource struct {
	Path string

	in     file.File
	data   fasta.Fasta
	names  []string
	pos    int
	curQId int
	err    error
}

// NewFASTASource creates a FASTASource reading the single FASTA file at
// path. Only unpaired (single-column) runs are supported.
func NewFASTASource(path string) *FASTASource {
	return &FASTASource{Path: path}
}

// Open implements align.InputSource.
func (s *FASTASource) Open(ctx context.Context, columns int) (int, error) {
	if columns != 1 {
		return 0, errors.E("input: FASTA source only supports unpaired (single-column) runs")
	}
	in, r, err := openDecompressed(ctx, s.Path)
	if err != nil {
		return 0, err
	}
	s.in = in
	data, err := fasta.New(r, fasta.OptClean)
	if err != nil {
		return 0, errors.E(err, "input: failed to parse FASTA", s.Path)
	}
	s.data = data
	s.names = data.SeqNames()
	return 1, nil
}

// Close implements align.InputSource.
func (s *FASTASource) Close(ctx context.Context) error {
	if s.in == nil {
		return nil
	}
	return s.in.Close(ctx)
}

// Next implements align.InputSource.
func (s *FASTASource) Next(r *align.Read) bool {
	if s.pos >= len(s.names) {
		return false
	}
	name := s.names[s.pos]
	s.pos++
	length, err := s.data.Len(name)
	if err != nil {
		s.err = errors.E(err, "input: failed to measure FASTA sequence", name)
		return false
	}
	seq, err := s.data.Get(name, 0, length)
	if err != nil {
		s.err = errors.E(err, "input: failed to fetch FASTA sequence", name)
		return false
	}
	r.Name, r.Seq1 = name, seq
	r.Qual1 = placeholderQual(len(seq))
	r.Seq2, r.Qual2 = "", ""
	s.curQId++
	return true
}

// Err implements align.InputSource.
func (s *FASTASource) Err() error { return s.err }

// CurQId implements align.InputSource.
func (s *FASTASource) CurQId() int { return s.curQId }

func placeholderQual(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'I'
	}
	return string(b)
}
