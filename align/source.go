package align

import "context"

// Read is one read (unpaired) or read pair, as pulled from an InputSource.
// Seq2/Qual2 are empty for unpaired reads.
type Read struct {
	Name        string
	Seq1, Qual1 string
	Seq2, Qual2 string
}

// InputSource is the read stream the Driver (and, through it, the
// out-of-scope alignment kernel) pulls reads from. Decoding FASTA/FASTQ/SRA
// is out of scope for this package; see github.com/grailbio/bio/align/input
// for default implementations grounded in this repository's own
// FASTQ/FASTA decoders.
type InputSource interface {
	// Open opens the source for the given requested column count (1
	// unpaired, 2 paired) and returns the actual column count found, so
	// the Driver can detect a paired/unpaired mismatch.
	Open(ctx context.Context, columns int) (actualColumns int, err error)
	// Close releases any resources Open acquired.
	Close(ctx context.Context) error
	// Next reads one read (or read pair) into r, returning false once the
	// stream is exhausted or an error occurs; check Err afterwards.
	Next(r *Read) bool
	// Err returns the first error Next encountered, or nil at a clean EOF.
	Err() error
	// CurQId returns the query id of the next unread read, i.e. the number
	// of reads (or pairs) returned by Next so far.
	CurQId() int
}
