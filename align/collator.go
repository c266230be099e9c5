package align

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// Collator is the Output Collator: it owns the final alignment output and
// appends each batch's per-batch output artifact onto it, strictly in
// ascending batch_oid order. Appending is the Driver's responsibility to
// sequence; Collator itself only rejects an append whose oid is not exactly
// one past the last appended oid.
type Collator struct {
	out     file.File
	path    string
	lastOid int
}

// NewCollator creates (or truncates) the final output file at path.
func NewCollator(ctx context.Context, path string) (*Collator, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "output collator: failed to create final output", path)
	}
	return &Collator{out: out, path: path, lastOid: -1}, nil
}

// Append copies the batch output file at srcPath onto the end of the final
// output and removes it from temp once copied. oid must be exactly one
// greater than the oid of the last successful Append; this is a programming
// error to violate, since only the Driver calls Append and it alone is
// responsible for sequencing.
//
// A batch that was skipped (outside [start_batch, end_batch]) or produced no
// alignments never created srcPath; a missing file contributes zero bytes
// and is not an error.
func (c *Collator) Append(ctx context.Context, temp *TempStore, oid int, srcPath string) (err error) {
	if oid != c.lastOid+1 {
		return errors.E("output collator: out-of-order append", "oid", oid, "expected", c.lastOid+1)
	}
	in, openErr := file.Open(ctx, srcPath)
	if openErr != nil {
		if e, ok := openErr.(*errors.Error); ok && e.Kind == errors.NotExist {
			log.Debug.Printf("output collator: batch %d produced no output file, skipping", oid)
			c.lastOid = oid
			return nil
		}
		return errors.E(openErr, "output collator: failed to open batch output", "oid", oid, srcPath)
	}
	defer file.CloseAndReport(ctx, in, &err)
	if _, err = io.Copy(c.out.Writer(ctx), in.Reader(ctx)); err != nil {
		return errors.E(err, "output collator: failed to append batch output", "oid", oid, srcPath)
	}
	if rmErr := temp.Remove(ctx, srcPath); rmErr != nil {
		log.Error.Printf("output collator: failed to remove batch output %v after append: %v", srcPath, rmErr)
	}
	c.lastOid = oid
	return nil
}

// Close finalizes the final output file. It must be called exactly once,
// after the last Append.
func (c *Collator) Close(ctx context.Context) error {
	if err := c.out.Close(ctx); err != nil {
		return errors.E(err, "output collator: failed to close final output", c.path)
	}
	return nil
}
