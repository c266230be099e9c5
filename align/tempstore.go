package align

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// TempStore is a scoped registry of temporary file paths under a configured
// temp directory. Every path it hands out is removed when Cleanup runs,
// regardless of whether the run that created it succeeded. Registration
// happens only on the driver goroutine, so TempStore's mutex exists only to
// make repeated registration of the same prefix safe to call defensively,
// not to support concurrent registration.
type TempStore struct {
	dir string

	mu       sync.Mutex
	byPrefix map[string]string
	order    []string
}

// NewTempStore creates a TempStore rooted at dir.
func NewTempStore(dir string) *TempStore {
	return &TempStore{dir: dir, byPrefix: make(map[string]string)}
}

// Register returns the full path for prefix, creating and remembering one
// on first call. Subsequent calls with the same prefix return the same
// path; registration is idempotent.
func (t *TempStore) Register(prefix string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if path, ok := t.byPrefix[prefix]; ok {
		return path
	}
	path := filepath.Join(t.dir, prefix)
	t.byPrefix[prefix] = path
	t.order = append(t.order, path)
	return path
}

// Remove removes a single previously registered path immediately (used by
// the Collator once a batch's output has been appended) and forgets it, so
// a later Cleanup does not attempt to remove it again.
func (t *TempStore) Remove(ctx context.Context, path string) error {
	t.mu.Lock()
	for prefix, p := range t.byPrefix {
		if p == path {
			delete(t.byPrefix, prefix)
			break
		}
	}
	for i, p := range t.order {
		if p == path {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.mu.Unlock()
	return file.Remove(ctx, path)
}

// Cleanup removes every path this TempStore has registered. It reports the
// first removal error encountered but attempts to remove every path
// regardless.
func (t *TempStore) Cleanup(ctx context.Context) error {
	t.mu.Lock()
	paths := append([]string(nil), t.order...)
	t.mu.Unlock()

	once := errors.Once{}
	for _, path := range paths {
		if err := file.Remove(ctx, path); err != nil {
			log.Error.Printf("tempstore: failed to remove %v: %v", path, err)
			once.Set(err)
		}
	}
	return once.Err()
}

// OutSAMName returns the registered path for a batch's output SAM file.
func OutSAMName(t *TempStore, batchOid int) string {
	return t.Register(outSAMPrefix(batchOid))
}

// InputDumpName returns the registered path for a batch's input-dump file.
// Neither Driver path calls it.
func InputDumpName(t *TempStore, dumpPrefix string, batchOid int) string {
	return t.Register(inputDumpPrefix(dumpPrefix, batchOid))
}

func outSAMPrefix(batchOid int) string {
	return "outsam-" + strconv.Itoa(batchOid)
}

func inputDumpPrefix(dumpPrefix string, batchOid int) string {
	return dumpPrefix + strconv.Itoa(batchOid)
}
