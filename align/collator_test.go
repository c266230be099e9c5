package align

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollatorAppendsInOrderAndRemovesSource(t *testing.T) {
	dir, err := ioutil.TempDir("", "collator_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	ctx := context.Background()
	outPath := filepath.Join(dir, "final.sam")
	c, err := NewCollator(ctx, outPath)
	require.NoError(t, err)

	temp := NewTempStore(dir)
	for i, body := range []string{"aaa\n", "bbb\n", "ccc\n"} {
		path := OutSAMName(temp, i)
		require.NoError(t, ioutil.WriteFile(path, []byte(body), 0644))
		require.NoError(t, c.Append(ctx, temp, i, path))
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	}
	require.NoError(t, c.Close(ctx))

	got, err := ioutil.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "aaa\nbbb\nccc\n", string(got))
}

func TestCollatorTreatsMissingSourceAsZeroBytes(t *testing.T) {
	dir, err := ioutil.TempDir("", "collator_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	ctx := context.Background()
	outPath := filepath.Join(dir, "final.sam")
	c, err := NewCollator(ctx, outPath)
	require.NoError(t, err)

	temp := NewTempStore(dir)
	skippedPath := OutSAMName(temp, 0)   // never created: batch 0 was skipped
	presentPath := OutSAMName(temp, 1)
	require.NoError(t, ioutil.WriteFile(presentPath, []byte("only\n"), 0644))

	require.NoError(t, c.Append(ctx, temp, 0, skippedPath))
	require.NoError(t, c.Append(ctx, temp, 1, presentPath))
	require.NoError(t, c.Close(ctx))

	got, err := ioutil.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "only\n", string(got))
}

func TestCollatorRejectsOutOfOrderAppend(t *testing.T) {
	dir, err := ioutil.TempDir("", "collator_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	ctx := context.Background()
	c, err := NewCollator(ctx, filepath.Join(dir, "final.sam"))
	require.NoError(t, err)

	temp := NewTempStore(dir)
	path := OutSAMName(temp, 1)
	require.NoError(t, ioutil.WriteFile(path, []byte("x"), 0644))
	assert.Error(t, c.Append(ctx, temp, 1, path)) // oid 0 was never appended
}
