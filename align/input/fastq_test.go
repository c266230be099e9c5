package input_test

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/bio/align"
	"github.com/grailbio/bio/align/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(body), 0644))
	return path
}

func TestFASTQSourceUnpaired(t *testing.T) {
	dir, err := ioutil.TempDir("", "fastq_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := writeTemp(t, dir, "r1.fastq", "@read1\nACGT\n+\nIIII\n@read2\nTTTT\n+\nJJJJ\n")
	s := input.NewFASTQSource(path, "")
	ctx := context.Background()
	columns, err := s.Open(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, columns)
	defer s.Close(ctx)

	var r align.Read
	require.True(t, s.Next(&r))
	assert.Equal(t, "read1", r.Name)
	assert.Equal(t, "ACGT", r.Seq1)
	assert.Equal(t, "IIII", r.Qual1)
	assert.Empty(t, r.Seq2)
	assert.Equal(t, 1, s.CurQId())

	require.True(t, s.Next(&r))
	assert.Equal(t, "read2", r.Name)
	assert.Equal(t, 2, s.CurQId())

	assert.False(t, s.Next(&r))
	assert.NoError(t, s.Err())
}

func TestFASTQSourcePaired(t *testing.T) {
	dir, err := ioutil.TempDir("", "fastq_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path1 := writeTemp(t, dir, "r1.fastq", "@read1\nACGT\n+\nIIII\n")
	path2 := writeTemp(t, dir, "r2.fastq", "@read1\nTTTT\n+\nJJJJ\n")
	s := input.NewFASTQSource(path1, path2)
	ctx := context.Background()
	columns, err := s.Open(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, columns)
	defer s.Close(ctx)

	var r align.Read
	require.True(t, s.Next(&r))
	assert.Equal(t, "ACGT", r.Seq1)
	assert.Equal(t, "TTTT", r.Seq2)
	assert.False(t, s.Next(&r))
	assert.NoError(t, s.Err())
}
