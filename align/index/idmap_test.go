package index_test

import (
	"testing"

	"github.com/grailbio/bio/align/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDMapRoundTrip(t *testing.T) {
	store := index.NewStore(testHeader(t))
	m := index.NewIDMap(store)

	name, err := m.ToName(0)
	require.NoError(t, err)
	assert.Equal(t, "chr1", name)

	id, err := m.ToID("chr2")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestIDMapRejectsUnknownEntries(t *testing.T) {
	store := index.NewStore(testHeader(t))
	m := index.NewIDMap(store)

	_, err := m.ToName(99)
	assert.Error(t, err)
	_, err = m.ToID("chr99")
	assert.Error(t, err)
}
