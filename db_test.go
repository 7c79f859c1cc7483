package dmi2aseprite

import (
	"path/filepath"
	"testing"

	"github.com/masterdanvk/DMI2Aseprite/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *ChunkDB {
	t.Helper()

	db, err := NewChunkDB(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestChunkDBRoundTrip(t *testing.T) {
	db := testDB(t)

	c, err := chunk.FromRaw(testMetaRaw("round trip"))
	require.NoError(t, err)

	require.NoError(t, db.Put("DEADBEEF", "creature.dmi", c))

	got, err := db.FindByCRC("DEADBEEF")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.Raw(), got.Raw())

	got, err = db.FindByCRC("00000000")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChunkDBPutReplaces(t *testing.T) {
	db := testDB(t)

	first, err := chunk.FromRaw(testMetaRaw("first"))
	require.NoError(t, err)
	second, err := chunk.FromRaw(testMetaRaw("second"))
	require.NoError(t, err)

	require.NoError(t, db.Put("DEADBEEF", "creature.dmi", first))
	require.NoError(t, db.Put("DEADBEEF", "creature.dmi", second))

	entries, err := db.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "creature.dmi", entries[0].Source)
	assert.Equal(t, second.Length(), entries[0].Length)

	got, err := db.FindByCRC("DEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, second.Raw(), got.Raw())
}

func TestChunkDBLatest(t *testing.T) {
	db := testDB(t)

	got, err := db.Latest()
	require.NoError(t, err)
	assert.Nil(t, got, "empty library is a state, not an error")

	first, err := chunk.FromRaw(testMetaRaw("first"))
	require.NoError(t, err)
	second, err := chunk.FromRaw(testMetaRaw("second"))
	require.NoError(t, err)

	require.NoError(t, db.Put("AAAAAAAA", "a.dmi", first))
	require.NoError(t, db.Put("BBBBBBBB", "b.dmi", second))

	got, err = db.Latest()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.Raw(), got.Raw())
}
