package bundle

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/dd0wney/icedope/pkg/bondgraph"
	"github.com/dd0wney/icedope/pkg/defects"
	"github.com/dd0wney/icedope/pkg/lattice"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dopedBundle(t *testing.T) *Bundle {
	t.Helper()
	l, err := lattice.Diamond(2)
	require.NoError(t, err)

	d, err := defects.NewDoper(l.Graph, defects.Config{Seed: 11})
	require.NoError(t, err)
	_, err = d.Place(context.Background(), 3)
	require.NoError(t, err)

	diff, err := defects.NewDiffuser(l.Graph, defects.Config{Seed: 12})
	require.NoError(t, err)
	_, err = diff.Run(context.Background(), 5)
	require.NoError(t, err)

	return New(l, 11)
}

func TestNew(t *testing.T) {
	l, err := lattice.Ring(8)
	require.NoError(t, err)

	b := New(l, 3)
	_, err = uuid.Parse(b.RunID)
	assert.NoError(t, err, "run id should be a uuid")
	assert.Equal(t, uint64(3), b.Seed)
	assert.Equal(t, lattice.KindRing, b.Kind)
	assert.Empty(t, b.Anions)
	assert.Empty(t, b.Cations)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestEncodeDecode(t *testing.T) {
	b := dopedBundle(t)
	require.Len(t, b.Anions, 3)

	data, err := Encode(b)
	require.NoError(t, err)
	assert.Equal(t, Magic, binary.BigEndian.Uint32(data))

	got, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, b.RunID, got.RunID)
	assert.Equal(t, b.Seed, got.Seed)
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, b.Kind, got.Kind)
	assert.Equal(t, b.Cell, got.Cell)
	assert.Equal(t, b.Positions, got.Positions)
	assert.Equal(t, b.Anions, got.Anions)
	assert.Equal(t, b.Cations, got.Cations)
	assert.True(t, b.Graph.Equal(got.Graph), "graph orientation or fixed flags changed")
	assert.NoError(t, defects.Verify(got.Graph, nil))
}

func TestDecode_Corruption(t *testing.T) {
	b := dopedBundle(t)
	data, err := Encode(b)
	require.NoError(t, err)

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte{}, data...)
		bad[0] ^= 0xff
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("short", func(t *testing.T) {
		_, err := Decode(data[:5])
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("version", func(t *testing.T) {
		bad := append([]byte{}, data...)
		binary.BigEndian.PutUint16(bad[4:6], Version+1)
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrVersion)
	})

	t.Run("flipped payload byte", func(t *testing.T) {
		bad := append([]byte{}, data...)
		bad[headerSize+3] ^= 0x01
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Decode(data[:len(data)-1])
		assert.ErrorIs(t, err, ErrChecksum)
	})
}

func TestDecode_IonMismatch(t *testing.T) {
	b := dopedBundle(t)
	b.Anions = b.Anions[1:]

	data, err := Encode(b)
	require.NoError(t, err)
	_, err = Decode(data)
	assert.ErrorIs(t, err, ErrIonMismatch)
}

func TestSaveLoad(t *testing.T) {
	b := dopedBundle(t)
	path := filepath.Join(t.TempDir(), "doped.icd")

	require.NoError(t, Save(path, b))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file left behind")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, b.RunID, got.RunID)
	assert.True(t, b.Graph.Equal(got.Graph))

	// overwrite in place
	b.Seed = 99
	require.NoError(t, Save(path, b))
	got, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), got.Seed)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.icd"))
	assert.Error(t, err)

	junk := filepath.Join(dir, "junk.icd")
	require.NoError(t, os.WriteFile(junk, []byte("this is not a bundle at all"), 0o644))
	_, err = Load(junk)
	assert.ErrorIs(t, err, ErrBadMagic)

	assert.Error(t, Save(filepath.Join(dir, "no", "such", "dir.icd"), dopedBundle(t)))
}

func TestCloneAndDerive(t *testing.T) {
	b := dopedBundle(t)

	c := b.Clone()
	require.NoError(t, c.Graph.InvertPath(bondgraph.Path{c.Graph.Bonds()[0].From, c.Graph.Bonds()[0].To}))
	assert.False(t, b.Graph.Equal(c.Graph), "clone shares its graph")

	d := b.Derive(7)
	assert.NotEqual(t, b.RunID, d.RunID)
	assert.Equal(t, uint64(7), d.Seed)
	assert.Same(t, b.Graph, d.Graph)

	l := b.Lattice()
	assert.Equal(t, b.Cell, l.Cell)
	assert.Same(t, b.Graph, l.Graph)
}

func TestRefresh(t *testing.T) {
	l, err := lattice.Ring(8)
	require.NoError(t, err)
	b := New(l, 0)

	require.NoError(t, b.Graph.InvertPath(bondgraph.Path{0, 2, 4}))
	require.NoError(t, b.Graph.InvertPath(bondgraph.Path{0, 1, 3, 4}))
	b.Refresh()

	assert.Equal(t, []int{0}, b.Anions)
	assert.Equal(t, []int{4}, b.Cations)
}
