package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/hdf5"
)

// writeTestFile creates an HDF5 file with a dataset per entry in dims and
// a single empty group named "meta".
func writeTestFile(t *testing.T, path string, dims map[string][]uint) {
	t.Helper()

	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	require.NoError(t, err)
	defer f.Close()

	dtype, err := hdf5.NewDatatypeFromValue(int32(0))
	require.NoError(t, err)

	for name, d := range dims {
		space, err := hdf5.CreateSimpleDataspace(d, nil)
		require.NoError(t, err)

		ds, err := f.CreateDataset(name, dtype, space)
		require.NoError(t, err)
		require.NoError(t, ds.Close())
		require.NoError(t, space.Close())
	}

	g, err := f.CreateGroup("meta")
	require.NoError(t, err)
	require.NoError(t, g.Close())
}

func TestHDF5_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.h5")
	writeTestFile(t, path, map[string][]uint{
		"image":    {4, 5, 6},
		"image_sc": {2, 3},
	})

	c, err := HDF5{}.Open(path)
	require.NoError(t, err)
	defer c.Close()

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"image", "image_sc", "meta"}, keys)

	assert.True(t, c.Has("image"))
	assert.True(t, c.Has("/image_sc"))
	assert.False(t, c.Has("missing"))
	assert.False(t, c.Has("missing/child"))

	shape, ok, err := c.Shape("image")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, manifest.Shape{4, 5, 6}, shape)

	_, ok, err = c.Shape("meta")
	require.NoError(t, err)
	assert.False(t, ok, "groups have no shape")

	_, ok, err = c.Shape("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHDF5_OpenInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.h5")
	require.NoError(t, os.WriteFile(path, []byte("not an hdf5 file"), 0o644))

	_, err := HDF5{}.Open(path)
	assert.Error(t, err)
}

func TestHDF5_OpenMissingFile(t *testing.T) {
	_, err := HDF5{}.Open(filepath.Join(t.TempDir(), "missing.h5"))
	assert.Error(t, err)
}
