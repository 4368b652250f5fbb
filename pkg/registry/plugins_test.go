package registry

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverPluginsFindsRootAndNested(t *testing.T) {
	root := fstest.MapFS{
		"echo.so":          {Data: []byte{}},
		"bundled/upper.so": {Data: []byte{}},
		"bundled/notes.md": {Data: []byte{}},
		"README.md":        {Data: []byte{}},
	}

	paths, err := discoverPlugins(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"echo.so", "bundled/upper.so"}, paths)
}

func TestDiscoverPluginsEmptyDir(t *testing.T) {
	paths, err := discoverPlugins(fstest.MapFS{})
	require.NoError(t, err)
	assert.Empty(t, paths)
}
