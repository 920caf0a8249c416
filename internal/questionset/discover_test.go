package questionset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b-set", JSONConfigName), `{"internal_name": "bravo", "qa_pairs_file": "qa.json"}`)
	writeFile(t, filepath.Join(root, "a-set", YAMLConfigName), "internal_name: alpha\nqa_pairs_file: /abs/qa.json\n")
	writeFile(t, filepath.Join(root, "broken", JSONConfigName), `{"internal_name": 3}`)
	writeFile(t, filepath.Join(root, "README.md"), "not a set")

	sets, err := Discover(root)
	require.NoError(t, err)
	require.Len(t, sets, 3)

	assert.Equal(t, "alpha", sets[0].Name())
	assert.Equal(t, "/abs/qa.json", sets[0].PoolPath())

	assert.Equal(t, "bravo", sets[1].Name())
	assert.Equal(t, filepath.Join(root, "b-set", "qa.json"), sets[1].PoolPath())

	assert.Equal(t, "broken", sets[2].Name())
	assert.ErrorIs(t, sets[2].Err, ErrInvalidConfig)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFilter(t *testing.T) {
	sets := []Set{
		{Dir: "/s/a", Config: Config{InternalName: "alpha"}},
		{Dir: "/s/b", Config: Config{InternalName: "bravo"}},
	}
	assert.Len(t, Filter(sets, nil), 2)

	got := Filter(sets, []string{"bravo"})
	require.Len(t, got, 1)
	assert.Equal(t, "bravo", got[0].Name())

	got = Filter(sets, []string{"a"})
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Name())
}
