package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitTags(" a, ,b "))
	assert.Nil(t, splitTags(""))
}

func TestTagCmd_Lifecycle(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "tag", "add", "a", "c", "--tags", "graphs,reading")
	require.NoError(t, err)
	assert.Contains(t, out, "Tagged 2 source(s) with graphs, reading")

	out, err = execute(t, "tag", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "graphs")
	assert.Contains(t, out, "(2)")

	out, err = execute(t, "tag", "show", "graphs")
	require.NoError(t, err)
	assert.Contains(t, out, "Graph networks")
	assert.Contains(t, out, "Graph theory")

	resetFlags()
	out, err = execute(t, "tag", "rm", "c", "-t", "graphs")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed graphs from 1 source(s)")

	out, err = execute(t, "tag", "show", "graphs")
	require.NoError(t, err)
	assert.NotContains(t, out, "Graph theory")

	out, err = execute(t, "tag", "delete", "reading")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 tag(s)")
}

func TestTagCmd_MissingTags(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "tag", "add", "a")

	assert.Error(t, err)
}

func TestTagCmd_UnknownSource(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "tag", "add", "missing", "--tags", "x")

	assert.Error(t, err)
}

func TestTagCmd_ShowEmpty(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "tag", "show", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No sources tagged nothing")
}

func TestTagCmd_ListEmpty(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "tag", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No tags.")
}
