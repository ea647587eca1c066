package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSphereScene(t *testing.T, path string) {
	t.Helper()
	doc := `{
		"settings": {"resolution": 4, "scene_aabb_margin": 0.1},
		"primitives": [
			{"type": "sphere", "center": [0, 0, 0], "radius": 1}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
}

func TestCLIFullRun(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	scenePath := filepath.Join(dir, "scene.json")
	outputPrefix := filepath.Join(dir, "out")
	writeSphereScene(t, scenePath)

	os.Args = []string{"isoarrange", "update-setting", statePath, "4", "0.1", "false"}
	main()

	os.Args = []string{"isoarrange", "update-environment", statePath, "-2", "-2", "-2", "2", "2", "2"}
	main()

	os.Args = []string{"isoarrange", "execute-solver", statePath, scenePath, outputPrefix}
	main()

	for _, ext := range []string{".3mf", ".dxf", ".svg", ".png"} {
		info, err := os.Stat(outputPrefix + ext)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	var s state
	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &s))
	assert.NotEmpty(t, s.Statistics)
	assert.Equal(t, 4, s.Resolution)
	assert.Equal(t, [3]float64{-2, -2, -2}, s.BoxMin)

	os.Args = []string{"isoarrange", "print-statistics", statePath}
	main()

	os.Args = []string{"isoarrange", "clear-statistics", statePath}
	main()

	data, err = os.ReadFile(statePath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Empty(t, s.Statistics)
}
