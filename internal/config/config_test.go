package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "physics.toml")
	cfg := Default()
	cfg.Gravity = [3]float32{0, -9.81, 0}
	cfg.BVHSeed = 1234
	cfg.SpatialHashSpacing = 2.5

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.toml")
	require.NoError(t, os.WriteFile(path, []byte("bvh_seed = 7\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.BVHSeed)
	assert.Equal(t, Default().Gravity, cfg.Gravity)
	assert.Equal(t, Default().SpatialHashSpacing, cfg.SpatialHashSpacing)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.toml")
	require.NoError(t, os.WriteFile(path, []byte("gravity = \"down\"\n"), 0644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidateRepairsValues(t *testing.T) {
	cfg := Default()
	cfg.SpatialHashSpacing = 0
	cfg.OctreeMaxDepth = -1

	warnings := cfg.Validate()
	assert.Len(t, warnings, 2)
	assert.Equal(t, Default(), cfg)

	clean := Default()
	assert.Empty(t, clean.Validate())
}

func TestValidateRepairsSleepThresholds(t *testing.T) {
	cfg := Default()
	cfg.SleepVelocityThreshold = -1
	cfg.SleepTimeThreshold = -1
	cfg.WakeVelocityThreshold = -0.5

	warnings := cfg.Validate()
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[2], "wake_velocity_threshold")
	assert.Equal(t, Default(), cfg)
}

func TestValidateClampsSurfaces(t *testing.T) {
	cfg := Default()
	cfg.Surfaces["jelly"] = Material{Restitution: 1.5, Friction: -0.2}

	warnings := cfg.Validate()
	assert.Len(t, warnings, 2)
	assert.Equal(t, Material{Restitution: 1, Friction: 0}, cfg.Surfaces["jelly"])
}

func TestSurfacesRoundTripThroughTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.toml")
	cfg := Default()
	cfg.Surfaces["mud"] = Material{Restitution: 0, Friction: 0.95}
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[surfaces.mud]")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Surfaces["mud"], loaded.Surfaces["mud"])
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.BVHSeed)
	assert.Equal(t, Default().Surfaces, cfg.Surfaces)
	assert.Empty(t, cfg.Validate())
}
