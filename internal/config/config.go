// Package config holds the physics tuning values and their TOML persistence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is where tools look for a config when none is given.
const DefaultPath = "config/physics.toml"

// Physics holds the tunables the physics core reads at construction time.
// None of them are meant to change while a scene is running.
type Physics struct {
	Gravity [3]float32 `toml:"gravity"`

	// Cell edge length for spatial hash grids.
	SpatialHashSpacing float32 `toml:"spatial_hash_spacing"`

	// Seed for the BVH split-axis generator. 0 picks a random seed.
	BVHSeed uint64 `toml:"bvh_seed"`

	OctreeMaxDepth     int `toml:"octree_max_depth"`
	OctreeLeafCapacity int `toml:"octree_leaf_capacity"`

	// Sleep thresholds
	SleepVelocityThreshold float32 `toml:"sleep_velocity_threshold"` // units/sec
	SleepTimeThreshold     float32 `toml:"sleep_time_threshold"`     // seconds below threshold before sleeping
	WakeVelocityThreshold  float32 `toml:"wake_velocity_threshold"`  // correction speed that wakes a sleeping body

	// Materials applied to bodies by their surface tag at registration.
	Surfaces map[string]Material `toml:"surfaces"`
}

// Material is the response of a surface on contact.
type Material struct {
	Restitution float32 `toml:"restitution"` // 0 = no bounce, 1 = perfect bounce
	Friction    float32 `toml:"friction"`    // 0 = ice, 1 = stops immediately
}

func Default() Physics {
	return Physics{
		Gravity:                [3]float32{0, -20, 0},
		SpatialHashSpacing:     5,
		OctreeMaxDepth:         6,
		OctreeLeafCapacity:     8,
		SleepVelocityThreshold: 0.3,
		SleepTimeThreshold:     0.3,
		WakeVelocityThreshold:  0.6,
		Surfaces: map[string]Material{
			"concrete": {Restitution: 0.2, Friction: 0.6},
			"metal":    {Restitution: 0.4, Friction: 0.3},
			"wood":     {Restitution: 0.3, Friction: 0.4},
			"ice":      {Restitution: 0.1, Friction: 0},
			"rubber":   {Restitution: 0.9, Friction: 0.8},
		},
	}
}

// Load reads a config from path. A missing file is not an error and yields
// Default(). Keys absent from the file keep their default values.
func Load(path string) (Physics, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read physics config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse physics config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Physics) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode physics config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write physics config %s: %w", path, err)
	}
	return nil
}

// Validate replaces out-of-range values with defaults and returns one
// warning per replaced field.
func (c *Physics) Validate() []string {
	def := Default()
	var warnings []string
	if c.SpatialHashSpacing <= 0 {
		warnings = append(warnings, fmt.Sprintf("spatial_hash_spacing %v must be positive, using %v", c.SpatialHashSpacing, def.SpatialHashSpacing))
		c.SpatialHashSpacing = def.SpatialHashSpacing
	}
	if c.OctreeMaxDepth <= 0 {
		warnings = append(warnings, fmt.Sprintf("octree_max_depth %d must be positive, using %d", c.OctreeMaxDepth, def.OctreeMaxDepth))
		c.OctreeMaxDepth = def.OctreeMaxDepth
	}
	if c.OctreeLeafCapacity <= 0 {
		warnings = append(warnings, fmt.Sprintf("octree_leaf_capacity %d must be positive, using %d", c.OctreeLeafCapacity, def.OctreeLeafCapacity))
		c.OctreeLeafCapacity = def.OctreeLeafCapacity
	}
	if c.SleepVelocityThreshold < 0 {
		warnings = append(warnings, fmt.Sprintf("sleep_velocity_threshold %v is negative, using %v", c.SleepVelocityThreshold, def.SleepVelocityThreshold))
		c.SleepVelocityThreshold = def.SleepVelocityThreshold
	}
	if c.SleepTimeThreshold < 0 {
		warnings = append(warnings, fmt.Sprintf("sleep_time_threshold %v is negative, using %v", c.SleepTimeThreshold, def.SleepTimeThreshold))
		c.SleepTimeThreshold = def.SleepTimeThreshold
	}
	if c.WakeVelocityThreshold < 0 {
		warnings = append(warnings, fmt.Sprintf("wake_velocity_threshold %v is negative, using %v", c.WakeVelocityThreshold, def.WakeVelocityThreshold))
		c.WakeVelocityThreshold = def.WakeVelocityThreshold
	}
	for name, m := range c.Surfaces {
		if m.Restitution < 0 || m.Restitution > 1 {
			warnings = append(warnings, fmt.Sprintf("surface %q restitution %v outside [0,1], clamped", name, m.Restitution))
			m.Restitution = clamp01(m.Restitution)
		}
		if m.Friction < 0 || m.Friction > 1 {
			warnings = append(warnings, fmt.Sprintf("surface %q friction %v outside [0,1], clamped", name, m.Friction))
			m.Friction = clamp01(m.Friction)
		}
		c.Surfaces[name] = m
	}
	return warnings
}

func clamp01(v float32) float32 {
	return max(0, min(v, 1))
}
