package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Origin string

const (
	OriginSource Origin = "source"
	OriginCenter Origin = "center"
	OriginBottom Origin = "bottom"
)

const maxLODs = 8

// Config holds the per-source import settings.
type Config struct {
	MeshScale            float32 `yaml:"mesh_scale"`
	Origin               Origin  `yaml:"origin"`
	CancelMeshTransforms bool    `yaml:"cancel_mesh_transforms"`
	VertexColors         bool    `yaml:"vertex_colors"`
	IgnoreSkeleton       bool    `yaml:"ignore_skeleton"`
	BoundingShapeScale   float32 `yaml:"bounding_shape_scale"`

	// Animation tolerances, divided by the bone depth.
	PositionError  float32 `yaml:"position_error"`
	RotationError  float32 `yaml:"rotation_error"`
	RootMotionBone string  `yaml:"root_motion_bone"`

	// Negative distance means no limit.
	LODDistances   []float32 `yaml:"lod_distances"`
	CreateImpostor bool      `yaml:"create_impostor"`

	Physics    bool `yaml:"physics"`
	MakeConvex bool `yaml:"make_convex"`

	// Larger textures get a downscaled copy. 0 disables.
	TextureMaxSize int `yaml:"texture_max_size"`

	Submodels bool `yaml:"submodels"`
	Prefab    bool `yaml:"prefab"`
}

func DefaultConfig() *Config {
	return &Config{
		MeshScale:          1,
		Origin:             OriginSource,
		BoundingShapeScale: 1,
		PositionError:      0.02,
		RotationError:      0.001,
		LODDistances:       []float32{-10, -100, -1000, -10000},
	}
}

// ConfigPath returns the sidecar path of the import settings for src.
func ConfigPath(src string) string {
	return src + ".import.yaml"
}

// LoadConfig reads settings over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	return cfg, cfg.Validate()
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch c.Origin {
	case OriginSource, OriginCenter, OriginBottom:
	case "":
		c.Origin = OriginSource
	default:
		return fmt.Errorf("%w: unknown origin %q", ErrConfig, c.Origin)
	}
	if c.MeshScale <= 0 || c.BoundingShapeScale <= 0 {
		return fmt.Errorf("%w: scale must be positive", ErrConfig)
	}
	if c.PositionError < 0 || c.RotationError < 0 {
		return fmt.Errorf("%w: negative error tolerance", ErrConfig)
	}
	if len(c.LODDistances) == 0 || len(c.LODDistances) >= maxLODs {
		return fmt.Errorf("%w: %d lod distances", ErrConfig, len(c.LODDistances))
	}
	if c.TextureMaxSize < 0 {
		return fmt.Errorf("%w: negative texture size", ErrConfig)
	}
	return nil
}
