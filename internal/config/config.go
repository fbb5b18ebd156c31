package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/hexgrid/pkg/hex"
)

// Config holds all server configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Grid   GridConfig   `yaml:"grid"`
	JWT    JWTConfig    `yaml:"jwt"`
	Redis  RedisConfig  `yaml:"redis"`
	Scene  SceneConfig  `yaml:"scene"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GridConfig describes the hex grid served by this instance
type GridConfig struct {
	Name        string          `yaml:"name"`
	Width       int             `yaml:"width"`  // Number of hexes along X
	Height      int             `yaml:"height"` // Number of hexes along Z
	HexSize     float32         `yaml:"hex_size"`
	Orientation hex.Orientation `yaml:"orientation"` // "flat" or "pointy"
	Origin      [3]float32      `yaml:"origin"`      // World offset applied to overlays
}

// JWTConfig holds JWT authentication settings
type JWTConfig struct {
	Issuer              string `yaml:"issuer"`
	PublicKeyURL        string `yaml:"public_key_url"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
	MeshPrefix      string `yaml:"mesh_prefix"`
	MeshChannel     string `yaml:"mesh_channel"`
	MeshTTLSeconds  int    `yaml:"mesh_ttl_seconds"` // 0 keeps published meshes forever
}

// SceneConfig holds viewer session settings
type SceneConfig struct {
	MaxViewers   int `yaml:"max_viewers"`
	MaxGridCells int `yaml:"max_grid_cells"` // Upper bound on width*height per build request
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, fills defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Config{
		Grid: GridConfig{Orientation: hex.FlatTop},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Grid.Name == "" {
		cfg.Grid.Name = "default"
	}
	if cfg.Grid.HexSize == 0 {
		cfg.Grid.HexSize = 1
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Redis.BlacklistPrefix == "" {
		cfg.Redis.BlacklistPrefix = "blacklist:"
	}
	if cfg.Redis.MeshPrefix == "" {
		cfg.Redis.MeshPrefix = "hexgrid:mesh:"
	}
	if cfg.Redis.MeshChannel == "" {
		cfg.Redis.MeshChannel = "hexgrid:mesh"
	}
	if cfg.Scene.MaxViewers == 0 {
		cfg.Scene.MaxViewers = 32
	}
	if cfg.Scene.MaxGridCells == 0 {
		cfg.Scene.MaxGridCells = 250000
	}
}

// Validate checks the grid section and limits
func (cfg *Config) Validate() error {
	if err := cfg.Grid.Validate(); err != nil {
		return err
	}
	if cfg.Scene.MaxViewers < 0 {
		return fmt.Errorf("scene.max_viewers must not be negative")
	}
	if cfg.Scene.MaxGridCells < 0 {
		return fmt.Errorf("scene.max_grid_cells must not be negative")
	}
	if hex.CellsExceed(cfg.Grid.Width, cfg.Grid.Height, cfg.Scene.MaxGridCells) {
		return fmt.Errorf("grid %dx%d exceeds scene.max_grid_cells %d",
			cfg.Grid.Width, cfg.Grid.Height, cfg.Scene.MaxGridCells)
	}
	return nil
}

// Validate checks dimensions, size and orientation of a grid
func (g GridConfig) Validate() error {
	if err := hex.ValidateGrid(g.Width, g.Height, g.HexSize, g.Orientation); err != nil {
		return fmt.Errorf("invalid grid config: %w", err)
	}
	return nil
}
