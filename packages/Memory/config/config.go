package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "config")

const (
	dirName  = "elysium"
	fileName = "config.json"

	MaxFakeLag = 14

	minThirdPersonDistance = 30
	maxThirdPersonDistance = 500
)

type Fog struct {
	Enabled    bool       `json:"enabled"`
	Color      [3]float32 `json:"color"`
	Start      float32    `json:"start"`
	End        float32    `json:"end"`
	MaxDensity float32    `json:"max_density"`
}

type Tonemap struct {
	Enabled     bool    `json:"enabled"`
	ExposureMin float32 `json:"exposure_min"`
	ExposureMax float32 `json:"exposure_max"`
	BloomScale  float32 `json:"bloom_scale"`
}

type Material struct {
	Enabled bool `json:"enabled"`
	// Chroma is RGBA in [0, 1].
	Chroma [4]float32 `json:"chroma"`
}

// Config is the persisted tool configuration.
type Config struct {
	Pitch               Pitch    `json:"pitch"`
	YawBase             YawBase  `json:"yaw_base"`
	YawOffset           float32  `json:"yaw_offset"`
	FakeLag             int      `json:"fake_lag"`
	ThirdPerson         bool     `json:"thirdperson"`
	ThirdPersonDistance float32  `json:"thirdperson_distance"`
	Fog                 Fog      `json:"fog"`
	Tonemap             Tonemap  `json:"tonemap"`
	Material            Material `json:"material"`
	LeafOverride        bool     `json:"leaf_override"`
}

// Default returns the configuration used when nothing is persisted.
func Default() *Config {
	return &Config{
		Pitch:               PitchDefault,
		YawBase:             YawBaseView,
		ThirdPersonDistance: 150,
		Fog: Fog{
			Color:      [3]float32{0.5, 0.5, 0.5},
			Start:      0,
			End:        8000,
			MaxDensity: 0.5,
		},
		Tonemap: Tonemap{
			ExposureMin: 1,
			ExposureMax: 1,
			BloomScale:  1,
		},
		Material: Material{
			Chroma: [4]float32{1, 1, 1, 1},
		},
	}
}

// Path returns $XDG_CONFIG_HOME/elysium/config.json or the platform
// equivalent.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField(logfields.Path, path).Info("No configuration found, using defaults")
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Clamp()
	return cfg, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := renameio.TempFile(dir, path)
	if err != nil {
		return fmt.Errorf("create temporary config: %w", err)
	}
	defer f.Cleanup()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write temporary config: %w", err)
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	log.WithField(logfields.Path, path).Debug("Saved configuration")
	return nil
}

// Clamp forces every field into its valid range.
func (c *Config) Clamp() {
	if !c.Pitch.valid() {
		c.Pitch = PitchDefault
	}
	if !c.YawBase.valid() {
		c.YawBase = YawBaseView
	}
	c.YawOffset = wrapDegrees(c.YawOffset)
	c.FakeLag = max(0, min(MaxFakeLag, c.FakeLag))
	c.ThirdPersonDistance = clamp(c.ThirdPersonDistance, minThirdPersonDistance, maxThirdPersonDistance)

	for i := range c.Fog.Color {
		c.Fog.Color[i] = clamp(c.Fog.Color[i], 0, 1)
	}
	c.Fog.Start = max(0, c.Fog.Start)
	c.Fog.End = max(c.Fog.Start, c.Fog.End)
	c.Fog.MaxDensity = clamp(c.Fog.MaxDensity, 0, 1)

	c.Tonemap.ExposureMin = max(0, c.Tonemap.ExposureMin)
	c.Tonemap.ExposureMax = max(c.Tonemap.ExposureMin, c.Tonemap.ExposureMax)
	c.Tonemap.BloomScale = max(0, c.Tonemap.BloomScale)

	for i := range c.Material.Chroma {
		c.Material.Chroma[i] = clamp(c.Material.Chroma[i], 0, 1)
	}
}

func clamp(v, lo, hi float32) float32 {
	if v != v {
		return lo
	}
	return max(lo, min(hi, v))
}

func wrapDegrees(v float32) float32 {
	if v != v {
		return 0
	}
	w := math.Mod(float64(v)+180, 360)
	if w < 0 {
		w += 360
	}
	return float32(w - 180)
}
