package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"reframe/internal/smartcrop"
)

// Config is the full service configuration: defaults, overlaid by an
// optional TOML file, overlaid by environment variables.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Detector DetectorConfig `toml:"detector"`
	Diarize  DiarizeConfig  `toml:"diarize"`
	Tracking TrackingConfig `toml:"tracking"`
}

type ServerConfig struct {
	Port    string `toml:"port"`
	DBPath  string `toml:"db_path"`
	TmpDir  string `toml:"tmp_dir"`
	Workers int    `toml:"workers"`
}

type DetectorConfig struct {
	Backend     string `toml:"backend"` // pigo | yunet | remote
	CascadePath string `toml:"cascade_path"`
	ModelPath   string `toml:"model_path"`
	SocketPath  string `toml:"socket_path"`
}

type DiarizeConfig struct {
	URL string `toml:"url"`
}

// TrackingConfig exposes the documented tunables of the crop path engine.
type TrackingConfig struct {
	SampleInterval     float64 `toml:"sample_interval"`
	ClassifierSamples  int     `toml:"classifier_samples"`
	DeadZone           float64 `toml:"dead_zone"`
	SnapZone           float64 `toml:"snap_zone"`
	SceneCutThreshold  float64 `toml:"scene_cut_threshold"`
	MinSegmentDuration float64 `toml:"min_segment_duration"`
	HeadroomFraction   float64 `toml:"headroom_fraction"`
	InsetPadding       float64 `toml:"inset_padding"`
	MinScreenWidth     int     `toml:"min_screen_width"`
}

// Default returns the production defaults.
func Default() Config {
	sc := smartcrop.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Port:    "8080",
			DBPath:  "tmp/reframe.db",
			TmpDir:  "tmp/clips",
			Workers: 2,
		},
		Detector: DetectorConfig{
			Backend:     "pigo",
			CascadePath: "models/facefinder",
			ModelPath:   "models/yunet.onnx",
			SocketPath:  "/tmp/yunet.sock",
		},
		Tracking: TrackingConfig{
			SampleInterval:     sc.SampleInterval,
			ClassifierSamples:  sc.ClassifierSamples,
			DeadZone:           sc.DeadZone,
			SnapZone:           sc.SnapZone,
			SceneCutThreshold:  sc.SceneCutThreshold,
			MinSegmentDuration: sc.MinSegmentDuration,
			HeadroomFraction:   sc.HeadroomFraction,
			InsetPadding:       sc.InsetPadding,
			MinScreenWidth:     sc.MinScreenWidth,
		},
	}
}

// Load reads configuration. path may be empty, in which case REFRAME_CONFIG
// is consulted; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("REFRAME_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults apply.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overlay(&cfg.Server.Port, "PORT")
	overlay(&cfg.Server.DBPath, "REFRAME_DB")
	overlay(&cfg.Server.TmpDir, "REFRAME_TMP_DIR")
	overlay(&cfg.Detector.Backend, "DETECTOR_BACKEND")
	overlay(&cfg.Detector.CascadePath, "CASCADE_PATH")
	overlay(&cfg.Detector.ModelPath, "MODEL_PATH")
	overlay(&cfg.Detector.SocketPath, "YUNET_SOCKET")
	overlay(&cfg.Diarize.URL, "DIARIZE_SERVICE_URL")
}

func overlay(dst *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		*dst = val
	}
}

// Smartcrop maps the tracking section onto the engine's tunables.
func (c Config) Smartcrop() smartcrop.Config {
	return smartcrop.Config{
		SampleInterval:     c.Tracking.SampleInterval,
		ClassifierSamples:  c.Tracking.ClassifierSamples,
		DeadZone:           c.Tracking.DeadZone,
		SnapZone:           c.Tracking.SnapZone,
		SceneCutThreshold:  c.Tracking.SceneCutThreshold,
		MinSegmentDuration: c.Tracking.MinSegmentDuration,
		HeadroomFraction:   c.Tracking.HeadroomFraction,
		InsetPadding:       c.Tracking.InsetPadding,
		MinScreenWidth:     c.Tracking.MinScreenWidth,
	}
}
