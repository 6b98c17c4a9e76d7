package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Category selection policies.
const (
	PolicyUniform  = "uniform"
	PolicyBalanced = "balanced"
)

// NoCap marks a category whose images are all drawn.
const NoCap = -1

// ErrInvalidConfig indicates a configuration value that cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// Config defines server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	Log        LogConfig        `yaml:"log"`
	Storage    StorageConfig    `yaml:"storage"`
	Experiment ExperimentConfig `yaml:"experiment"`
	Palette    []ColorConfig    `yaml:"palette"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig locates the filesystem trees the server reads and writes.
type StorageConfig struct {
	ImageRoot     string `yaml:"image_root"`
	ResultsDir    string `yaml:"results_dir"`
	UploadRGB     string `yaml:"upload_rgb"`
	UploadSeg     string `yaml:"upload_seg"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

// ExperimentConfig controls how trial sequences are drawn.
type ExperimentConfig struct {
	WarmupCategory     string           `yaml:"warmup_category"`
	Categories         []CategoryConfig `yaml:"categories"`
	BalanceThreshold   int              `yaml:"balance_threshold"`
	DefaultParticipant string           `yaml:"default_participant"`
	Catch              CatchConfig      `yaml:"catch"`
}

// CategoryConfig caps the number of trials drawn from one category folder.
// Optional categories may be absent on disk.
type CategoryConfig struct {
	Name     string `yaml:"name"`
	Cap      int    `yaml:"cap"`
	Policy   string `yaml:"policy"`
	Optional bool   `yaml:"optional"`
}

// CatchConfig places attention-check images in the sequence. The first
// Screening images follow the warm-up; afterwards one catch image is
// inserted after every Interval regular trials. An empty Category or a
// missing folder disables both.
type CatchConfig struct {
	Category  string `yaml:"category"`
	Screening int    `yaml:"screening"`
	Interval  int    `yaml:"interval"`
}

// ColorConfig is one palette entry as written in YAML.
type ColorConfig struct {
	Name string `yaml:"name"`
	RGB  [3]int `yaml:"rgb"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		DB: DBConfig{
			Path: "chromalabel.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			ImageRoot:     "static/uploads",
			ResultsDir:    "results",
			UploadRGB:     "rgb",
			UploadSeg:     "segmentation",
			MaxUploadSize: 64 << 20,
		},
		Experiment: ExperimentConfig{
			WarmupCategory: "trial",
			Categories: []CategoryConfig{
				{Name: "trial", Cap: 2, Policy: PolicyUniform},
				{Name: "test", Cap: 50, Policy: PolicyUniform},
				{Name: "train", Cap: 200, Policy: PolicyUniform},
				{Name: "fun", Cap: NoCap, Policy: PolicyUniform, Optional: true},
			},
			BalanceThreshold:   3,
			DefaultParticipant: "anonymous",
			Catch: CatchConfig{
				Category:  "catch",
				Screening: 5,
				Interval:  20,
			},
		},
		Palette: DefaultPalette(),
	}
}

// DefaultPalette returns the experiment's color list in display order.
func DefaultPalette() []ColorConfig {
	return []ColorConfig{
		{Name: "Red", RGB: [3]int{255, 0, 0}},
		{Name: "Green", RGB: [3]int{0, 255, 0}},
		{Name: "Blue", RGB: [3]int{0, 0, 255}},
		{Name: "Yellow", RGB: [3]int{255, 255, 0}},
		{Name: "Purple", RGB: [3]int{121, 58, 144}},
		{Name: "Brown", RGB: [3]int{113, 69, 41}},
		{Name: "Pink", RGB: [3]int{225, 118, 178}},
		{Name: "Orange", RGB: [3]int{255, 128, 0}},
		{Name: "Turquoise", RGB: [3]int{63, 185, 177}},
		{Name: "Beige", RGB: [3]int{195, 168, 126}},
		{Name: "White", RGB: [3]int{255, 255, 255}},
		{Name: "Black", RGB: [3]int{0, 0, 0}},
		{Name: "Gray", RGB: [3]int{128, 128, 128}},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CHROMALABEL_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("CHROMALABEL_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("CHROMALABEL_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CHROMALABEL_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("CHROMALABEL_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("CHROMALABEL_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if root := os.Getenv("CHROMALABEL_IMAGE_ROOT"); root != "" {
		cfg.Storage.ImageRoot = root
	}
	if dir := os.Getenv("CHROMALABEL_RESULTS_DIR"); dir != "" {
		cfg.Storage.ResultsDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the experiment and palette sections.
func (c Config) Validate() error {
	if len(c.Experiment.Categories) == 0 {
		return fmt.Errorf("%w: no experiment categories", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Experiment.Categories))
	for _, cat := range c.Experiment.Categories {
		if cat.Name == "" {
			return fmt.Errorf("%w: category with empty name", ErrInvalidConfig)
		}
		if seen[cat.Name] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidConfig, cat.Name)
		}
		seen[cat.Name] = true
		if cat.Cap < NoCap {
			return fmt.Errorf("%w: category %q has negative cap", ErrInvalidConfig, cat.Name)
		}
		switch cat.Policy {
		case "", PolicyUniform, PolicyBalanced:
		default:
			return fmt.Errorf("%w: category %q has unknown policy %q", ErrInvalidConfig, cat.Name, cat.Policy)
		}
	}
	if c.Experiment.WarmupCategory != "" && !seen[c.Experiment.WarmupCategory] {
		return fmt.Errorf("%w: warmup category %q is not configured", ErrInvalidConfig, c.Experiment.WarmupCategory)
	}
	catch := c.Experiment.Catch
	if catch.Category != "" && seen[catch.Category] {
		return fmt.Errorf("%w: catch category %q is also a trial category", ErrInvalidConfig, catch.Category)
	}
	if catch.Screening < 0 || catch.Interval < 0 {
		return fmt.Errorf("%w: catch screening and interval must not be negative", ErrInvalidConfig)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("%w: empty palette", ErrInvalidConfig)
	}
	for _, color := range c.Palette {
		for _, v := range color.RGB {
			if v < 0 || v > 255 {
				return fmt.Errorf("%w: color %q channel %d out of range", ErrInvalidConfig, color.Name, v)
			}
		}
	}
	return nil
}

// TotalCap sums the caps of capped categories. Uncapped categories and
// catch trials are not counted.
func (e ExperimentConfig) TotalCap() int {
	total := 0
	for _, cat := range e.Categories {
		if cat.Cap > 0 {
			total += cat.Cap
		}
	}
	return total
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
