package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	WindowWidth  = 1024
	WindowHeight = 768

	// Particle field
	ParticleDensity  = 15000 // canvas px² per particle
	MinParticles     = 30
	MaxParticles     = 100
	ParticleMaxSpeed = 0.15
	ParticleMinSize  = 0.5
	ParticleMaxSize  = 2.5
	MinOpacity       = 0.2
	MaxOpacity       = 0.7

	// Intersection thresholds per call site
	LookaheadThreshold = 0.1
	TimelineThreshold  = 0.2
	ActiveThreshold    = 0.5

	// Scroll spring
	ScrollFrequency = 6.0
	ScrollDamping   = 1.0
	WheelStep       = 48

	TerminalFPS = 30
	ToastTTLMs  = 2000
)

// Palette is the theme palette particles draw from.
var Palette = []string{"#00F5FF", "#FF00F5", "#0A74E6", "#FFFFFF"}

const (
	BackendWindow   = "window"
	BackendTerminal = "terminal"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the runtime configuration of the landing page.
type Config struct {
	Backend       string `yaml:"backend"` // window, terminal
	ReducedMotion bool   `yaml:"reduced_motion"`

	Window    WindowConfig   `yaml:"window"`
	Particles ParticleConfig `yaml:"particles"`
	Observers ObserverConfig `yaml:"observers"`
	Feedback  FeedbackConfig `yaml:"feedback"`
	Logging   LoggingConfig  `yaml:"logging"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// ParticleConfig tunes the background field. The count formula is
// clamp(Min, Max, w*h/Density).
type ParticleConfig struct {
	Density    float64  `yaml:"density"`
	Min        int      `yaml:"min"`
	Max        int      `yaml:"max"`
	MaxSpeed   float64  `yaml:"max_speed"`
	MinSize    float64  `yaml:"min_size"`
	MaxSize    float64  `yaml:"max_size"`
	MinOpacity float64  `yaml:"min_opacity"`
	MaxOpacity float64  `yaml:"max_opacity"`
	Palette    []string `yaml:"palette"`
	Seed       int64    `yaml:"seed"` // 0 = time based
}

// ObserverConfig holds intersection thresholds, one per observing client.
type ObserverConfig struct {
	Lookahead  float64 `yaml:"lookahead"`
	Timeline   float64 `yaml:"timeline"`
	Active     float64 `yaml:"active"`
	RootMargin float64 `yaml:"root_margin"`
}

type FeedbackConfig struct {
	Haptic        bool `yaml:"haptic"`
	Notifications bool `yaml:"notifications"` // native desktop notifications
	ToastTTLMs    int  `yaml:"toast_ttl_ms"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendWindow,
		Window: WindowConfig{
			Width:  WindowWidth,
			Height: WindowHeight,
			Title:  "Nexus",
		},
		Particles: ParticleConfig{
			Density:    ParticleDensity,
			Min:        MinParticles,
			Max:        MaxParticles,
			MaxSpeed:   ParticleMaxSpeed,
			MinSize:    ParticleMinSize,
			MaxSize:    ParticleMaxSize,
			MinOpacity: MinOpacity,
			MaxOpacity: MaxOpacity,
			Palette:    append([]string(nil), Palette...),
		},
		Observers: ObserverConfig{
			Lookahead: LookaheadThreshold,
			Timeline:  TimelineThreshold,
			Active:    ActiveThreshold,
		},
		Feedback: FeedbackConfig{
			Haptic:     true,
			ToastTTLMs: ToastTTLMs,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config from path on top of the defaults. A missing file
// yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NEXUS_REDUCED_MOTION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ReducedMotion = b
		}
	}
	if v := os.Getenv("NEXUS_BACKEND"); v != "" {
		c.Backend = strings.ToLower(v)
	}
}

// Validate checks ranges that would otherwise produce a broken field.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendWindow, BackendTerminal:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	p := c.Particles
	if p.Density <= 0 {
		return fmt.Errorf("%w: particle density must be positive", ErrInvalidConfig)
	}
	if p.Min < 0 || p.Max < p.Min {
		return fmt.Errorf("%w: particle bounds [%d, %d]", ErrInvalidConfig, p.Min, p.Max)
	}
	if p.MinSize <= 0 || p.MaxSize < p.MinSize {
		return fmt.Errorf("%w: particle size band [%g, %g)", ErrInvalidConfig, p.MinSize, p.MaxSize)
	}
	if p.MinOpacity < 0 || p.MaxOpacity > 1 || p.MaxOpacity < p.MinOpacity {
		return fmt.Errorf("%w: opacity band [%g, %g)", ErrInvalidConfig, p.MinOpacity, p.MaxOpacity)
	}
	if len(p.Palette) == 0 {
		return fmt.Errorf("%w: empty palette", ErrInvalidConfig)
	}
	for name, v := range map[string]float64{
		"lookahead": c.Observers.Lookahead,
		"timeline":  c.Observers.Timeline,
		"active":    c.Observers.Active,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s threshold %g outside [0, 1]", ErrInvalidConfig, name, v)
		}
	}
	return nil
}
