package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/nexus/internal/app"
	"github.com/iburimskiy/nexus/internal/config"
	"github.com/iburimskiy/nexus/internal/feedback"
	"github.com/iburimskiy/nexus/internal/game"
	"github.com/iburimskiy/nexus/internal/particle"
	"github.com/iburimskiy/nexus/internal/terminal"
)

const tapRingSize = 8192

var (
	configPath    string
	backend       string
	reducedMotion bool
	verbose       bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Nexus - an animated landing page for the desktop and the terminal",
	Long: `Nexus renders a scrolling page of sections over a drifting particle field.

Sections mount lazily as they approach the viewport. Use the arrow keys or the
mouse wheel to scroll, J/K to jump between sections, M for the quick menu.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("backend") {
			cfg.Backend = backend
		}
		if cmd.Flags().Changed("reduced-motion") {
			cfg.ReducedMotion = reducedMotion
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err = buildLogger(cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runPage,
}

var particlesCmd = &cobra.Command{
	Use:   "particles",
	Short: "Print the particle count and a sample snapshot for a canvas size",
	RunE:  runParticles,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "nexus.yaml", "config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", config.BackendWindow, "window or terminal")
	rootCmd.PersistentFlags().BoolVar(&reducedMotion, "reduced-motion", false, "disable the particle animation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	particlesCmd.Flags().Float64("width", config.WindowWidth, "canvas width")
	particlesCmd.Flags().Float64("height", config.WindowHeight, "canvas height")
	particlesCmd.Flags().Int("sample", 5, "particles to print")
	rootCmd.AddCommand(particlesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildLogger uses the production config. The terminal backend owns the tty,
// so it logs to the configured file or not at all.
func buildLogger(c *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(c.Logging.Level); err == nil {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if c.Logging.File != "" {
		zc.OutputPaths = []string{c.Logging.File}
		zc.ErrorOutputPaths = []string{c.Logging.File}
	} else if c.Backend == config.BackendTerminal {
		return zap.NewNop(), nil
	}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

func runPage(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tap := feedback.NewPulseTap(tapRingSize)
	deps := app.Deps{
		Logger: logger,
		Haptic: feedback.NewToneHaptic(tap, logger),
	}
	if cfg.Feedback.Notifications {
		desktop := feedback.NewDesktopNotifier(logger)
		defer desktop.Close()
		deps.Notifier = desktop
	}

	logger.Info("starting nexus",
		zap.String("backend", cfg.Backend),
		zap.Bool("reduced_motion", cfg.ReducedMotion))

	switch cfg.Backend {
	case config.BackendTerminal:
		return runTerminal(ctx, deps)
	default:
		return runWindow(ctx, deps, tap)
	}
}

func runTerminal(ctx context.Context, deps app.Deps) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()

	host, err := terminal.New(cfg, screen, deps)
	if err != nil {
		screen.Fini()
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return host.RunWorker(ctx) })
	g.Go(func() error { return host.Run(ctx) })
	return g.Wait()
}

// runWindow keeps ebiten on the main goroutine; the worker runs beside it.
func runWindow(ctx context.Context, deps app.Deps, tap *feedback.PulseTap) error {
	host, err := game.New(cfg, deps, tap)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return host.RunWorker(ctx) })

	runErr := host.Run(ctx, cfg.Window.Title)
	cancel()
	return errors.Join(runErr, g.Wait())
}

func runParticles(cmd *cobra.Command, args []string) error {
	w, _ := cmd.Flags().GetFloat64("width")
	h, _ := cmd.Flags().GetFloat64("height")
	n, _ := cmd.Flags().GetInt("sample")

	seed := cfg.Particles.Seed
	if seed == 0 {
		seed = 1
	}
	params := particle.ParamsFromConfig(cfg.Particles)
	sim := particle.NewSimulator(params, rand.New(rand.NewSource(seed)))
	set := sim.Initialize(w, h)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "canvas %gx%g: %d particles (density %g, min %d, max %d)\n",
		w, h, params.Count(w, h), params.Density, params.Min, params.Max)
	for i, p := range set {
		if i >= n {
			break
		}
		fmt.Fprintf(out, "  #%d x=%.1f y=%.1f size=%.2f v=(%.3f,%.3f) opacity=%.2f color=%s\n",
			i, p.X, p.Y, p.Size, p.SpeedX, p.SpeedY, p.Opacity, p.Color)
	}
	logger.Debug("particles sampled", zap.Int("count", len(set)))
	return nil
}
