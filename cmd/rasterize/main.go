// Command rasterize is a batch CLI driver for the software rasterizer: it
// loads a scene file, runs the shadow pass and the opaque/transparent color
// passes, and writes the resulting frame as a PPM, TGA or PNG image.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := fang.Execute(ctx, newRootCommand()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &config{}

	cmd := &cobra.Command{
		Use:   "rasterize",
		Short: "Render a 3D scene with the CPU software rasterizer",
		Long: "rasterize loads an OBJ or glTF scene, runs a directional-light shadow\n" +
			"pass followed by opaque and back-to-front transparent color passes, and\n" +
			"writes the resulting frame to a PPM, TGA or PNG file.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRasterize(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.scenePath, "scene", "", "path to an OBJ or glTF/GLB scene file (required)")
	flags.IntVar(&cfg.width, "width", 800, "output image width in pixels")
	flags.IntVar(&cfg.height, "height", 600, "output image height in pixels")
	flags.StringVar(&cfg.outPath, "out", "out.ppm", "output image path")
	flags.StringVar(&cfg.format, "format", "auto", "output format: auto, ppm, tga, or png (auto dispatches on --out's extension)")
	flags.IntVar(&cfg.workers, "workers", 0, "parallel rasterizer worker count (0 = runtime.NumCPU())")
	flags.IntVar(&cfg.shadowSize, "shadow-size", 1024, "shadow map width/height in texels")
	flags.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&cfg.logFormat, "log-format", "text", "log format: text or json")

	flags.Float64SliceVar(&cfg.lightDir, "light-dir", []float64{0.5, -1, 0.3}, "directional light direction (x y z)")
	flags.Float64SliceVar(&cfg.lightColor, "light-color", []float64{1, 1, 1}, "directional light color (r g b, 0-1)")
	flags.Float64SliceVar(&cfg.ambient, "ambient", []float64{0.15, 0.15, 0.18}, "scene ambient color (r g b, 0-1)")

	flags.BoolVar(&cfg.smooth, "smooth", false, "render an animated multi-frame orbit instead of a single frame, easing the camera with a harmonica spring")
	flags.IntVar(&cfg.frames, "frames", 60, "frame count for --smooth (ignored otherwise)")
	flags.BoolVar(&cfg.preview, "preview", false, "additionally display the rendered frame in the terminal")

	flags.BoolVar(&cfg.wireframe, "wireframe", false, "draw triangle edges instead of filling them")
	flags.BoolVar(&cfg.axes, "axes", false, "overlay world-space coordinate axes and a ground grid")

	cmd.MarkFlagRequired("scene")
	return cmd
}

func runRasterize(ctx context.Context, cfg *config) error {
	logger := newLogger(cfg)

	s, bounds, err := buildScene(logger, cfg)
	if err != nil {
		return err
	}
	logger.Info("scene loaded", "path", cfg.scenePath, "objects", len(s.Objects), "radius", bounds.radius)

	if cfg.smooth {
		return runSmoothOrbit(ctx, logger, s, bounds, cfg)
	}

	fs := newFrameSetup(cfg, bounds)
	if err := renderFrame(ctx, logger, s, bounds, fs, cfg); err != nil {
		return err
	}
	return finishFrame(logger, cfg, fs, cfg.outPath)
}

// finishFrame writes fs's framebuffer to disk in the requested format and,
// if requested, additionally previews it in the terminal.
func finishFrame(logger *log.Logger, cfg *config, fs *frameSetup, outPath string) error {
	if err := saveFramebuffer(cfg, fs.fb, outPath); err != nil {
		return fmt.Errorf("save output: %w", err)
	}
	logger.Info("wrote output", "path", outPath, "format", cfg.format)

	if cfg.preview {
		if err := previewFramebuffer(fs.fb); err != nil {
			logger.Warn("terminal preview failed", "error", err)
		}
	}
	return nil
}
