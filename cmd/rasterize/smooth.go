package main

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/log"

	"github.com/taigrr/trophy/pkg/math3d"
	"github.com/taigrr/trophy/pkg/scene"
)

// runSmoothOrbit renders cfg.frames frames of the camera orbiting bounds's
// center, each frame's angle eased toward a steadily advancing target with
// a harmonica spring rather than stepped linearly — the same spring-driven
// smoothing cmd/trophy/main.go applies to its interactive rotation, adapted
// here to an offline multi-frame animation (a supplement beyond the single
// static frame original_source/src/main.cpp renders).
func runSmoothOrbit(ctx context.Context, logger *log.Logger, s *scene.Scene, bounds sceneBounds, cfg *config) error {
	if cfg.frames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", cfg.frames)
	}

	spring := harmonica.NewSpring(harmonica.FPS(30), 4.0, 1.0)
	var angle, angularVel float64

	for i := 0; i < cfg.frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		target := 2 * math.Pi * float64(i) / float64(cfg.frames)
		angle, angularVel = spring.Update(angle, angularVel, target)

		fs := newFrameSetup(cfg, bounds)
		orbitCamera(fs, bounds, angle)

		if err := renderFrame(ctx, logger, s, bounds, fs, cfg); err != nil {
			return fmt.Errorf("render frame %d: %w", i, err)
		}
		framePath := outputPathForFrame(cfg.outPath, i)
		if err := finishFrame(logger, cfg, fs, framePath); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	return nil
}

// orbitCamera repositions fs's camera to angle radians around bounds's
// center, at the same elevation and distance newFrameSetup used for the
// static single-frame view.
func orbitCamera(fs *frameSetup, bounds sceneBounds, angle float64) {
	distance := bounds.radius * 2.5
	horiz := distance
	elevation := distance * 0.5

	pos := bounds.center.Add(math3d.V3(horiz*math.Cos(angle), elevation, horiz*math.Sin(angle)))
	fs.camera.SetPosition(pos)
	fs.camera.LookAt(bounds.center)
}
