package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/trophy/pkg/output"
	"github.com/taigrr/trophy/pkg/render"
)

// saveFramebuffer writes fb to path, honoring cfg.format when it names an
// explicit format and falling back to output.SaveAuto's extension dispatch
// when cfg.format is "auto".
func saveFramebuffer(cfg *config, fb *render.Framebuffer, path string) error {
	switch strings.ToLower(cfg.format) {
	case "", "auto":
		return output.SaveAuto(fb, path)
	case "ppm":
		return output.WritePPM(fb, path)
	case "tga":
		return output.WriteTGA(fb, path)
	case "png":
		return fb.SavePNG(path)
	default:
		return fmt.Errorf("unknown output format %q (want auto, ppm, tga, or png)", cfg.format)
	}
}

// outputPathForFrame builds the path for one frame of a --smooth animation,
// inserting a zero-padded frame index before the extension (frame-000.ppm,
// frame-001.ppm, ...).
func outputPathForFrame(base string, index int) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s-%03d%s", stem, index, ext)
}
