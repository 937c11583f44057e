package main

import (
	"context"
	"fmt"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/trophy/pkg/render"
)

// previewFramebuffer displays fb once in the terminal using the half-block
// cell technique from pkg/render/terminal.go's Framebuffer.Draw, adapted
// from cmd/trophy/main.go's interactive viewer into a single-shot preview
// for a batch render: enter the alt screen, draw one frame, wait for a
// keypress, then restore the terminal.
func previewFramebuffer(fb *render.Framebuffer) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer term.Shutdown(context.Background())

	term.EnterAltScreen()
	defer term.ExitAltScreen()
	term.HideCursor()
	defer term.ShowCursor()
	term.Resize(width, height)

	area := uv.Rect(0, 0, width, height)
	fb.Draw(term, area)
	term.Display()

	for ev := range term.Events() {
		if _, ok := ev.(uv.KeyPressEvent); ok {
			break
		}
	}
	return nil
}
