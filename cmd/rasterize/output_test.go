package main

import "testing"

func TestOutputPathForFrame(t *testing.T) {
	cases := []struct {
		base  string
		index int
		want  string
	}{
		{"out.ppm", 0, "out-000.ppm"},
		{"out.ppm", 42, "out-042.ppm"},
		{"render/frame.png", 7, "render/frame-007.png"},
		{"noext", 3, "noext-003"},
	}
	for _, c := range cases {
		if got := outputPathForFrame(c.base, c.index); got != c.want {
			t.Errorf("outputPathForFrame(%q, %d) = %q, want %q", c.base, c.index, got, c.want)
		}
	}
}

func TestSaveFramebufferRejectsUnknownFormat(t *testing.T) {
	cfg := &config{format: "bmp"}
	if err := saveFramebuffer(cfg, nil, "out.bmp"); err == nil {
		t.Error("expected an error for an unknown output format")
	}
}
