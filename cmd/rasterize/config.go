package main

// config holds every flag cmd/rasterize accepts. It is populated by cobra's
// pflag bindings in newRootCommand and passed down instead of read back out
// of the command tree, so the render path stays testable without cobra.
type config struct {
	scenePath  string
	width      int
	height     int
	outPath    string
	format     string
	workers    int
	shadowSize int
	logLevel   string
	logFormat  string

	// lightDir, lightColor and ambient are 3-component (r,g,b or x,y,z)
	// flags; vec3 reads index 0-2 with a fallback default if the user
	// passed fewer than 3 values.
	lightDir   []float64
	lightColor []float64
	ambient    []float64

	smooth  bool
	frames  int
	preview bool

	wireframe bool
	axes      bool
}

// vec3 reads the first three components of a flag-bound slice, falling
// back to def component-wise for any missing ones (pflag's Float64SliceVar
// accepts any length, but every caller here wants exactly three).
func vec3(v []float64, def [3]float64) [3]float64 {
	out := def
	for i := 0; i < len(v) && i < 3; i++ {
		out[i] = v[i]
	}
	return out
}
