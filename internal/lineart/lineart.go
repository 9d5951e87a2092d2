// Package lineart generates the torus line-art used as the site logo: a set
// of 2D polyline rings produced by sampling circles on a torus, rotating the
// result around two fixed axes, and perspective-projecting into a viewport.
// The generator is pure and deterministic; the same config always yields the
// same paths.
package lineart

import "math"

// Config is the fixed numeric recipe for one rendering of the logo.
type Config struct {
	Rings          int     `json:"rings"`           // tube cross-sections drawn around the torus
	Segments       int     `json:"segments"`        // sample points per ring
	TorusRadius    float64 `json:"torus_radius"`    // distance from torus center to tube center
	TubeRadius     float64 `json:"tube_radius"`     // tube thickness radius
	CameraDistance float64 `json:"camera_distance"` // camera z offset for perspective
	RotationX      float64 `json:"rotation_x"`      // radians
	RotationY      float64 `json:"rotation_y"`      // radians
	Width          float64 `json:"width"`           // viewport width
	Height         float64 `json:"height"`          // viewport height
	MinOpacity     float64 `json:"min_opacity"`
	MaxOpacity     float64 `json:"max_opacity"`
}

// Ring is one projected polyline with its display opacity.
type Ring struct {
	Points  [][2]float64 `json:"points"`
	Opacity float64      `json:"opacity"`
}

// DefaultConfig returns the parameters the site logo ships with.
func DefaultConfig() Config {
	return Config{
		Rings:          24,
		Segments:       48,
		TorusRadius:    1.5,
		TubeRadius:     0.6,
		CameraDistance: 6,
		RotationX:      math.Pi / 5,
		RotationY:      math.Pi / 7,
		Width:          480,
		Height:         480,
		MinOpacity:     0.15,
		MaxOpacity:     0.85,
	}
}

// Generate maps the config to projected rings: unit-circle sampling → torus
// embedding → X rotation → Y rotation → perspective projection → viewport
// remap. Each ring's final point repeats its first so the polyline closes.
func Generate(cfg Config) []Ring {
	cfg = cfg.withDefaults()

	sinX, cosX := math.Sincos(cfg.RotationX)
	sinY, cosY := math.Sincos(cfg.RotationY)

	// Scale so the fully rotated torus fits the viewport with a margin.
	extent := cfg.TorusRadius + cfg.TubeRadius
	view := math.Min(cfg.Width, cfg.Height) / 2 * 0.85

	rings := make([]Ring, 0, cfg.Rings)
	for i := 0; i < cfg.Rings; i++ {
		phi := 2 * math.Pi * float64(i) / float64(cfg.Rings)
		sinPhi, cosPhi := math.Sincos(phi)

		points := make([][2]float64, 0, cfg.Segments+1)
		for j := 0; j <= cfg.Segments; j++ {
			theta := 2 * math.Pi * float64(j%cfg.Segments) / float64(cfg.Segments)
			sinTheta, cosTheta := math.Sincos(theta)

			x := (cfg.TorusRadius + cfg.TubeRadius*cosTheta) * cosPhi
			y := (cfg.TorusRadius + cfg.TubeRadius*cosTheta) * sinPhi
			z := cfg.TubeRadius * sinTheta

			// Rotate about X, then Y.
			y, z = y*cosX-z*sinX, y*sinX+z*cosX
			x, z = x*cosY+z*sinY, -x*sinY+z*cosY

			// Perspective projection and viewport remap.
			f := cfg.CameraDistance / (cfg.CameraDistance - z)
			px := x*f/extent*view + cfg.Width/2
			py := y*f/extent*view + cfg.Height/2
			points = append(points, [2]float64{px, py})
		}

		t := 0.0
		if cfg.Rings > 1 {
			t = float64(i) / float64(cfg.Rings-1)
		}
		rings = append(rings, Ring{
			Points:  points,
			Opacity: cfg.MinOpacity + (cfg.MaxOpacity-cfg.MinOpacity)*t,
		})
	}
	return rings
}

// withDefaults replaces zero or nonsensical values with defaults so a partial
// config still renders something.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Rings <= 0 {
		c.Rings = def.Rings
	}
	if c.Segments < 3 {
		c.Segments = def.Segments
	}
	if c.TorusRadius <= 0 {
		c.TorusRadius = def.TorusRadius
	}
	if c.TubeRadius <= 0 {
		c.TubeRadius = def.TubeRadius
	}
	if c.CameraDistance <= c.TorusRadius+c.TubeRadius {
		c.CameraDistance = def.CameraDistance
		if c.CameraDistance <= c.TorusRadius+c.TubeRadius {
			c.CameraDistance = (c.TorusRadius + c.TubeRadius) * 2.4
		}
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.MaxOpacity <= 0 {
		c.MinOpacity, c.MaxOpacity = def.MinOpacity, def.MaxOpacity
	}
	return c
}
