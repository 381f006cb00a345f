package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/orbsim/internal/storage"
)

// Palette colours one trajectory per body, cycling when there are more
// bodies than colours.
var Palette = []string{"#ffd166", "#06d6a0", "#118ab2", "#ef476f", "#8338ec", "#fb5607"}

type point struct{ X, Y float64 }

// project drops y, so orbits in the x/z plane are seen from above.
func project(s storage.Sample) point {
	return point{X: s.Position[0], Y: s.Position[2]}
}

// TrajectorySVG draws every body's recorded path, top-down, scaled to fit a
// width x height viewport with a 10% margin. Each body's last sample is
// marked with a dot.
func TrajectorySVG(w io.Writer, samples []storage.Sample, width, height int) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", width, height)
	}

	var order []string
	paths := make(map[string][]point)
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		if _, ok := paths[s.Body]; !ok {
			order = append(order, s.Body)
		}
		p := project(s)
		paths[s.Body] = append(paths[s.Body], p)
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	// equal scale on both axes so circles stay circles
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	px := math.Min(float64(width), float64(height)) / span
	toScreen := func(p point) (float64, float64) {
		return float64(width)/2 + (p.X-cx)*px, float64(height)/2 - (p.Y-cy)*px
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, name := range order {
		colour := Palette[i%len(Palette)]
		pts := paths[name]

		fmt.Fprintf(&sb, `<g id="%s">`+"\n", escape(name))
		if len(pts) > 1 {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, colour)
			for j, p := range pts {
				x, y := toScreen(p)
				if j == 0 {
					fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
				}
			}
			sb.WriteString("\"/>\n")
		}
		x, y := toScreen(pts[len(pts)-1])
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`+"\n", x, y, colour)
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
