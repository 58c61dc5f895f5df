package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/pongsim/internal/sim"
)

// DefaultPalette colors bodies in order when no color is given.
var DefaultPalette = []string{"#ff5555", "#8be9fd", "#ffffff", "#50fa7b", "#ffb86c", "#bd93f9"}

// Arena is the drawing area in arena units. A zero Arena is fitted to the
// trajectories with 10% padding.
type Arena struct {
	Width, Height float64
}

// TrajectorySVG draws one polyline per body of a recorded run, scaled to a
// width x height pixel image. Colors falls back to DefaultPalette.
func TrajectorySVG(w io.Writer, r *sim.Result, arena Arena, width, height int, colors []string) error {
	if len(colors) == 0 {
		colors = DefaultPalette
	}
	minX, minY, rangeX, rangeY := bounds(r, arena)
	sx := float64(width) / rangeX
	sy := float64(height) / rangeY

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
	if arena.Width > 0 && arena.Height > 0 {
		fmt.Fprintf(bw, `<rect x="0.5" y="0.5" width="%d" height="%d" fill="none" stroke="#444444"/>
`, width-1, height-1)
	}

	for b, name := range r.Bodies {
		if len(r.States) < 2 {
			break
		}
		fmt.Fprintf(bw, `<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="`, name, colors[b%len(colors)])
		for i, row := range r.States {
			x := (row[b].X - minX) * sx
			y := (row[b].Y - minY) * sy
			if i == 0 {
				fmt.Fprintf(bw, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
			}
		}
		bw.WriteString("\"/>\n")
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

// bounds uses the arena when known. Arena y grows downward, as SVG y does, so
// no flip is needed.
func bounds(r *sim.Result, arena Arena) (minX, minY, rangeX, rangeY float64) {
	if arena.Width > 0 && arena.Height > 0 {
		return 0, 0, arena.Width, arena.Height
	}
	if len(r.States) == 0 || len(r.Bodies) == 0 {
		return 0, 0, 1, 1
	}

	first := r.States[0][0]
	minX, maxX := first.X, first.X
	minY, maxY := first.Y, first.Y
	for _, row := range r.States {
		for _, s := range row {
			minX, maxX = min(minX, s.X), max(maxX, s.X)
			minY, maxY = min(minY, s.Y), max(maxY, s.Y)
		}
	}

	rangeX, rangeY = maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return minX - rangeX*0.1, minY - rangeY*0.1, rangeX * 1.2, rangeY * 1.2
}
