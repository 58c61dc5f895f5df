package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/sim"
)

type Point struct{ X, Y float64 }

// Field picks one scalar out of a body state.
type Field func(dynamo.KinematicState) float64

var Fields = map[string]Field{
	"x":     func(s dynamo.KinematicState) float64 { return s.X },
	"y":     func(s dynamo.KinematicState) float64 { return s.Y },
	"dx":    func(s dynamo.KinematicState) float64 { return s.DX },
	"dy":    func(s dynamo.KinematicState) float64 { return s.DY },
	"speed": func(s dynamo.KinematicState) float64 { return s.Speed() },
}

func ParseField(name string) (Field, error) {
	f, ok := Fields[name]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", name)
	}
	return f, nil
}

// PhasePortrait pairs two fields of one body over a recorded run.
func PhasePortrait(r *sim.Result, body int, fx, fy Field) ([]Point, error) {
	if body < 0 || body >= len(r.Bodies) {
		return nil, fmt.Errorf("%w: %d", dynamo.ErrBodyIndex, body)
	}
	points := make([]Point, len(r.States))
	for i, row := range r.States {
		points[i] = Point{X: fx(row[body]), Y: fy(row[body])}
	}
	return points, nil
}

// Crossing is a body passing a horizontal line.
type Crossing struct {
	Time  float64
	X     float64
	Speed float64
	// Down is true when y increased across the line.
	Down bool
}

// Crossings records every sample where the body's center moves across y =
// line, interpolating time and x linearly between samples.
func Crossings(r *sim.Result, body int, line float64) ([]Crossing, error) {
	if body < 0 || body >= len(r.Bodies) {
		return nil, fmt.Errorf("%w: %d", dynamo.ErrBodyIndex, body)
	}
	var out []Crossing
	for i := 1; i < len(r.States); i++ {
		prev, cur := r.States[i-1][body], r.States[i][body]
		down := prev.Y < line && cur.Y >= line
		up := prev.Y > line && cur.Y <= line
		if !down && !up {
			continue
		}
		frac := (line - prev.Y) / (cur.Y - prev.Y)
		out = append(out, Crossing{
			Time:  r.Times[i-1] + frac*(r.Times[i]-r.Times[i-1]),
			X:     prev.X + frac*(cur.X-prev.X),
			Speed: cur.Speed(),
			Down:  down,
		})
	}
	return out, nil
}

// PhasePortraitToASCII plots points on a width x height character grid with
// 10% padding, drawing the zero axes when they are in view.
func PhasePortraitToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int(-minX / rangeX * float64(width-1))
		for row := range grid {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int(-minY/rangeY*float64(height-1))
		for col := range grid[row] {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
