package render

import "math"

type ShapeKind int

const (
	ShapeLine ShapeKind = iota
	ShapeRect
	ShapeArc
	ShapeDot
)

// Shape is one pitch marking in surface coordinates.
// Lines use (X1,Y1)-(X2,Y2); rects use X1,Y1 as the corner and X2,Y2 as the size;
// arcs and dots use (X1,Y1) as the centre, R as radius and From/To in radians.
type Shape struct {
	Kind           ShapeKind
	X1, Y1, X2, Y2 float64
	R              float64
	From, To       float64
}

func line(x1, y1, x2, y2 float64) Shape {
	return Shape{Kind: ShapeLine, X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func rect(x, y, w, h float64) Shape {
	return Shape{Kind: ShapeRect, X1: x, Y1: y, X2: w, Y2: h}
}

func arc(cx, cy, r, from, to float64) Shape {
	return Shape{Kind: ShapeArc, X1: cx, Y1: cy, R: r, From: from, To: to}
}

func dot(cx, cy, r float64) Shape {
	return Shape{Kind: ShapeDot, X1: cx, Y1: cy, R: r}
}

// Markings returns the pitch lines for a w x h surface, goals on the left and right.
func Markings(w, h float64) []Shape {
	cx, cy := w/2, h/2
	return []Shape{
		rect(20, 20, w-40, h-40),
		line(cx, 20, cx, h-20),
		arc(cx, cy, 50, 0, 2*math.Pi),
		dot(cx, cy, 2),

		rect(20, cy-100, 120, 200),
		rect(w-140, cy-100, 120, 200),
		rect(20, cy-50, 50, 100),
		rect(w-70, cy-50, 50, 100),
		rect(10, cy-35, 10, 70),
		rect(w-20, cy-35, 10, 70),

		dot(80, cy, 3),
		dot(w-80, cy, 3),
		// penalty arcs face the centre line
		arc(80, cy, 60, -math.Pi/2, math.Pi/2),
		arc(w-80, cy, 60, math.Pi/2, 3*math.Pi/2),

		arc(20, 20, 10, 0, math.Pi/2),
		arc(w-20, 20, 10, math.Pi/2, math.Pi),
		arc(20, h-20, 10, 3*math.Pi/2, 2*math.Pi),
		arc(w-20, h-20, 10, math.Pi, 3*math.Pi/2),
	}
}

// ArcPoint returns the point at angle a on a circle. Angles grow clockwise on screen.
func ArcPoint(cx, cy, r, a float64) (x, y float64) {
	return cx + r*math.Cos(a), cy + r*math.Sin(a)
}
