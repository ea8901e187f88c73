package ui

// Area is a rectangle with inclusive corner coordinates.
type Area struct {
	X1, Y1, X2, Y2 int16
}

// Point is a screen coordinate.
type Point struct {
	X, Y int16
}

// Rect returns the area at x, y with the given width and height.
func Rect(x, y, width, height int16) Area {
	return Area{X1: x, Y1: y, X2: x + width - 1, Y2: y + height - 1}
}

func (a Area) Width() int16 {
	return a.X2 - a.X1 + 1
}

func (a Area) Height() int16 {
	return a.Y2 - a.Y1 + 1
}

// Size returns the number of pixels in the area.
func (a Area) Size() int {
	if a.Empty() {
		return 0
	}
	return int(a.Width()) * int(a.Height())
}

// Empty returns true if the area doesn't contain any pixels.
func (a Area) Empty() bool {
	return a.X2 < a.X1 || a.Y2 < a.Y1
}

// Contains returns whether the point lies in the area.
func (a Area) Contains(p Point) bool {
	return p.X >= a.X1 && p.X <= a.X2 && p.Y >= a.Y1 && p.Y <= a.Y2
}

// In returns whether a lies entirely inside b.
func (a Area) In(b Area) bool {
	return a.X1 >= b.X1 && a.Y1 >= b.Y1 && a.X2 <= b.X2 && a.Y2 <= b.Y2
}

// Intersect returns the common part of both areas. The result is empty if
// they don't overlap.
func (a Area) Intersect(b Area) Area {
	return Area{
		X1: max16(a.X1, b.X1),
		Y1: max16(a.Y1, b.Y1),
		X2: min16(a.X2, b.X2),
		Y2: min16(a.Y2, b.Y2),
	}
}

// Overlaps returns whether the areas have at least one pixel in common.
func (a Area) Overlaps(b Area) bool {
	return !a.Intersect(b).Empty()
}

// Union returns the smallest area containing both areas.
func (a Area) Union(b Area) Area {
	return Area{
		X1: min16(a.X1, b.X1),
		Y1: min16(a.Y1, b.Y1),
		X2: max16(a.X2, b.X2),
		Y2: max16(a.Y2, b.Y2),
	}
}

func min16(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}

func max16(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}
