package hexgrid

import "math"

// Point - точка в пиксельных координатах.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Orientation - фиксированная матрица 2x2 (прямая и обратная) для перевода
// гекс <-> пиксель.
type Orientation struct {
	F0, F1, F2, F3 float64
	B0, B1, B2, B3 float64
}

// PointyTop - гексы "острием вверх".
var PointyTop = Orientation{
	F0: math.Sqrt(3.0), F1: math.Sqrt(3.0) / 2.0, F2: 0.0, F3: 3.0 / 2.0,
	B0: math.Sqrt(3.0) / 3.0, B1: -1.0 / 3.0, B2: 0.0, B3: 2.0 / 3.0,
}

// FlatTop - гексы "плоской стороной вверх".
var FlatTop = Orientation{
	F0: 3.0 / 2.0, F1: 0.0, F2: math.Sqrt(3.0) / 2.0, F3: math.Sqrt(3.0),
	B0: 2.0 / 3.0, B1: 0.0, B2: -1.0 / 3.0, B3: math.Sqrt(3.0) / 3.0,
}

// Layout параметризует матрицу размером гекса и началом координат.
type Layout struct {
	Orientation Orientation
	Size        Point
	Origin      Point
}

// NewLayout создает раскладку с одинаковым размером по обеим осям.
func NewLayout(o Orientation, size float64, origin Point) Layout {
	return Layout{Orientation: o, Size: Point{X: size, Y: size}, Origin: origin}
}

// HexToPixel возвращает центр гекса в пикселях.
func (l Layout) HexToPixel(h Hex) Point {
	m := l.Orientation
	x := (m.F0*float64(h.Q) + m.F1*float64(h.R)) * l.Size.X
	y := (m.F2*float64(h.Q) + m.F3*float64(h.R)) * l.Size.Y
	return Point{X: x + l.Origin.X, Y: y + l.Origin.Y}
}

// PixelToHex переводит пиксель в дробный гекс. Для попадания в клетку
// результат нужно округлить через Round.
func (l Layout) PixelToHex(p Point) FractionalHex {
	m := l.Orientation
	pt := Point{
		X: (p.X - l.Origin.X) / l.Size.X,
		Y: (p.Y - l.Origin.Y) / l.Size.Y,
	}
	q := m.B0*pt.X + m.B1*pt.Y
	r := m.B2*pt.X + m.B3*pt.Y
	return FractionalHex{Q: q, R: r, S: -q - r}
}
