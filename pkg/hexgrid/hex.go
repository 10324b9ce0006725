// Package hexgrid содержит математику осевых (axial) координат гексагональной сетки.
package hexgrid

import (
	"fmt"
	"math"
)

// Hex - позиция на сетке в осевых координатах.
// Третья кубическая координата вычисляется: s = -q - r.
type Hex struct {
	Q int `json:"q" yaml:"q"`
	R int `json:"r" yaml:"r"`
}

// New создает гекс из осевых координат.
func New(q, r int) Hex {
	return Hex{Q: q, R: r}
}

// S возвращает неявную третью координату.
func (h Hex) S() int {
	return -h.Q - h.R
}

// Add складывает два гекса как векторы.
func (h Hex) Add(other Hex) Hex {
	return Hex{Q: h.Q + other.Q, R: h.R + other.R}
}

// Subtract вычитает гекс как вектор.
func (h Hex) Subtract(other Hex) Hex {
	return Hex{Q: h.Q - other.Q, R: h.R - other.R}
}

// Directions - шесть смещений к соседям. Порядок фиксирован: от него зависит
// порядок обхода в поиске пути, а значит и детерминизм реплеев.
var Directions = [6]Hex{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbor возвращает соседа в направлении dir (0..5).
func (h Hex) Neighbor(dir int) Hex {
	return h.Add(Directions[((dir%6)+6)%6])
}

// Neighbors возвращает всех шестерых соседей.
func (h Hex) Neighbors() [6]Hex {
	var result [6]Hex
	for i, d := range Directions {
		result[i] = h.Add(d)
	}
	return result
}

// Distance возвращает расстояние в шагах: (|dq| + |dr| + |ds|) / 2.
func Distance(a, b Hex) int {
	d := a.Subtract(b)
	return (abs(d.Q) + abs(d.R) + abs(d.S())) / 2
}

// DistanceTo - то же, что Distance, в виде метода.
func (h Hex) DistanceTo(other Hex) int {
	return Distance(h, other)
}

// IsAdjacent возвращает true, если other - соседняя клетка.
func (h Hex) IsAdjacent(other Hex) bool {
	return Distance(h, other) == 1
}

func (h Hex) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// FractionalHex - гекс с дробными кубическими координатами (результат
// интерполяции или перевода из пикселей).
type FractionalHex struct {
	Q, R, S float64
}

// Round округляет дробный гекс до ближайшего целого.
// Каждая ось округляется отдельно, затем ось с наибольшей ошибкой
// пересчитывается из двух других, чтобы сохранить q + r + s = 0.
func (f FractionalHex) Round() Hex {
	q := math.Round(f.Q)
	r := math.Round(f.R)
	s := math.Round(f.S)

	dq := math.Abs(q - f.Q)
	dr := math.Abs(r - f.R)
	ds := math.Abs(s - f.S)

	if dq > dr && dq > ds {
		q = -r - s
	} else if dr > ds {
		r = -q - s
	}
	// Иначе пересчитывается s, но в осевом виде она не хранится.

	return Hex{Q: int(q), R: int(r)}
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func hexLerp(a, b Hex, t float64) FractionalHex {
	return FractionalHex{
		Q: lerp(float64(a.Q), float64(b.Q), t),
		R: lerp(float64(a.R), float64(b.R), t),
		S: lerp(float64(a.S()), float64(b.S()), t),
	}
}

// Line возвращает гексы на отрезке от a до b включительно.
// Берется distance+1 равномерных точек интерполяции, каждая округляется.
func Line(a, b Hex) []Hex {
	n := Distance(a, b)
	results := make([]Hex, 0, n+1)
	if n == 0 {
		return append(results, a)
	}
	step := 1.0 / float64(n)
	for i := 0; i <= n; i++ {
		results = append(results, hexLerp(a, b, step*float64(i)).Round())
	}
	return results
}

// Range возвращает все гексы в радиусе radius от center (включая центр).
// Порядок обхода стабилен: по q, затем по r.
func Range(center Hex, radius int) []Hex {
	if radius < 0 {
		return nil
	}
	results := make([]Hex, 0, 3*radius*(radius+1)+1)
	for q := -radius; q <= radius; q++ {
		r1 := max(-radius, -q-radius)
		r2 := min(radius, -q+radius)
		for r := r1; r <= r2; r++ {
			results = append(results, center.Add(Hex{Q: q, R: r}))
		}
	}
	return results
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
