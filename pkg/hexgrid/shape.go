package hexgrid

import (
	"fmt"
	"strings"
)

// ShapeKind - форма игрового поля.
type ShapeKind string

const (
	ShapeHexagon       ShapeKind = "hexagon"
	ShapeRectangle     ShapeKind = "rectangle"
	ShapeParallelogram ShapeKind = "parallelogram"
)

// Shape описывает форму сетки из шаблона карты.
type Shape struct {
	Kind   ShapeKind `json:"kind" yaml:"kind"`
	Radius int       `json:"radius,omitempty" yaml:"radius,omitempty"`
	Width  int       `json:"width,omitempty" yaml:"width,omitempty"`
	Height int       `json:"height,omitempty" yaml:"height,omitempty"`
}

// Cells возвращает все клетки формы в стабильном порядке.
func (s Shape) Cells() ([]Hex, error) {
	switch ShapeKind(strings.ToLower(string(s.Kind))) {
	case ShapeHexagon, "":
		if s.Radius < 0 {
			return nil, fmt.Errorf("hexagon radius must be >= 0, got %d", s.Radius)
		}
		return Range(Hex{}, s.Radius), nil

	case ShapeRectangle:
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("rectangle needs positive size, got %dx%d", s.Width, s.Height)
		}
		// Прямоугольник в "odd-r" раскладке: сдвигаем q на каждой второй строке.
		cells := make([]Hex, 0, s.Width*s.Height)
		for r := 0; r < s.Height; r++ {
			offset := r >> 1
			for q := -offset; q < s.Width-offset; q++ {
				cells = append(cells, Hex{Q: q, R: r})
			}
		}
		return cells, nil

	case ShapeParallelogram:
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("parallelogram needs positive size, got %dx%d", s.Width, s.Height)
		}
		cells := make([]Hex, 0, s.Width*s.Height)
		for q := 0; q < s.Width; q++ {
			for r := 0; r < s.Height; r++ {
				cells = append(cells, Hex{Q: q, R: r})
			}
		}
		return cells, nil
	}

	return nil, fmt.Errorf("unknown grid shape %q", s.Kind)
}
