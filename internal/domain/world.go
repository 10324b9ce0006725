package domain

import (
	"fmt"
	"sort"

	"hextactics-server/pkg/hexgrid"
)

type Tile struct {
	Pos        hexgrid.Hex    `json:"pos"`
	IsObstacle bool           `json:"isObstacle"`
	Visibility TileVisibility `json:"visibility"`

	// Служебные поля поиска пути. Сбрасываются перед каждым поиском.
	PathCost    int   `json:"-"`
	PathVisited bool  `json:"-"`
	PathFrom    *Tile `json:"-"`
}

// ResetPath очищает служебные поля поиска пути
func (t *Tile) ResetPath() {
	t.PathCost = 0
	t.PathVisited = false
	t.PathFrom = nil
}

type GameWorld struct {
	MapID string `json:"mapId"`

	// Tiles: клетка по координатам. Отсутствующий ключ = клетки нет (форма карты).
	Tiles     map[hexgrid.Hex]*Tile `json:"-"`
	TileOrder []hexgrid.Hex         `json:"-"`

	// SpatialHash: Позиция -> Список сущностей
	// json:"-" означает, что мы НЕ отправляем этот индекс клиенту
	SpatialHash    map[hexgrid.Hex][]*Entity `json:"-"`
	EntityRegistry map[EntityID]*Entity      `json:"-"`

	// Все живые сущности в порядке создания
	order   []*Entity
	nextSeq uint64
}

// NewGameWorld создает карту из списка клеток и препятствий
func NewGameWorld(mapID string, cells []hexgrid.Hex, obstacles []hexgrid.Hex) *GameWorld {
	w := &GameWorld{
		MapID:          mapID,
		Tiles:          make(map[hexgrid.Hex]*Tile, len(cells)),
		TileOrder:      make([]hexgrid.Hex, 0, len(cells)),
		SpatialHash:    make(map[hexgrid.Hex][]*Entity),
		EntityRegistry: make(map[EntityID]*Entity),
	}
	for _, c := range cells {
		if _, dup := w.Tiles[c]; dup {
			continue
		}
		w.Tiles[c] = &Tile{Pos: c}
		w.TileOrder = append(w.TileOrder, c)
	}
	for _, o := range obstacles {
		if t := w.Tiles[o]; t != nil {
			t.IsObstacle = true
		}
	}
	return w
}

// GetTile возвращает клетку или nil, если ее нет в форме карты. Никогда не паникует.
func (w *GameWorld) GetTile(q, r int) *Tile {
	return w.TileAt(hexgrid.Hex{Q: q, R: r})
}

func (w *GameWorld) TileAt(h hexgrid.Hex) *Tile {
	if w == nil || w.Tiles == nil {
		return nil
	}
	return w.Tiles[h]
}

// GetEntitiesAt возвращает сущности в клетке по возрастанию zIndex
// (при равенстве - по порядку создания). Возвращается копия.
func (w *GameWorld) GetEntitiesAt(q, r int) []*Entity {
	return w.EntitiesAt(hexgrid.Hex{Q: q, R: r})
}

func (w *GameWorld) EntitiesAt(h hexgrid.Hex) []*Entity {
	src := w.SpatialHash[h]
	if len(src) == 0 {
		return nil
	}
	out := make([]*Entity, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// BlockerAt - сущность, перекрывающая клетку (кроме ignore)
func (w *GameWorld) BlockerAt(h hexgrid.Hex, ignore *Entity) *Entity {
	for _, e := range w.SpatialHash[h] {
		if e != ignore && e.BlocksMovement {
			return e
		}
	}
	return nil
}

// IsPassable - клетка существует, не стена, никто не стоит (кроме ignore)
func (w *GameWorld) IsPassable(h hexgrid.Hex, ignore *Entity) bool {
	t := w.TileAt(h)
	if t == nil || t.IsObstacle {
		return false
	}
	return w.BlockerAt(h, ignore) == nil
}

// GetWalkableNeighbors - до 6 соседних клеток, которые существуют, не стены,
// не скрыты туманом и не заняты блокирующей сущностью.
func (w *GameWorld) GetWalkableNeighbors(t *Tile) []*Tile {
	return w.NeighborsWhere(t, func(n *Tile) bool {
		return n.Visibility != VisibilityHidden && w.BlockerAt(n.Pos, nil) == nil
	})
}

// NeighborsWhere - существующие соседи-не-стены, прошедшие фильтр, в порядке hexgrid.Directions
func (w *GameWorld) NeighborsWhere(t *Tile, ok func(*Tile) bool) []*Tile {
	if t == nil {
		return nil
	}
	out := make([]*Tile, 0, 6)
	for _, h := range t.Pos.Neighbors() {
		n := w.TileAt(h)
		if n == nil || n.IsObstacle {
			continue
		}
		if ok != nil && !ok(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// GetEntity ищет сущность по ID
func (w *GameWorld) GetEntity(id EntityID) *Entity {
	if w.EntityRegistry == nil {
		return nil
	}
	return w.EntityRegistry[id]
}

// Entities - живые сущности в порядке создания (копия)
func (w *GameWorld) Entities() []*Entity {
	out := make([]*Entity, len(w.order))
	copy(out, w.order)
	return out
}

// RegisterEntity ставит сущность на карту: реестр, индекс позиции, порядок создания.
func (w *GameWorld) RegisterEntity(e *Entity) error {
	if w.TileAt(e.Pos) == nil {
		return fmt.Errorf("entity %s: no tile at %s", e.ID, e.Pos)
	}
	if _, exists := w.EntityRegistry[e.ID]; exists {
		return fmt.Errorf("entity %s already registered", e.ID)
	}
	w.nextSeq++
	e.Seq = w.nextSeq
	w.EntityRegistry[e.ID] = e
	w.order = append(w.order, e)
	w.addToHash(e)
	e.Init(w)
	return nil
}

// UnregisterEntity убирает сущность отовсюду и вызывает Destroy.
func (w *GameWorld) UnregisterEntity(e *Entity) {
	if _, ok := w.EntityRegistry[e.ID]; !ok {
		return
	}
	w.removeFromHash(e)
	delete(w.EntityRegistry, e.ID)
	for i, other := range w.order {
		if other == e {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	e.Destroy()
}

// Detach убирает сущность с карты без Destroy (игрок при смене карты).
func (w *GameWorld) Detach(e *Entity) {
	if _, ok := w.EntityRegistry[e.ID]; !ok {
		return
	}
	w.removeFromHash(e)
	delete(w.EntityRegistry, e.ID)
	for i, other := range w.order {
		if other == e {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// UpdateEntityPos перемещает сущность в индексе. Несуществующая клетка - ошибка.
func (w *GameWorld) UpdateEntityPos(e *Entity, to hexgrid.Hex) error {
	if w.TileAt(to) == nil {
		return fmt.Errorf("no tile at %s", to)
	}
	w.removeFromHash(e)
	e.Pos = to
	w.addToHash(e)
	return nil
}

func (w *GameWorld) addToHash(e *Entity) {
	w.SpatialHash[e.Pos] = append(w.SpatialHash[e.Pos], e)
}

func (w *GameWorld) removeFromHash(e *Entity) {
	entities := w.SpatialHash[e.Pos]
	for i, other := range entities {
		if other == e {
			// Сохраняем порядок: от него зависит стабильность сортировки
			w.SpatialHash[e.Pos] = append(entities[:i], entities[i+1:]...)
			break
		}
	}
	if len(w.SpatialHash[e.Pos]) == 0 {
		delete(w.SpatialHash, e.Pos)
	}
}

// ResetPathfinding сбрасывает служебные поля всех клеток
func (w *GameWorld) ResetPathfinding() {
	for _, t := range w.Tiles {
		t.ResetPath()
	}
}

// Player - единственный живой игрок на карте
func (w *GameWorld) Player() *Entity {
	for _, e := range w.order {
		if e.Kind == KindPlayer {
			return e
		}
	}
	return nil
}
