package systems

import (
	"container/heap"

	"hextactics-server/internal/domain"
)

// FrontierItem обертка для элемента очереди поиска пути
type FrontierItem struct {
	Tile     *domain.Tile
	Priority int    // Накопленная стоимость. Чем меньше, тем раньше.
	Seq      uint64 // Порядок вставки: при равной стоимости раньше вставленный идет первым
	Index    int    // Индекс в куче
}

// Frontier реализует heap.Interface: min-heap по (Priority, Seq)
type Frontier struct {
	items   []*FrontierItem
	nextSeq uint64
}

func (f *Frontier) Len() int { return len(f.items) }

func (f *Frontier) Less(i, j int) bool {
	if f.items[i].Priority != f.items[j].Priority {
		return f.items[i].Priority < f.items[j].Priority
	}
	return f.items[i].Seq < f.items[j].Seq
}

func (f *Frontier) Swap(i, j int) {
	f.items[i], f.items[j] = f.items[j], f.items[i]
	f.items[i].Index = i
	f.items[j].Index = j
}

func (f *Frontier) Push(x interface{}) {
	item := x.(*FrontierItem)
	item.Index = len(f.items)
	f.items = append(f.items, item)
}

func (f *Frontier) Pop() interface{} {
	old := f.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // избегаем утечки памяти
	item.Index = -1 // для безопасности
	f.items = old[0 : n-1]
	return item
}

// Enqueue добавляет клетку с порядковым номером вставки
func (f *Frontier) Enqueue(t *domain.Tile, priority int) {
	f.nextSeq++
	heap.Push(f, &FrontierItem{Tile: t, Priority: priority, Seq: f.nextSeq})
}

// Dequeue извлекает клетку с минимальным (Priority, Seq)
func (f *Frontier) Dequeue() *FrontierItem {
	return heap.Pop(f).(*FrontierItem)
}
