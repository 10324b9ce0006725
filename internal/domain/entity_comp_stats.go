package domain

import "encoding/json"

// Clamp держит ресурсы в границах [0, max].
func (s *StatsComponent) Clamp() {
	s.HP = clamp(s.HP, 0, s.MaxHP)
	s.MP = clamp(s.MP, 0, s.MaxMP)
	s.AP = clamp(s.AP, 0, s.MaxAP)
	if s.Level < 1 {
		s.Level = 1
	}
	if s.XP < 0 {
		s.XP = 0
	}
}

// IsDead - HP кончились
func (s *StatsComponent) IsDead() bool {
	return s.HP <= 0
}

// HasAP проверяет, хватает ли очков действия
func (s *StatsComponent) HasAP(cost int) bool {
	return s.AP >= cost
}

// HasMP проверяет, хватает ли маны
func (s *StatsComponent) HasMP(cost int) bool {
	return s.MP >= cost
}

// Canonical - каноничный JSON статов. Одинаковые статы дают одинаковые байты.
func (s *StatsComponent) Canonical() []byte {
	data, err := json.Marshal(s)
	if err != nil {
		// Структура без map/interface, Marshal не падает
		panic(err)
	}
	return data
}

// Snapshot - копия для событий (чтобы событие не менялось вместе с сущностью)
func (s *StatsComponent) Snapshot() *StatsComponent {
	cp := *s
	return &cp
}

// --- Мутации через сущность: клампят и пишут StatsChanged ---

// ModifyHP меняет HP с клампом. Возвращает фактическое изменение.
func (e *Entity) ModifyHP(delta int, events *EventBuffer) int {
	return e.modify(&e.Stats.HP, e.Stats.MaxHP, delta, events)
}

// ModifyMP меняет ману с клампом.
func (e *Entity) ModifyMP(delta int, events *EventBuffer) int {
	return e.modify(&e.Stats.MP, e.Stats.MaxMP, delta, events)
}

// ModifyAP меняет очки действия с клампом.
func (e *Entity) ModifyAP(delta int, events *EventBuffer) int {
	return e.modify(&e.Stats.AP, e.Stats.MaxAP, delta, events)
}

// SpendAP тратит очки действия. Возвращает false, если не хватило (ничего не меняя).
func (e *Entity) SpendAP(cost int, events *EventBuffer) bool {
	if e.Stats == nil || !e.Stats.HasAP(cost) {
		return false
	}
	if cost > 0 {
		e.ModifyAP(-cost, events)
	}
	return true
}

// RestoreAP - AP до максимума (начало сегмента хода)
func (e *Entity) RestoreAP(events *EventBuffer) {
	if e.Stats == nil {
		return
	}
	e.ModifyAP(e.Stats.MaxAP-e.Stats.AP, events)
}

func (e *Entity) modify(field *int, max, delta int, events *EventBuffer) int {
	if e.Stats == nil || delta == 0 {
		return 0
	}
	before := *field
	*field = clamp(before+delta, 0, max)
	applied := *field - before
	if applied != 0 && events != nil {
		events.StatsChanged(e)
	}
	return applied
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
