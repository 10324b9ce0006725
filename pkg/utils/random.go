package utils

import (
	"encoding/hex"
	"unicode/utf16"
)

// SeededRNG - детерминированный генератор псевдослучайных чисел.
//
// Строка-сид замешивается в 32-битное состояние (multiply / xor / rotate на
// каждый UTF-16 символ), каждый вызов Next делает еще два раунда
// xorshift-multiply. Один и тот же сид всегда дает одну и ту же бесконечную
// последовательность.
//
// Генератор используется только для расстановки врагов при загрузке карты и
// для генерации ID. Боевая логика его не трогает, иначе реплей разойдется.
type SeededRNG struct {
	state uint32
	draws uint64
}

// NewSeededRNG создает генератор из строки-сида.
func NewSeededRNG(seed string) *SeededRNG {
	units := utf16.Encode([]rune(seed))

	h := uint32(1779033703) ^ uint32(len(units))
	for _, u := range units {
		h = (h ^ uint32(u)) * 3432918353
		h = h<<13 | h>>19
	}

	return &SeededRNG{state: h}
}

// Next возвращает следующее беззнаковое 32-битное число.
func (r *SeededRNG) Next() uint32 {
	h := r.state
	h = (h ^ h>>16) * 2246822507
	h = (h ^ h>>13) * 3266489909
	h ^= h >> 16
	r.state = h
	r.draws++
	return h
}

// Intn возвращает число в [0, n). При n <= 0 возвращает 0, не тратя вызов.
func (r *SeededRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint32(n))
}

// Float64 возвращает число в [0, 1).
func (r *SeededRNG) Float64() float64 {
	return float64(r.Next()) / 4294967296.0
}

// Draws - сколько чисел уже выдано (для отладки рассинхрона реплеев).
func (r *SeededRNG) Draws() uint64 {
	return r.draws
}

// GenerateDeterministicID создает ID из генератора: prefix + 16 hex-символов.
// Одинаковый сид и одинаковый порядок вызовов дают одинаковые ID и в живой
// игре, и в реплее.
func GenerateDeterministicID(rng *SeededRNG, prefix string) string {
	b := make([]byte, 8)
	hi, lo := rng.Next(), rng.Next()
	b[0], b[1], b[2], b[3] = byte(hi>>24), byte(hi>>16), byte(hi>>8), byte(hi)
	b[4], b[5], b[6], b[7] = byte(lo>>24), byte(lo>>16), byte(lo>>8), byte(lo)
	return prefix + hex.EncodeToString(b)
}
