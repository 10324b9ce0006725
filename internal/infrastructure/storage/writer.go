package storage

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/version"
)

const (
	MagicHeader string = `HXRP` // 4 байта
	Version1    uint32 = version.ReplayFormat
	Extension          = ".hxrp"
)

// ReplayFileHeader - это точное представление заголовка файла в памяти.
// binary.Write умеет писать это целиком, так как тут нет слайсов и строк, только массивы и числа.
// Строки (сид, карта, отслеживаемый ID) и JSON актера идут сразу за заголовком.
type ReplayFileHeader struct {
	Magic       [4]byte // 4 байта
	Version     uint32  // 4 байта
	Timestamp   int64   // 8 байт
	SeedLen     uint16  // 2
	MapIDLen    uint16  // 2
	TrackedLen  uint16  // 2
	ActorLen    uint32  // 4
	ActionCount uint32  // 4
}

// ActionHeader - заголовок каждой записи действия.
type ActionHeader struct {
	ActionType uint8  // 1
	SourceLen  uint8  // 1
	DetailsLen uint16 // 2
}

type ReplayService struct {
	SaveDir string
}

func NewReplayService(dir string) (*ReplayService, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create replay dir: %w", err)
	}
	return &ReplayService{SaveDir: dir}, nil
}

// Save пишет сессию в SaveDir и возвращает путь к файлу
func (s *ReplayService) Save(session *domain.ReplaySession) (string, error) {
	filename := fmt.Sprintf("replay_%s_%s_%d%s", sanitize(session.MapID), sanitize(string(session.TrackedID)), session.Timestamp, Extension)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeBinary(w, session); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return path, nil
}

func writeBinary(w io.Writer, s *domain.ReplaySession) error {
	actor, err := json.Marshal(s.Actor)
	if err != nil {
		return fmt.Errorf("failed to encode actor: %w", err)
	}
	for name, v := range map[string]string{"seed": s.Seed, "map id": s.MapID, "tracked id": string(s.TrackedID)} {
		if len(v) > 65535 {
			return fmt.Errorf("%s too long: %d", name, len(v))
		}
	}

	// 1. Подготавливаем и пишем ГЛОБАЛЬНЫЙ ЗАГОЛОВОК
	header := ReplayFileHeader{
		Version:     Version1,
		Timestamp:   s.Timestamp,
		SeedLen:     uint16(len(s.Seed)),
		MapIDLen:    uint16(len(s.MapID)),
		TrackedLen:  uint16(len(s.TrackedID)),
		ActorLen:    uint32(len(actor)),
		ActionCount: uint32(len(s.Actions)),
	}
	copy(header.Magic[:], MagicHeader) // Копируем строку в массив [4]byte

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, chunk := range [][]byte{[]byte(s.Seed), []byte(s.MapID), []byte(s.TrackedID), actor} {
		if _, err := w.Write(chunk); err != nil {
			return err
		}
	}

	// 2. Пишем действия
	for i, act := range s.Actions {
		actionType := domain.ParseAction(act.Type)
		if actionType == domain.ActionUnknown {
			return fmt.Errorf("action %d: unknown type %q", i, act.Type)
		}

		sourceBytes := []byte(act.SourceID)
		if len(sourceBytes) > 255 {
			return fmt.Errorf("source id too long: %d", len(sourceBytes))
		}

		detailsLen := len(act.Details)
		if detailsLen > 65535 {
			return fmt.Errorf("details too long: %d", detailsLen)
		}

		// Подготавливаем заголовок действия
		actHeader := ActionHeader{
			ActionType: uint8(actionType),
			SourceLen:  uint8(len(sourceBytes)),
			DetailsLen: uint16(detailsLen),
		}

		// Пишем заголовок действия одной командой
		if err := binary.Write(w, binary.LittleEndian, &actHeader); err != nil {
			return err
		}

		// Пишем динамические данные (тело)
		if _, err := w.Write(sourceBytes); err != nil {
			return err
		}
		if detailsLen > 0 {
			if _, err := w.Write(act.Details); err != nil {
				return err
			}
		}
	}

	return nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '-'
	}, s)
}
