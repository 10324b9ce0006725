package storage

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/version"
)

// Load читает сессию: .json - как есть, иначе бинарный .hxrp
func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var session domain.ReplaySession
		if err := json.NewDecoder(f).Decode(&session); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return &session, nil
	}
	return readBinary(bufio.NewReader(f))
}

// List - файлы реплеев в SaveDir по имени
func (s *ReplayService) List() ([]string, error) {
	entries, err := os.ReadDir(s.SaveDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == Extension {
			out = append(out, filepath.Join(s.SaveDir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func readBinary(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Читаем заголовок целиком
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("invalid magic")
	}
	if !version.ReplayCompatible(header.Version) {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}

	seed, err := readString(r, int(header.SeedLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}
	mapID, err := readString(r, int(header.MapIDLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read map id: %w", err)
	}
	tracked, err := readString(r, int(header.TrackedLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read tracked id: %w", err)
	}

	session := &domain.ReplaySession{
		Seed:      seed,
		MapID:     mapID,
		TrackedID: domain.EntityID(tracked),
		Timestamp: header.Timestamp,
		Actions:   make([]domain.ReplayAction, 0, header.ActionCount),
	}

	// 2. Читаем актера
	if header.ActorLen > 0 {
		actor := make([]byte, header.ActorLen)
		if _, err := io.ReadFull(r, actor); err != nil {
			return nil, fmt.Errorf("failed to read actor: %w", err)
		}
		if err := json.Unmarshal(actor, &session.Actor); err != nil {
			return nil, fmt.Errorf("failed to decode actor: %w", err)
		}
	}

	// 3. Читаем Actions
	for i := 0; i < int(header.ActionCount); i++ {
		var ah ActionHeader
		if err := binary.Read(r, binary.LittleEndian, &ah); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}

		source, err := readString(r, int(ah.SourceLen))
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}

		act := domain.ReplayAction{
			Type:     domain.ActionType(ah.ActionType).String(),
			SourceID: domain.EntityID(source),
		}
		if ah.DetailsLen > 0 {
			act.Details = make([]byte, ah.DetailsLen)
			if _, err := io.ReadFull(r, act.Details); err != nil {
				return nil, fmt.Errorf("action %d: %w", i, err)
			}
		}

		session.Actions = append(session.Actions, act)
	}

	return session, nil
}

func readString(r io.Reader, n int) (string, error) {
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
