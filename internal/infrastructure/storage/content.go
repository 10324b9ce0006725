package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"hextactics-server/internal/domain"
)

// contentFile - один YAML-документ бандла. Файлы каталога сливаются
// в порядке имен, повтор ID между файлами - ошибка.
type contentFile struct {
	Costs       *domain.Costs        `yaml:"costs,omitempty"`
	Progression *domain.Progression  `yaml:"progression,omitempty"`
	StartMap    string               `yaml:"startMap,omitempty"`
	Blueprints  []domain.Blueprint   `yaml:"blueprints,omitempty"`
	Archetypes  []domain.Archetype   `yaml:"archetypes,omitempty"`
	Skills      []domain.SkillDef    `yaml:"skills,omitempty"`
	Statuses    []domain.StatusDef   `yaml:"statuses,omitempty"`
	RuleSets    []domain.RuleSet     `yaml:"ruleSets,omitempty"`
	Maps        []domain.MapTemplate `yaml:"maps,omitempty"`
}

// LoadRules читает все *.yaml / *.yml из dir и собирает проверенный бандл
func LoadRules(dir string) (*domain.Rules, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no content files in %s", dir)
	}
	sort.Strings(files)

	rules := &domain.Rules{
		Blueprints: make(map[string]domain.Blueprint),
		Archetypes: make(map[string]domain.Archetype),
		Skills:     make(map[string]domain.SkillDef),
		Statuses:   make(map[string]domain.StatusDef),
		RuleSets:   make(map[string]domain.RuleSet),
		Maps:       make(map[string]domain.MapTemplate),
	}
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if err := mergeContent(rules, name, data); err != nil {
			return nil, err
		}
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content in %s: %w", dir, err)
	}
	return rules, nil
}

func mergeContent(rules *domain.Rules, name string, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	// В одном файле может быть несколько документов через ---
	for {
		var doc contentFile
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}

		if doc.Costs != nil {
			rules.Costs = *doc.Costs
		}
		if doc.Progression != nil {
			rules.Progression = *doc.Progression
		}
		if doc.StartMap != "" {
			rules.StartMap = doc.StartMap
		}
		for _, bp := range doc.Blueprints {
			if err := put(rules.Blueprints, name, "blueprint", bp.ID, bp); err != nil {
				return err
			}
		}
		for _, a := range doc.Archetypes {
			if err := put(rules.Archetypes, name, "archetype", a.ID, a); err != nil {
				return err
			}
		}
		for _, s := range doc.Skills {
			if err := put(rules.Skills, name, "skill", s.ID, s); err != nil {
				return err
			}
		}
		for _, s := range doc.Statuses {
			if err := put(rules.Statuses, name, "status", s.ID, s); err != nil {
				return err
			}
		}
		for _, rs := range doc.RuleSets {
			if err := put(rules.RuleSets, name, "ruleSet", rs.ID, rs); err != nil {
				return err
			}
		}
		for _, m := range doc.Maps {
			if err := put(rules.Maps, name, "map", m.ID, m); err != nil {
				return err
			}
		}
	}
}

func put[T any](into map[string]T, file, kind, id string, v T) error {
	if id == "" {
		return fmt.Errorf("%s: %s without id", file, kind)
	}
	if _, dup := into[id]; dup {
		return fmt.Errorf("%s: duplicate %s %q", file, kind, id)
	}
	into[id] = v
	return nil
}

// DumpRules выгружает бандл в dir: общий rules.yaml и по файлу на таблицу
func DumpRules(dir string, rules *domain.Rules) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	costs, progression := rules.Costs, rules.Progression
	docs := map[string]contentFile{
		"rules.yaml":      {Costs: &costs, Progression: &progression, StartMap: rules.StartMap},
		"blueprints.yaml": {Blueprints: sortedValues(rules.Blueprints)},
		"archetypes.yaml": {Archetypes: sortedValues(rules.Archetypes)},
		"skills.yaml":     {Skills: sortedValues(rules.Skills)},
		"statuses.yaml":   {Statuses: sortedValues(rules.Statuses)},
		"rulesets.yaml":   {RuleSets: sortedValues(rules.RuleSets)},
		"maps.yaml":       {Maps: sortedValues(rules.Maps)},
	}
	for name, doc := range docs {
		data, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return err
		}
	}
	return nil
}

func sortedValues[T any](m map[string]T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
