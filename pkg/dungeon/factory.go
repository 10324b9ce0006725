package dungeon

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"
	"hextactics-server/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Factory собирает сущности из блюпринтов бандла. ID берутся из общего
// SeededRNG симуляции, поэтому порядок вызовов Spawn важен для реплея.
type Factory struct {
	rules *domain.Rules
	rng   *utils.SeededRNG
	log   *logrus.Entry
}

func NewFactory(rules *domain.Rules, rng *utils.SeededRNG) *Factory {
	return &Factory{rules: rules, rng: rng, log: logger.Component("factory")}
}

// Spawn создает сущность по блюпринту с перекрытиями из записи карты.
// Неизвестный блюпринт - ConfigurationError, RNG при этом не тратится.
func (f *Factory) Spawn(blueprintID string, pos hexgrid.Hex, ov domain.SpawnOverrides) (*domain.Entity, error) {
	bp, err := f.rules.Blueprint(blueprintID)
	if err != nil {
		return nil, err
	}
	id := domain.EntityID(utils.GenerateDeterministicID(f.rng, bp.Kind.IDPrefix()))
	return f.build(bp, id, pos, ov), nil
}

func (f *Factory) build(bp domain.Blueprint, id domain.EntityID, pos hexgrid.Hex, ov domain.SpawnOverrides) *domain.Entity {
	e := &domain.Entity{
		ID:             id,
		Kind:           bp.Kind,
		Blueprint:      bp.ID,
		Name:           bp.Name,
		Pos:            pos,
		BlocksMovement: bp.BlocksMovement,
		Concealed:      bp.Concealed,
		ZIndex:         bp.ZIndex,
		AttackRange:    bp.AttackRange,
	}

	for _, name := range bp.Components {
		kind, ok := domain.ParseComponentKind(name)
		if !ok {
			f.log.WithFields(logrus.Fields{"blueprint": bp.ID, "component": name}).Error("Unknown component, skipped")
			continue
		}
		e.Attach(kind)
	}

	f.applyBlueprint(e, bp)
	f.applyOverrides(e, ov)
	f.fillResources(e)

	return e
}

func (f *Factory) applyBlueprint(e *domain.Entity, bp domain.Blueprint) {
	if e.Stats != nil && bp.Stats != nil {
		*e.Stats = *bp.Stats
	}
	if e.Movement != nil {
		e.Movement.Range = bp.MovementRange
	}
	if e.Skills != nil {
		e.Skills.Slots = f.slots(bp.ID, bp.Skills)
	}
	if e.Behavior != nil {
		e.Behavior.RuleSet = bp.RuleSet
		if e.Behavior.RuleSet == "" {
			e.Behavior.RuleSet = "aggressive"
		}
	}
	if e.Trap != nil {
		e.Trap.Effects = append([]domain.EffectDef(nil), bp.TrapEffects...)
		e.Trap.Reusable = bp.Reusable
	}
	if e.Interactable != nil {
		if bp.Interact != nil {
			e.Interactable.Effect = *bp.Interact
		}
		e.Interactable.Uses = bp.Uses
	}
	if e.Portal != nil {
		e.Portal.NextMapID = bp.NextMapID
	}
	if e.Detection != nil {
		e.Detection.Difficulty = bp.Difficulty
	}
	if e.Visibility != nil {
		e.Visibility.FullRange = bp.FullRange
		e.Visibility.PartialRange = bp.PartialRange
	}
}

func (f *Factory) applyOverrides(e *domain.Entity, ov domain.SpawnOverrides) {
	if ov.Name != nil {
		e.Name = *ov.Name
	}
	if ov.AttackRange != nil {
		e.AttackRange = *ov.AttackRange
	}
	if ov.BlocksMovement != nil {
		e.BlocksMovement = *ov.BlocksMovement
	}
	if ov.Concealed != nil {
		e.Concealed = *ov.Concealed
	}
	if ov.ZIndex != nil {
		e.ZIndex = *ov.ZIndex
	}

	if s := e.Stats; s != nil {
		if ov.HP != nil {
			s.MaxHP = *ov.HP
		}
		if ov.Attack != nil {
			s.Attack = *ov.Attack
		}
		if ov.Defense != nil {
			s.Defense = *ov.Defense
		}
		if ov.XP != nil {
			s.XP = *ov.XP
		}
		if ov.Level != nil {
			s.Level = *ov.Level
		}
	}
	if e.Skills != nil && len(ov.Skills) > 0 {
		e.Skills.Slots = f.slots(e.Blueprint, ov.Skills)
	}
	if e.Behavior != nil && ov.RuleSet != nil {
		e.Behavior.RuleSet = *ov.RuleSet
	}
	if e.Detection != nil && ov.Difficulty != nil {
		e.Detection.Difficulty = *ov.Difficulty
	}
	if e.Portal != nil && ov.NextMapID != nil {
		e.Portal.NextMapID = *ov.NextMapID
	}
	if e.Trap != nil {
		if ov.Reusable != nil {
			e.Trap.Reusable = *ov.Reusable
		}
		if ov.Amount != nil {
			for i := range e.Trap.Effects {
				if e.Trap.Effects[i].Type == domain.EffectDamage {
					e.Trap.Effects[i].Amount = *ov.Amount
				}
			}
		}
	}
	if e.Interactable != nil {
		if ov.Uses != nil {
			e.Interactable.Uses = *ov.Uses
		}
		if ov.Amount != nil {
			e.Interactable.Effect.Amount = *ov.Amount
		}
	}
}

// fillResources - новая сущность появляется с полными HP/MP/AP
func (f *Factory) fillResources(e *domain.Entity) {
	if e.Stats == nil {
		return
	}
	if e.Stats.Level < 1 {
		e.Stats.Level = 1
	}
	if e.Stats.CritMultiplier == 0 {
		e.Stats.CritMultiplier = 1
	}
	e.Stats.HP = e.Stats.MaxHP
	e.Stats.MP = e.Stats.MaxMP
	e.Stats.AP = e.Stats.MaxAP
}

// slots превращает список ID умений в слоты. Неизвестные умения логируются и пропускаются.
func (f *Factory) slots(owner string, ids []string) []domain.SkillSlot {
	out := make([]domain.SkillSlot, 0, len(ids))
	for _, id := range ids {
		def, err := f.rules.Skill(id)
		if err != nil {
			f.log.WithFields(logrus.Fields{"owner": owner, "error": err}).Error("Skill skipped")
			continue
		}
		out = append(out, domain.SkillSlot{
			ID:       def.ID,
			APCost:   def.APCost,
			MPCost:   def.MPCost,
			Cooldown: def.Cooldown,
		})
	}
	return out
}

// CreatePlayer собирает игрока: блюпринт player, поверх него архетип, поверх
// него сохраненное состояние актера. Пустой actor.ID - ID из RNG.
func (f *Factory) CreatePlayer(actor domain.ActorState) (*domain.Entity, error) {
	bp, err := f.rules.Blueprint("player")
	if err != nil {
		return nil, err
	}

	var ov domain.SpawnOverrides
	if actor.Name != "" {
		ov.Name = &actor.Name
	}

	var arch *domain.Archetype
	if actor.Archetype != "" {
		a, err := f.rules.Archetype(actor.Archetype)
		if err != nil {
			return nil, err
		}
		arch = &a
	}

	var p *domain.Entity
	if actor.ID != "" {
		// ID известен - генератор не трогаем
		p = f.build(bp, domain.EntityID(actor.ID), hexgrid.Hex{}, ov)
	} else {
		p, err = f.Spawn(bp.ID, hexgrid.Hex{}, ov)
		if err != nil {
			return nil, err
		}
	}

	if arch != nil {
		if p.Stats != nil {
			merged := arch.Stats
			if merged.Level < 1 {
				merged.Level = 1
			}
			if merged.CritMultiplier == 0 {
				merged.CritMultiplier = p.Stats.CritMultiplier
			}
			*p.Stats = merged
		}
		if p.Skills != nil && len(arch.Skills) > 0 {
			p.Skills.Slots = f.slots(arch.ID, arch.Skills)
		}
		if p.Movement != nil && arch.MovementRange > 0 {
			p.Movement.Range = arch.MovementRange
		}
		if arch.AttackRange > 0 {
			p.AttackRange = arch.AttackRange
		}
		f.fillResources(p)
	}

	// Сохраненное состояние актера перекрывает все
	if actor.Stats != nil && p.Stats != nil {
		*p.Stats = *actor.Stats
		p.Stats.Clamp()
	}
	if actor.Skills != nil && p.Skills != nil {
		p.Skills.Slots = f.slots(bp.ID, actor.Skills)
	}

	f.log.WithFields(logrus.Fields{"id": p.ID, "archetype": actor.Archetype}).Debug("Player created")
	return p, nil
}
