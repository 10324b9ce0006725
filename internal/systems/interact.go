package systems

import "hextactics-server/internal/domain"

// ApplyInteractable - эффект костра/алтаря на actor.
// Исчерпанный (uses) объект убирается с карты.
func ApplyInteractable(w *domain.GameWorld, obj, actor *domain.Entity, events *domain.EventBuffer) *domain.Rejection {
	ic := obj.Interactable
	if ic == nil {
		return domain.Reject("С %s нельзя взаимодействовать.", obj.Name)
	}
	if ic.Uses > 0 && ic.Used >= ic.Uses {
		return domain.Reject("%s больше не действует.", obj.Name)
	}
	if actor.Stats == nil {
		return domain.Reject("%s не может этим воспользоваться.", actor.Name)
	}

	switch ic.Effect.Type {
	case "heal":
		actor.ModifyHP(ic.Effect.Amount, events)
	case "restore_mp":
		actor.ModifyMP(ic.Effect.Amount, events)
	case "restore_ap":
		actor.ModifyAP(ic.Effect.Amount, events)
	default:
		return domain.Reject("%s: неизвестный эффект %q.", obj.Name, ic.Effect.Type)
	}

	ic.Used++
	events.Log(domain.LogEvent, actor.ID, "%s использует %s.", actor.Name, obj.Name)

	if ic.Uses > 0 && ic.Used >= ic.Uses {
		RemoveEntity(w, obj, events)
	}
	return nil
}
