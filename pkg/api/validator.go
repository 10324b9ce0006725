package api

import "errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p CoordsPayload) Validate() error {
	if p.TargetCoords == nil {
		return errors.New("targetCoords is required")
	}
	return nil
}

func (p EntityPayload) Validate() error {
	if p.TargetID == "" {
		return errors.New("targetId is required")
	}
	return nil
}

func (p SkillPayload) Validate() error {
	if p.SkillID == "" {
		return errors.New("skillId is required")
	}
	if p.TargetCoords != nil && p.TargetID != "" {
		return errors.New("targetCoords and targetId are mutually exclusive")
	}
	return nil
}
