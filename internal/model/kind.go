package model

import "errors"

var ErrInvalidKind = errors.New("model: invalid reminder kind")

type Kind string

const (
	KindWater   Kind = "water"
	KindStandup Kind = "standup"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindWater, KindStandup:
		return true
	default:
		return false
	}
}

// Label is the human-facing prompt shown when a reminder fires.
func (k Kind) Label() string {
	switch k {
	case KindWater:
		return "Drink some water"
	case KindStandup:
		return "Stand up and move"
	default:
		return string(k)
	}
}

func Kinds() []Kind {
	return []Kind{KindWater, KindStandup}
}
