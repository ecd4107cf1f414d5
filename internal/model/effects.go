package model

// EffectKind tags the variants of the Effect sum type.
type EffectKind string

const (
	EffectItem      EffectKind = "item"
	EffectLocation  EffectKind = "location"
	EffectQuest     EffectKind = "quest"
	EffectStatus    EffectKind = "status"
	EffectAttribute EffectKind = "attribute"
)

// Effect actions, grouped by the variant they apply to.
const (
	ActionAdd      = "add"
	ActionRemove   = "remove"
	ActionUse      = "use"
	ActionUpdate   = "update"
	ActionComplete = "complete"
)

// Effect is a validated, typed description of a game-state change derived
// from narrative text. An Effect instance is either fully valid per its
// variant's schema or was never constructed; the extraction pipeline drops
// invalid candidates instead of producing partial values.
//
// Effects are transient: built per generation cycle, consumed by state
// mutation and write-back, then discarded.
type Effect interface {
	Kind() EffectKind
	EffectAction() string
}

// ItemEffect adds, removes or uses an inventory item.
type ItemEffect struct {
	Action     string                 `json:"action"`
	Name       string                 `json:"name"`
	Quantity   int                    `json:"quantity"`
	Properties map[string]interface{} `json:"properties"`
}

func (e ItemEffect) Kind() EffectKind     { return EffectItem }
func (e ItemEffect) EffectAction() string { return e.Action }

// LocationEffect moves the player. Its only action is "update".
type LocationEffect struct {
	Action string `json:"action"`
	Name   string `json:"name"`
}

func (e LocationEffect) Kind() EffectKind     { return EffectLocation }
func (e LocationEffect) EffectAction() string { return e.Action }

// QuestEffect starts, advances or completes a quest.
type QuestEffect struct {
	Action      string `json:"action"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

func (e QuestEffect) Kind() EffectKind     { return EffectQuest }
func (e QuestEffect) EffectAction() string { return e.Action }

// StatusEffect applies or clears a condition such as "poisoned".
// Duration is in game turns; zero means indefinite.
type StatusEffect struct {
	Action   string  `json:"action"`
	Name     string  `json:"name"`
	Duration float64 `json:"duration,omitempty"`
}

func (e StatusEffect) Kind() EffectKind     { return EffectStatus }
func (e StatusEffect) EffectAction() string { return e.Action }

// AttributeEffect changes a numeric player attribute. Its only action is
// "update"; Value is the new value, not a delta.
type AttributeEffect struct {
	Action string  `json:"action"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
}

func (e AttributeEffect) Kind() EffectKind     { return EffectAttribute }
func (e AttributeEffect) EffectAction() string { return e.Action }

// AllowedActions maps each effect kind to its permitted action set.
func AllowedActions(k EffectKind) []string {
	switch k {
	case EffectItem:
		return []string{ActionAdd, ActionRemove, ActionUse}
	case EffectQuest:
		return []string{ActionAdd, ActionUpdate, ActionComplete}
	case EffectLocation:
		return []string{ActionUpdate}
	case EffectStatus:
		return []string{ActionAdd, ActionRemove, ActionUpdate}
	case EffectAttribute:
		return []string{ActionUpdate}
	default:
		return nil
	}
}
