package effects

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/rkwai/rag-system/internal/model"
)

var questDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
	"epic":   true,
}

// buildEffect converts one loosely-typed candidate record into a strict
// effect variant. Validation is per-record: any hard failure drops only
// this candidate.
func buildEffect(rec map[string]interface{}) (model.Effect, error) {
	kindRaw, ok := stringField(rec, "type")
	if !ok {
		return nil, errors.New("effect is missing a type")
	}
	actionRaw, ok := stringField(rec, "action")
	if !ok {
		return nil, errors.New("effect is missing an action")
	}
	data, ok := rec["data"].(map[string]interface{})
	if !ok {
		return nil, errors.New("effect is missing a data payload")
	}

	kind := model.EffectKind(strings.ToLower(strings.TrimSpace(kindRaw)))
	allowed := model.AllowedActions(kind)
	if allowed == nil {
		return nil, errors.Errorf("unknown effect type %q", kindRaw)
	}
	action := strings.ToLower(strings.TrimSpace(actionRaw))
	if !contains(allowed, action) {
		return nil, errors.Errorf("action %q not allowed for %s effects", actionRaw, kind)
	}

	switch kind {
	case model.EffectItem:
		return buildItem(action, data)
	case model.EffectLocation:
		return buildLocation(action, data)
	case model.EffectQuest:
		return buildQuest(action, data)
	case model.EffectStatus:
		return buildStatus(action, data)
	case model.EffectAttribute:
		return buildAttribute(action, data)
	default:
		return nil, errors.Errorf("unknown effect type %q", kindRaw)
	}
}

func buildItem(action string, data map[string]interface{}) (model.Effect, error) {
	name, ok := stringField(data, "name")
	if !ok || name == "" {
		return nil, errors.New("item effect requires a name")
	}
	qty, ok := numberField(data, "quantity")
	if !ok {
		return nil, errors.New("item effect requires a numeric quantity")
	}
	props, ok := data["properties"].(map[string]interface{})
	if raw, present := data["properties"]; present && raw != nil && !ok {
		return nil, errors.New("item properties must be an object")
	}
	if props == nil {
		props = map[string]interface{}{}
	}
	return model.ItemEffect{Action: action, Name: name, Quantity: int(qty), Properties: props}, nil
}

func buildLocation(action string, data map[string]interface{}) (model.Effect, error) {
	name, ok := stringField(data, "name")
	if !ok || name == "" {
		return nil, errors.New("location effect requires a name")
	}
	return model.LocationEffect{Action: action, Name: name}, nil
}

func buildQuest(action string, data map[string]interface{}) (model.Effect, error) {
	name, ok := stringField(data, "name")
	if !ok || name == "" {
		return nil, errors.New("quest effect requires a name")
	}
	eff := model.QuestEffect{Action: action, Name: name}
	if raw, present := data["description"]; present && raw != nil {
		desc, ok := raw.(string)
		if !ok {
			return nil, errors.New("quest description must be a string")
		}
		eff.Description = desc
	}
	if raw, present := data["difficulty"]; present && raw != nil {
		diff, ok := raw.(string)
		if !ok {
			return nil, errors.New("quest difficulty must be a string")
		}
		diff = strings.ToLower(strings.TrimSpace(diff))
		if !questDifficulties[diff] {
			return nil, errors.Errorf("unknown quest difficulty %q", raw)
		}
		eff.Difficulty = diff
	}
	return eff, nil
}

func buildStatus(action string, data map[string]interface{}) (model.Effect, error) {
	name, ok := stringField(data, "name")
	if !ok || name == "" {
		return nil, errors.New("status effect requires a name")
	}
	eff := model.StatusEffect{Action: action, Name: name}
	if raw, present := data["duration"]; present && raw != nil {
		dur, ok := raw.(float64)
		if !ok {
			return nil, errors.New("status duration must be numeric")
		}
		eff.Duration = dur
	}
	return eff, nil
}

func buildAttribute(action string, data map[string]interface{}) (model.Effect, error) {
	name, ok := stringField(data, "name")
	if !ok || name == "" {
		return nil, errors.New("attribute effect requires a name")
	}
	value, ok := numberField(data, "value")
	if !ok {
		return nil, errors.New("attribute effect requires a numeric value")
	}
	return model.AttributeEffect{Action: action, Name: name, Value: value}, nil
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func numberField(m map[string]interface{}, key string) (float64, bool) {
	f, ok := m[key].(float64)
	return f, ok
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
