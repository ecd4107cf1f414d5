package effects

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/model"
)

func newPipeline() *Pipeline { return NewPipeline(zerolog.Nop()) }

func TestExtract_CleanArray(t *testing.T) {
	raw := `[
		{"type":"item","action":"add","data":{"name":"Healing Potion","quantity":2}},
		{"type":"location","action":"update","data":{"name":"Dark Forest"}}
	]`
	out := newPipeline().Extract(raw)
	if len(out) != 2 {
		t.Fatalf("want 2 effects, got %d: %+v", len(out), out)
	}
	item, ok := out[0].(model.ItemEffect)
	if !ok {
		t.Fatalf("want ItemEffect, got %T", out[0])
	}
	if item.Name != "healing_potion" || item.Quantity != 2 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Properties == nil || len(item.Properties) != 0 {
		t.Fatalf("missing properties should default to empty object: %+v", item.Properties)
	}
	loc, ok := out[1].(model.LocationEffect)
	if !ok || loc.Name != "dark_forest" {
		t.Fatalf("unexpected location: %+v", out[1])
	}
}

func TestExtract_ProseWrappedWithGarbage(t *testing.T) {
	// Control characters and an unbalanced quote around a valid array.
	raw := "The hero presses on.\x00 Effects: \"\n" +
		`[{"type":"quest","action":"add","data":{"name":"Crystal Hunt","difficulty":"Hard"}}]`
	out := newPipeline().Extract(raw)
	if len(out) != 1 {
		t.Fatalf("want 1 effect, got %d: %+v", len(out), out)
	}
	q, ok := out[0].(model.QuestEffect)
	if !ok || q.Name != "crystal_hunt" || q.Difficulty != "hard" {
		t.Fatalf("unexpected quest: %+v", out[0])
	}
}

func TestExtract_DoubleEscapedQuotes(t *testing.T) {
	raw := `[{"type":"quest","action":"add","data":{"name":"Echoes","description":"He said \\"run\\""}}]`
	out := newPipeline().Extract(raw)
	if len(out) != 1 {
		t.Fatalf("want 1 effect, got %d: %+v", len(out), out)
	}
	if q := out[0].(model.QuestEffect); q.Description != `He said "run"` {
		t.Fatalf("unexpected description: %q", q.Description)
	}
}

func TestExtract_NoStructureReturnsEmpty(t *testing.T) {
	for _, raw := range []string{
		"",
		"The hero rests by the fire. Nothing happens.",
		"[1, 2, unclosed",
		"{broken: json}",
	} {
		if out := newPipeline().Extract(raw); len(out) != 0 {
			t.Fatalf("Extract(%q) should be empty, got %+v", raw, out)
		}
	}
}

func TestExtract_SingleObject(t *testing.T) {
	raw := `{"type":"status","action":"add","data":{"name":"Poisoned","duration":3}}`
	out := newPipeline().Extract(raw)
	if len(out) != 1 {
		t.Fatalf("want 1 effect, got %d", len(out))
	}
	s := out[0].(model.StatusEffect)
	if s.Name != "poisoned" || s.Duration != 3 {
		t.Fatalf("unexpected status: %+v", s)
	}
}

func TestExtract_ValidationIsPerRecord(t *testing.T) {
	raw := `[
		{"type":"item","action":"add","data":{"name":"Torch"}},
		{"type":"location","action":"update","data":{"name":"Old Mill"}}
	]`
	out := newPipeline().Extract(raw)
	if len(out) != 1 {
		t.Fatalf("item without quantity should be dropped alone: %+v", out)
	}
	if loc := out[0].(model.LocationEffect); loc.Name != "old_mill" {
		t.Fatalf("unexpected survivor: %+v", out[0])
	}
}

func TestExtract_DropsInvalidVariants(t *testing.T) {
	cases := map[string]string{
		"unknown type":        `[{"type":"weather","action":"update","data":{"name":"rain"}}]`,
		"disallowed action":   `[{"type":"location","action":"remove","data":{"name":"Town"}}]`,
		"missing data":        `[{"type":"item","action":"add"}]`,
		"bad difficulty":      `[{"type":"quest","action":"add","data":{"name":"Q","difficulty":"legendary"}}]`,
		"non-numeric value":   `[{"type":"attribute","action":"update","data":{"name":"strength","value":"high"}}]`,
		"non-object element":  `["just a string"]`,
		"non-object property": `[{"type":"item","action":"add","data":{"name":"Map","quantity":1,"properties":"old"}}]`,
	}
	for name, raw := range cases {
		if out := newPipeline().Extract(raw); len(out) != 0 {
			t.Fatalf("%s: want no effects, got %+v", name, out)
		}
	}
}

func TestExtract_ActionAndTypeAreCaseInsensitive(t *testing.T) {
	raw := `[{"type":"Item","action":"ADD","data":{"name":"Rope","quantity":1}}]`
	out := newPipeline().Extract(raw)
	if len(out) != 1 || out[0].EffectAction() != model.ActionAdd {
		t.Fatalf("case-folded type/action should validate: %+v", out)
	}
}

func TestNormalizeIdentifier_Idempotent(t *testing.T) {
	for _, in := range []string{"Dark Forest", "healing-potion", "St. Anne's Keep", "already_normal"} {
		once := normalizeIdentifier(in)
		if twice := normalizeIdentifier(once); twice != once {
			t.Fatalf("normalizeIdentifier not idempotent for %q: %q vs %q", in, once, twice)
		}
		for _, r := range once {
			if !(r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
				t.Fatalf("disallowed rune %q in %q", r, once)
			}
		}
	}
}

func TestFirstStructure_IgnoresBracketsInStrings(t *testing.T) {
	s := `noise [{"note":"a ] inside a string"}] trailing`
	sub, ok := firstStructure(s)
	if !ok || sub != `[{"note":"a ] inside a string"}]` {
		t.Fatalf("got %q ok=%v", sub, ok)
	}
}
