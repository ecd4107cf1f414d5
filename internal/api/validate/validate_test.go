package validate

import (
	"strings"
	"testing"
)

func TestPlayerID(t *testing.T) {
	valid := []string{"p1", "hero-7", "a_b", "0f8fad5b-d9cb-469f-a165-70867728950e"}
	for _, v := range valid {
		if err := PlayerID(v); err != nil {
			t.Errorf("PlayerID(%q) = %v, want nil", v, err)
		}
	}
	invalid := []string{"", "Hero", "p 1", "p!", strings.Repeat("a", 65)}
	for _, v := range invalid {
		if err := PlayerID(v); err == nil {
			t.Errorf("PlayerID(%q) = nil, want error", v)
		}
	}
}

func TestImportance(t *testing.T) {
	for _, v := range []float64{0, 0.5, 1} {
		if err := Importance(v); err != nil {
			t.Errorf("Importance(%v) = %v, want nil", v, err)
		}
	}
	for _, v := range []float64{-0.1, 1.5} {
		if err := Importance(v); err == nil {
			t.Errorf("Importance(%v) = nil, want error", v)
		}
	}
}

func TestActionAndContent(t *testing.T) {
	if err := Action(""); err == nil {
		t.Error("empty action should fail")
	}
	if err := Action(strings.Repeat("x", maxActionLen+1)); err == nil {
		t.Error("oversized action should fail")
	}
	if err := Content(""); err == nil {
		t.Error("empty content should fail")
	}
	if err := Content("Found a crystal"); err != nil {
		t.Errorf("Content: %v", err)
	}
}
