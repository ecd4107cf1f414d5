package validate

import (
	"fmt"
	"regexp"
)

// PlayerID must be lowercase letters, digits, underscore or hyphen, 1-64 chars
var playerIdRx = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

const (
	maxActionLen  = 2000
	maxContentLen = 4000
)

func PlayerID(v string) error {
	if v == "" {
		return fmt.Errorf("playerId is required")
	}
	if !playerIdRx.MatchString(v) {
		return fmt.Errorf("playerId must match [a-z0-9_-] and be at most 64 characters")
	}
	return nil
}

func Action(v string) error {
	if v == "" {
		return fmt.Errorf("action is required")
	}
	if len(v) > maxActionLen {
		return fmt.Errorf("action exceeds %d characters", maxActionLen)
	}
	return nil
}

func Content(v string) error {
	if v == "" {
		return fmt.Errorf("content is required")
	}
	if len(v) > maxContentLen {
		return fmt.Errorf("content exceeds %d characters", maxContentLen)
	}
	return nil
}

func Importance(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("importance must be between 0.0 and 1.0")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}
