package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// ErrProvider marks upstream embedding/generation failures that callers
	// recover from locally (fallback ranking, empty effect list).
	ErrProvider = errors.New("provider error")

	// ErrDimensionMismatch indicates an embedding whose length does not match
	// the configured dimension. This is a misconfiguration, not a transient
	// condition, and is never folded into the fallback path.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
