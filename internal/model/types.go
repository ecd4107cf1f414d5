package model

import "time"

// MemoryRecord is a durable record of a past game event for one player.
// Records are append-only: once written they are never updated, and this
// service never deletes them.
type MemoryRecord struct {
	ID         string                 `json:"id"`
	PlayerID   string                 `json:"playerId"`
	MemoryType string                 `json:"type"`
	Content    string                 `json:"content"`
	Location   string                 `json:"location"`
	Importance float64                `json:"importance"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Embedding  []float32              `json:"-"`
}

// IndexMatch is a single nearest-neighbour hit from the similarity index.
// Payload carries whatever metadata was stored alongside the vector.
type IndexMatch struct {
	ID      string                 `json:"id"`
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}
