package domain

import "time"

// Metric identifies the distance metric a vector index was built with.
// Cosine scores are similarities (higher is better); L2 scores are raw
// distances and must be normalized before cross-index ranking.
type Metric string

const (
	MetricCosine Metric = "cosine"
	MetricL2     Metric = "l2"
)

// VectorRecord is one retrievable chunk of a reference document.
// Records are written once by offline ingestion and never mutated
// at serving time.
type VectorRecord struct {
	SourceID  string    `json:"source_id"`
	Page      string    `json:"page"`
	ChunkID   string    `json:"chunk_id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// RetrievalHit pairs a record with its normalized relevance score.
type RetrievalHit struct {
	Score  float64
	Record VectorRecord
}

// NormalizeScore converts a native index score to the shared relevance scale:
// cosine scores pass through, L2 distances become 1/(1+d).
func NormalizeScore(metric Metric, native float64) float64 {
	if metric == MetricL2 {
		return 1.0 / (1.0 + native)
	}
	return native
}

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ConversationTurn is one prior message in a chat session. The caller owns
// the history; this core only reads it.
type ConversationTurn struct {
	Speaker   Speaker
	Text      string
	CreatedAt time.Time
}
