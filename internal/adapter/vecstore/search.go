package vecstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"todoc/internal/domain"
	"todoc/internal/port"
)

// Retriever searches groups of loaded indexes. It binds the configured
// embedding service to queries; the indexes themselves persist only
// vectors.
type Retriever struct {
	embedder port.Embedder
	logger   *zap.Logger
}

// NewRetriever creates a retriever over the given embedding service.
func NewRetriever(embedder port.Embedder, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, logger: logger}
}

// Search embeds the query once, queries every index for up to topK
// neighbors, drops hits below the threshold on the normalized relevance
// scale, merges the rest into one descending list (stable, so ties keep
// input order), truncates to topK overall, and renders citation lines.
//
// An empty string is the normal no-grounding outcome: nothing cleared the
// threshold or no indexes were supplied. Embedding failures surface as
// ErrRetrievalUnavailable.
func (r *Retriever) Search(ctx context.Context, query string, indexes []*Index, topK int, threshold float64) (string, error) {
	if len(indexes) == 0 || topK <= 0 {
		return "", nil
	}
	if r.embedder == nil {
		return "", fmt.Errorf("%w: embeddings not configured", ErrRetrievalUnavailable)
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("%w: embed query: %v", ErrRetrievalUnavailable, err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return "", fmt.Errorf("%w: embedding returned empty result", ErrRetrievalUnavailable)
	}
	vec := normalize(vecs[0])

	var hits []domain.RetrievalHit
	for _, idx := range indexes {
		if len(vec) != idx.Dimension {
			r.logger.Warn("query dimension does not match index",
				zap.String("index", idx.Path),
				zap.Int("query_dim", len(vec)),
				zap.Int("index_dim", idx.Dimension))
			continue
		}
		for _, hit := range idx.Query(vec, topK) {
			if hit.Score < threshold {
				continue
			}
			hits = append(hits, hit)
		}
	}

	if len(hits) == 0 {
		return "", nil
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if topK < len(hits) {
		hits = hits[:topK]
	}

	lines := make([]string, 0, len(hits))
	for _, hit := range hits {
		lines = append(lines, formatHit(hit))
	}
	return strings.Join(lines, "\n"), nil
}

// formatHit renders one citation line. Every surfaced hit carries source,
// page, and chunk id so the model can cite it.
func formatHit(hit domain.RetrievalHit) string {
	page := hit.Record.Page
	if page == "" {
		page = "?"
	}
	return fmt.Sprintf("- [%s p%s:%s] (rel %.2f) %s",
		hit.Record.SourceID, page, hit.Record.ChunkID, hit.Score, sanitizeSnippet(hit.Record.Text))
}

// normalize scales a vector to unit length so inner-product indexes score
// true cosine similarity.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
