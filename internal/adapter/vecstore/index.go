package vecstore

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"go.etcd.io/bbolt"

	"todoc/internal/domain"
)

var (
	bucketManifest = []byte("manifest")
	bucketRecords  = []byte("records")

	keyMetric    = []byte("metric")
	keyDimension = []byte("dimension")
	keySource    = []byte("source")
)

// Index is one immutable, disk-persisted vector index. Records are read
// fully into memory at open time and the file is released; search is
// brute force over the in-memory vectors.
type Index struct {
	Path      string
	Source    string
	Metric    domain.Metric
	Dimension int

	records []domain.VectorRecord
}

// Open deserializes a persisted index file. The metric is read from the
// stored manifest, never assumed.
func Open(path string) (*Index, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
	}

	db, err := bbolt.Open(path, 0400, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStoreCorrupt, path, err)
	}
	defer db.Close()

	idx := &Index{Path: path}

	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketManifest)
		if mb == nil {
			return fmt.Errorf("missing manifest bucket")
		}

		metric := domain.Metric(mb.Get(keyMetric))
		if metric != domain.MetricCosine && metric != domain.MetricL2 {
			return fmt.Errorf("unknown metric %q", metric)
		}
		idx.Metric = metric
		idx.Source = string(mb.Get(keySource))

		dim, err := strconv.Atoi(string(mb.Get(keyDimension)))
		if err != nil || dim <= 0 {
			return fmt.Errorf("invalid dimension %q", mb.Get(keyDimension))
		}
		idx.Dimension = dim

		rb := tx.Bucket(bucketRecords)
		if rb == nil {
			return fmt.Errorf("missing records bucket")
		}

		return rb.ForEach(func(k, v []byte) error {
			var rec domain.VectorRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("record %s: %v", k, err)
			}
			if len(rec.Embedding) != dim {
				return fmt.Errorf("record %s: embedding dimension %d, want %d", k, len(rec.Embedding), dim)
			}
			if rec.SourceID == "" {
				rec.SourceID = idx.Source
			}
			// A chunk without recoverable provenance cannot be cited.
			if rec.SourceID == "" || rec.ChunkID == "" {
				return fmt.Errorf("record %s: missing provenance", k)
			}
			idx.records = append(idx.records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreCorrupt, path, err)
	}

	return idx, nil
}

// Count returns the number of records in the index.
func (ix *Index) Count() int {
	return len(ix.records)
}

// Query returns up to k nearest records with scores already converted to
// the normalized relevance scale, so results from indexes with different
// metrics merge without bias.
func (ix *Index) Query(vec []float32, k int) []domain.RetrievalHit {
	if len(vec) != ix.Dimension || len(ix.records) == 0 || k <= 0 {
		return nil
	}

	hits := make([]domain.RetrievalHit, 0, len(ix.records))
	for _, rec := range ix.records {
		var native float64
		switch ix.Metric {
		case domain.MetricL2:
			native = l2Distance(vec, rec.Embedding)
		default:
			native = cosineSimilarity(vec, rec.Embedding)
		}
		hits = append(hits, domain.RetrievalHit{
			Score:  domain.NormalizeScore(ix.Metric, native),
			Record: rec,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// l2Distance calculates the Euclidean distance between two vectors.
func l2Distance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.MaxFloat64
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
