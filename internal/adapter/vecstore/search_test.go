package vecstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"todoc/internal/domain"
)

// fixedEmbedder returns the same vector for every text.
type fixedEmbedder struct {
	vec []float32
	err error
}

func (e *fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vec
	}
	return out, nil
}

func (e *fixedEmbedder) Dimension() int   { return len(e.vec) }
func (e *fixedEmbedder) ModelName() string { return "fixed" }

func openTestIndex(t *testing.T, metric domain.Metric, records []domain.VectorRecord) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.db")
	writeTestIndex(t, path, metric, records)
	idx, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestSearch_NoIndexes(t *testing.T) {
	r := NewRetriever(&fixedEmbedder{vec: []float32{1, 0, 0}}, nil)

	out, err := r.Search(context.Background(), "q", nil, 4, 0.25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty string for no indexes, got %q", out)
	}
}

func TestSearch_EmbedderFailure(t *testing.T) {
	idx := openTestIndex(t, domain.MetricCosine, testRecords())
	r := NewRetriever(&fixedEmbedder{err: errors.New("service down")}, nil)

	_, err := r.Search(context.Background(), "q", []*Index{idx}, 4, 0.25)
	if !errors.Is(err, ErrRetrievalUnavailable) {
		t.Errorf("expected ErrRetrievalUnavailable, got %v", err)
	}
}

func TestSearch_ThresholdProperty(t *testing.T) {
	idx := openTestIndex(t, domain.MetricCosine, testRecords())

	for _, threshold := range []float64{0.0, 0.25, 0.5, 0.9, 1.1} {
		r := NewRetriever(&fixedEmbedder{vec: []float32{0.7, 0.7, 0}}, nil)
		out, err := r.Search(context.Background(), "q", []*Index{idx}, 10, threshold)
		if err != nil {
			t.Fatal(err)
		}
		for _, line := range strings.Split(out, "\n") {
			if line == "" {
				continue
			}
			var rel float64
			if _, err := fmt.Sscanf(line[strings.Index(line, "(rel "):], "(rel %f)", &rel); err != nil {
				t.Fatalf("unparseable line %q: %v", line, err)
			}
			// Rendered scores are rounded to 2 decimals; allow that slack.
			if rel < threshold-0.005 {
				t.Errorf("threshold %f: surfaced hit below threshold: %q", threshold, line)
			}
		}
	}
}

func TestSearch_CrossMetricMerge(t *testing.T) {
	// Cosine index: c1 scores ~1.0 against the query.
	cosIdx := openTestIndex(t, domain.MetricCosine, []domain.VectorRecord{
		{Page: "1", ChunkID: "cos1", Text: "cosine best", Embedding: []float32{1, 0, 0}},
		{Page: "2", ChunkID: "cos2", Text: "cosine weak", Embedding: []float32{0, 1, 0}},
	})
	// L2 index: near hit at distance ~0.1 normalizes to ~0.91; far hit at
	// distance 5 normalizes to ~0.17 and must rank below a cosine 0.9.
	l2Idx := openTestIndex(t, domain.MetricL2, []domain.VectorRecord{
		{Page: "1", ChunkID: "l2near", Text: "l2 near", Embedding: []float32{0.9, 0, 0}},
		{Page: "2", ChunkID: "l2far", Text: "l2 far", Embedding: []float32{6, 0, 0}},
	})

	r := NewRetriever(&fixedEmbedder{vec: []float32{1, 0, 0}}, nil)
	out, err := r.Search(context.Background(), "q", []*Index{cosIdx, l2Idx}, 10, 0.0)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 merged hits, got %d:\n%s", len(lines), out)
	}

	// Merged order must follow the normalized scale across both metrics.
	order := make([]string, len(lines))
	for i, line := range lines {
		start := strings.Index(line, ":")
		end := strings.Index(line, "]")
		order[i] = line[start+1 : end]
	}
	// cos1 (1.0), l2near (1/1.1 ~ 0.91), l2far (1/6 ~ 0.17), cos2 (0.0).
	want := []string{"cos1", "l2near", "l2far", "cos2"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestSearch_ThresholdFiltersOverlappingHits(t *testing.T) {
	// Two indexes answer the same query at 0.81 and ~0.40; with threshold
	// 0.5 only the strong hit survives.
	strong := openTestIndex(t, domain.MetricCosine, []domain.VectorRecord{
		{Page: "3", ChunkID: "strong", Text: "iron rich foods", Embedding: []float32{0.81, 0.586, 0}},
	})
	weak := openTestIndex(t, domain.MetricCosine, []domain.VectorRecord{
		{Page: "7", ChunkID: "weak", Text: "iron rich foods", Embedding: []float32{0.40, 0.9165, 0}},
	})

	r := NewRetriever(&fixedEmbedder{vec: []float32{1, 0, 0}}, nil)
	out, err := r.Search(context.Background(), "iron", []*Index{strong, weak}, 4, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out, "strong") {
		t.Errorf("expected the 0.81 hit to survive:\n%s", out)
	}
	if strings.Contains(out, "weak") {
		t.Errorf("expected the 0.40 hit to be filtered:\n%s", out)
	}
	if len(strings.Split(out, "\n")) != 1 {
		t.Errorf("expected exactly one line, got:\n%s", out)
	}
}

func TestSearch_FormatsCitations(t *testing.T) {
	idx := openTestIndex(t, domain.MetricCosine, []domain.VectorRecord{
		{Page: "12", ChunkID: "c7", Text: "vitamin D\nsupplement guidance", Embedding: []float32{1, 0, 0}},
	})

	r := NewRetriever(&fixedEmbedder{vec: []float32{1, 0, 0}}, nil)
	out, err := r.Search(context.Background(), "vitamin d", []*Index{idx}, 4, 0.25)
	if err != nil {
		t.Fatal(err)
	}

	want := "- [testdoc.pdf p12:c7] (rel 1.00) vitamin D supplement guidance"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSearch_TruncatesToTopK(t *testing.T) {
	records := make([]domain.VectorRecord, 6)
	for i := range records {
		records[i] = domain.VectorRecord{
			Page:      "1",
			ChunkID:   fmt.Sprintf("c%d", i),
			Text:      "text",
			Embedding: []float32{1, float32(i) * 0.01, 0},
		}
	}
	idx := openTestIndex(t, domain.MetricCosine, records)

	r := NewRetriever(&fixedEmbedder{vec: []float32{1, 0, 0}}, nil)
	out, err := r.Search(context.Background(), "q", []*Index{idx}, 2, 0.0)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(strings.Split(out, "\n")); got != 2 {
		t.Errorf("expected 2 lines after truncation, got %d", got)
	}
}
