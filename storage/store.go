package storage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"videoTranscribe/config"
	"videoTranscribe/core"
)

// VectorStore indexes transcript segments for semantic search,
// abstracting the backend. Upsert replaces a video's segments and
// returns how many were indexed.
type VectorStore interface {
	Upsert(videoID, language string, segments []core.Segment) int
	Search(videoID, query string, topK int) []core.Hit
}

// NewVectorStore selects the backend from configuration. Backend
// initialization failures fall back to the in-memory store with a
// warning; search degrades, the service stays up.
func NewVectorStore(cfg *config.Config) VectorStore {
	switch cfg.VectorStore {
	case "pgvector":
		if !cfg.HasValidAPI() {
			fmt.Println("Warning: API configuration required for PgVector store, falling back to memory store")
			return newMemoryVectorStore()
		}
		s, err := newPgVectorStore(cfg)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize PgVector store (%v), falling back to memory store\n", err)
			return newMemoryVectorStore()
		}
		return s
	case "milvus":
		if !cfg.HasValidAPI() {
			fmt.Println("Warning: API configuration required for Milvus store, falling back to memory store")
			return newMemoryVectorStore()
		}
		s, err := newMilvusVectorStore(cfg)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize Milvus store (%v), falling back to memory store\n", err)
			return newMemoryVectorStore()
		}
		return s
	default:
		return newMemoryVectorStore()
	}
}

func newEmbeddingClient(cfg *config.Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

func embed(cli *openai.Client, model, text string) ([]float32, error) {
	resp, err := cli.CreateEmbeddings(context.Background(), openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding API failed: %v", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return resp.Data[0].Embedding, nil
}

// ---------------- Memory implementation (fallback) ----------------

// MemoryVectorStore scores segments by term-frequency cosine. No API
// dependency, useful for development and as the degraded mode.
type MemoryVectorStore struct {
	mu   sync.RWMutex
	docs map[string][]memoryDoc // videoID -> docs
}

type memoryDoc struct {
	Start, End float64
	Text       string
	Embed      map[string]float64 // term -> weight
}

func newMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{docs: map[string][]memoryDoc{}}
}

func (s *MemoryVectorStore) Upsert(videoID, language string, segments []core.Segment) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]memoryDoc, 0, len(segments))
	for _, seg := range segments {
		docs = append(docs, memoryDoc{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
			Embed: embedText(strings.ToLower(seg.Text)),
		})
	}
	s.docs[videoID] = docs
	return len(docs)
}

func (s *MemoryVectorStore) Search(videoID, query string, topK int) []core.Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.docs[videoID]
	qv := embedText(strings.ToLower(query))
	type scored struct {
		i     int
		score float64
	}
	scores := make([]scored, 0, len(docs))
	for i, d := range docs {
		scores = append(scores, scored{i, cosine(qv, d.Embed)})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK <= 0 || topK > len(scores) {
		topK = min(len(scores), 5)
	}
	hits := make([]core.Hit, 0, topK)
	for _, sc := range scores[:topK] {
		d := docs[sc.i]
		hits = append(hits, core.Hit{Score: sc.score, Start: d.Start, End: d.End, Text: d.Text})
	}
	return hits
}

func embedText(text string) map[string]float64 {
	vec := map[string]float64{}
	for _, tok := range strings.Fields(text) {
		vec[tok]++
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	var dot, na, nb float64
	for k, va := range a {
		na += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
