package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	openai "github.com/sashabaranov/go-openai"

	"videoTranscribe/config"
	"videoTranscribe/core"
)

// MilvusVectorStore indexes transcript segments in a Milvus collection
// with an HNSW cosine index.
type MilvusVectorStore struct {
	mc             client.Client
	coll           string
	dim            int
	oa             *openai.Client
	embeddingModel string
}

func newMilvusVectorStore(cfg *config.Config) (*MilvusVectorStore, error) {
	addr := os.Getenv("MILVUS_ADDR")
	if addr == "" {
		addr = "localhost:19530"
	}
	coll := os.Getenv("MILVUS_COLLECTION")
	if coll == "" {
		coll = "transcript_segments"
	}

	mc, err := client.NewClient(context.Background(), client.Config{
		Address:  addr,
		Username: os.Getenv("MILVUS_USERNAME"),
		Password: os.Getenv("MILVUS_PASSWORD"),
		APIKey:   os.Getenv("MILVUS_API_KEY"),
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}

	s := &MilvusVectorStore{
		mc:             mc,
		coll:           coll,
		dim:            1536,
		oa:             newEmbeddingClient(cfg),
		embeddingModel: cfg.EmbeddingModel,
	}
	if err := s.ensureSchemaAndIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MilvusVectorStore) ensureSchemaAndIndex() error {
	ctx := context.Background()
	has, err := s.mc.HasCollection(ctx, s.coll)
	if err != nil {
		return err
	}
	if !has {
		schema := entity.NewSchema().WithName(s.coll)
		schema.WithField(entity.NewField().WithName("id").WithIsAutoID(true).WithIsPrimaryKey(true).WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("video_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(128))
		schema.WithField(entity.NewField().WithName("language").WithDataType(entity.FieldTypeVarChar).WithMaxLength(16))
		schema.WithField(entity.NewField().WithName("start").WithDataType(entity.FieldTypeDouble))
		schema.WithField(entity.NewField().WithName("end").WithDataType(entity.FieldTypeDouble))
		schema.WithField(entity.NewField().WithName("text").WithDataType(entity.FieldTypeVarChar).WithMaxLength(4096))
		schema.WithField(entity.NewField().WithName("vector").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

		if err := s.mc.CreateCollection(ctx, schema, int32(2)); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
	}
	idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return fmt.Errorf("new hnsw index: %w", err)
	}
	if err := s.mc.CreateIndex(ctx, s.coll, "vector", idx, false, client.WithIndexName("idx_vector")); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := s.mc.LoadCollection(ctx, s.coll, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

func (s *MilvusVectorStore) Upsert(videoID, language string, segments []core.Segment) int {
	if len(segments) == 0 {
		return 0
	}
	ctx := context.Background()

	// Replace any previous index entries for this video.
	filter := fmt.Sprintf("video_id == %s", strconv.Quote(videoID))
	_ = s.mc.Delete(ctx, s.coll, "", filter)

	videoIDs := make([]string, 0, len(segments))
	languages := make([]string, 0, len(segments))
	starts := make([]float64, 0, len(segments))
	ends := make([]float64, 0, len(segments))
	texts := make([]string, 0, len(segments))
	vectors := make([][]float32, 0, len(segments))

	for _, seg := range segments {
		v, err := embed(s.oa, s.embeddingModel, strings.ToLower(seg.Text))
		if err != nil {
			continue
		}
		videoIDs = append(videoIDs, videoID)
		languages = append(languages, language)
		starts = append(starts, seg.Start)
		ends = append(ends, seg.End)
		texts = append(texts, seg.Text)
		vectors = append(vectors, v)
	}
	if len(vectors) == 0 {
		return 0
	}

	_, err := s.mc.Insert(ctx, s.coll, "",
		entity.NewColumnVarChar("video_id", videoIDs),
		entity.NewColumnVarChar("language", languages),
		entity.NewColumnDouble("start", starts),
		entity.NewColumnDouble("end", ends),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("vector", s.dim, vectors),
	)
	if err != nil {
		return 0
	}
	return len(vectors)
}

func (s *MilvusVectorStore) Search(videoID, query string, topK int) []core.Hit {
	v, err := embed(s.oa, s.embeddingModel, strings.ToLower(query))
	if err != nil {
		return nil
	}
	if topK <= 0 {
		topK = 5
	}
	ctx := context.Background()
	sp, _ := entity.NewIndexHNSWSearchParam(74)
	filter := fmt.Sprintf("video_id == %s", strconv.Quote(videoID))
	res, err := s.mc.Search(ctx, s.coll, []string{}, filter,
		[]string{"start", "end", "text"},
		[]entity.Vector{entity.FloatVector(v)}, "vector", entity.COSINE, topK, sp)
	if err != nil {
		return nil
	}

	var hits []core.Hit
	for _, r := range res {
		cols := map[string]entity.Column{}
		for _, c := range r.Fields {
			cols[c.Name()] = c
		}
		for i := 0; i < r.ResultCount; i++ {
			var start, end float64
			var text string
			if c, ok := cols["start"].(*entity.ColumnDouble); ok {
				if data := c.Data(); i < len(data) {
					start = data[i]
				}
			}
			if c, ok := cols["end"].(*entity.ColumnDouble); ok {
				if data := c.Data(); i < len(data) {
					end = data[i]
				}
			}
			if c, ok := cols["text"].(*entity.ColumnVarChar); ok {
				if data := c.Data(); i < len(data) {
					text = data[i]
				}
			}
			hits = append(hits, core.Hit{Score: float64(r.Scores[i]), Start: start, End: end, Text: text})
		}
	}
	return hits
}
