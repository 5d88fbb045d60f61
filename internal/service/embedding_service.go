package service

import (
	"context"
	"math"
	"sort"

	"lughati_backend/internal/config"
	"lughati_backend/internal/repository"
	"lughati_backend/pkg/logger"
	"lughati_backend/pkg/monitoring"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// EmbeddingDimensions is the fixed output length of both the real
// embedding service and the deterministic fallback.
const EmbeddingDimensions = 768

// EmbeddingService produces vectors for semantic lesson search. When
// the embedding service is unreachable or returns an unexpected
// shape, a deterministic pseudo-embedding keeps downstream vector
// math type-compatible: availability over accuracy.
type EmbeddingService struct {
	client *openai.Client
	model  string
}

func NewEmbeddingService(cfg config.EmbeddingConfig) *EmbeddingService {
	s := &EmbeddingService{model: cfg.Model}
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		s.client = openai.NewClientWithConfig(clientCfg)
	}
	return s
}

// Embed returns a vector for text. It never fails; the deterministic
// fallback covers an unconfigured client, transport errors and
// wrong-shaped responses alike.
func (s *EmbeddingService) Embed(ctx context.Context, text string) []float32 {
	if s.client == nil {
		return FallbackEmbedding(text)
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		monitoring.FallbackServed.WithLabelValues("embedding").Inc()
		logger.Log.Warn("Embedding service unreachable, using deterministic fallback", zap.Error(err))
		return FallbackEmbedding(text)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		monitoring.FallbackServed.WithLabelValues("embedding").Inc()
		logger.Log.Warn("Embedding service returned an unexpected shape, using deterministic fallback")
		return FallbackEmbedding(text)
	}

	return resp.Data[0].Embedding
}

// FallbackEmbedding derives a deterministic pseudo-embedding: a
// linear-congruential generator seeded from the sum of character
// codes, emitting EmbeddingDimensions floats in [-1, 1].
func FallbackEmbedding(text string) []float32 {
	var seed int64
	for _, r := range text {
		seed += int64(r)
	}

	const (
		multiplier = 1103515245
		increment  = 12345
		modulus    = 1 << 31
	)

	vector := make([]float32, EmbeddingDimensions)
	for i := range vector {
		seed = (seed*multiplier + increment) & (modulus - 1)
		vector[i] = float32(seed)/float32(modulus)*2 - 1
	}
	return vector
}

// SearchService ranks cached lessons against a query embedding.
type SearchService struct {
	CacheRepo *repository.LessonCacheRepository
	Embedding *EmbeddingService
}

func NewSearchService(cacheRepo *repository.LessonCacheRepository, embedding *EmbeddingService) *SearchService {
	return &SearchService{CacheRepo: cacheRepo, Embedding: embedding}
}

type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

type SearchResult struct {
	LessonKey string  `json:"lessonKey"`
	Topic     string  `json:"topic"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
}

// Search embeds the query and ranks all cached lessons by cosine
// similarity. Lessons cached without an embedding get one from the
// deterministic fallback so they are never excluded.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	query := s.Embedding.Embed(ctx, req.Query)

	lessons, err := s.CacheRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(lessons))
	for _, lesson := range lessons {
		embedding := lesson.Embedding
		if len(embedding) != len(query) {
			embedding = FallbackEmbedding(lesson.Topic + " " + lesson.LessonContent.Title)
		}
		results = append(results, SearchResult{
			LessonKey: lesson.LessonKey,
			Topic:     lesson.Topic,
			Title:     lesson.LessonContent.Title,
			Score:     cosineSimilarity(query, embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
