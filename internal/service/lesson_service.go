package service

import (
	"context"
	"errors"
	"fmt"

	"lughati_backend/internal/model"
	"lughati_backend/internal/repository"
	"lughati_backend/internal/util"
	"lughati_backend/pkg/logger"
	"lughati_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const maxExampleTopUps = 3

// LessonService owns the cache-first content flow: derive key, serve
// a hit, or generate, validate, top up to the full example count and
// cache the result. Caching is an optimization only; persistence
// failures never abort delivery of a computed lesson.
type LessonService struct {
	CacheRepo *repository.LessonCacheRepository
	AI        *AIService
	Embedding *EmbeddingService
}

func NewLessonService(cacheRepo *repository.LessonCacheRepository, ai *AIService, embedding *EmbeddingService) *LessonService {
	return &LessonService{
		CacheRepo: cacheRepo,
		AI:        ai,
		Embedding: embedding,
	}
}

type LessonRequest struct {
	Topic        string `json:"topic" binding:"required"`
	UserLevel    string `json:"user_level" binding:"required"`
	LessonNumber *int   `json:"lesson_number"`
	Context      string `json:"context"`
}

type LessonResponse struct {
	Lesson *model.LessonContent `json:"lesson"`
	Cached bool                 `json:"cached"`
}

// GenerateLesson returns the lesson for the request, from cache when
// possible. The returned error is reserved for infrastructure
// problems reading the cache; generation failures degrade to the
// fallback lesson rather than erroring.
func (s *LessonService) GenerateLesson(ctx context.Context, req LessonRequest) (*LessonResponse, error) {
	key := DeriveLessonKey(req.Topic, req.UserLevel, req.LessonNumber)

	cached, err := s.CacheRepo.Get(ctx, key)
	if err == nil {
		monitoring.CacheHits.WithLabelValues("lesson").Inc()
		return &LessonResponse{Lesson: &cached.LessonContent, Cached: true}, nil
	}
	if !errors.Is(err, util.ErrCacheMiss) {
		// A broken cache read degrades to generation, not to failure.
		logger.Log.Error("Lesson cache read failed", zap.String("lessonKey", key), zap.Error(err))
	}
	monitoring.CacheMisses.WithLabelValues("lesson").Inc()

	lesson, isFallback := s.generate(ctx, req)

	record := &model.CachedLesson{
		LessonKey:     key,
		Topic:         req.Topic,
		UserLevel:     req.UserLevel,
		LessonContent: *lesson,
		IsFallback:    isFallback,
	}
	if s.Embedding != nil {
		record.Embedding = s.Embedding.Embed(ctx, req.Topic+" "+lesson.Title)
	}

	if err := s.CacheRepo.Put(ctx, record); err != nil {
		logger.Log.Error("Failed to cache generated lesson",
			zap.String("lessonKey", key), zap.Error(err))
	}

	return &LessonResponse{Lesson: lesson, Cached: false}, nil
}

func (s *LessonService) generate(ctx context.Context, req LessonRequest) (*model.LessonContent, bool) {
	raw, err := s.AI.GenerateJSON(ctx, lessonSystemPrompt, lessonPrompt(req))
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("unreachable").Inc()
		monitoring.FallbackServed.WithLabelValues("lesson").Inc()
		logger.Log.Warn("Generation engine unreachable, serving fallback lesson",
			zap.String("topic", req.Topic), zap.Error(err))
		return FallbackLesson(req.Topic, req.UserLevel), true
	}

	lesson, err := ValidateLesson(raw)
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("invalid_shape").Inc()
		monitoring.FallbackServed.WithLabelValues("lesson").Inc()
		logger.Log.Warn("Generated lesson failed validation, serving fallback",
			zap.String("topic", req.Topic), zap.Error(err))
		return FallbackLesson(req.Topic, req.UserLevel), true
	}

	s.topUpExamples(ctx, lesson, req)
	NormalizeExamples(lesson, req.Topic, req.UserLevel)
	return lesson, false
}

// topUpExamples issues supplementary generation calls until the
// example count is satisfied or the attempt budget runs out; whatever
// is still missing afterwards is padded by NormalizeExamples.
func (s *LessonService) topUpExamples(ctx context.Context, lesson *model.LessonContent, req LessonRequest) {
	for attempt := 0; attempt < maxExampleTopUps && len(lesson.Examples) < model.LessonExampleCount; attempt++ {
		missing := model.LessonExampleCount - len(lesson.Examples)
		raw, err := s.AI.GenerateJSON(ctx, examplesSystemPrompt, examplesPrompt(req, missing))
		if err != nil {
			monitoring.GenerationFailures.WithLabelValues("unreachable").Inc()
			logger.Log.Warn("Example top-up call failed",
				zap.String("topic", req.Topic), zap.Int("missing", missing), zap.Error(err))
			return
		}

		examples, err := ParseExamples(raw)
		if err != nil {
			monitoring.GenerationFailures.WithLabelValues("invalid_shape").Inc()
			logger.Log.Warn("Example top-up output unparsable",
				zap.String("topic", req.Topic), zap.Error(err))
			return
		}
		lesson.Examples = append(lesson.Examples, examples...)
	}
}

const lessonSystemPrompt = `You are a curriculum writer for an Arabic-English learning platform. ` +
	`Respond with a single JSON object with keys: title, titleArabic, explanation, explanationArabic, ` +
	`grammarRules (array of strings), examples (array of {english, arabic, difficulty, explanation}), ` +
	`pronunciationTips (array of strings), commonMistakes (array of strings), ` +
	`practiceExercises (array of {question, answer, explanation}). ` +
	`Include exactly 20 examples. difficulty is one of beginner, intermediate, advanced.`

const examplesSystemPrompt = `You are a curriculum writer for an Arabic-English learning platform. ` +
	`Respond with a single JSON object {"examples": [...]} where each example is ` +
	`{english, arabic, difficulty, explanation}.`

func lessonPrompt(req LessonRequest) string {
	prompt := fmt.Sprintf("Write a lesson about %q for a %s learner.", req.Topic, req.UserLevel)
	if req.LessonNumber != nil {
		prompt += fmt.Sprintf(" This is lesson number %d in the curriculum.", *req.LessonNumber)
	}
	if req.Context != "" {
		prompt += " Additional context: " + req.Context
	}
	return prompt
}

func examplesPrompt(req LessonRequest, missing int) string {
	return fmt.Sprintf("Generate %d more examples about %q for a %s learner.", missing, req.Topic, req.UserLevel)
}
