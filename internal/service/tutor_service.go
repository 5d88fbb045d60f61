package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lughati_backend/internal/repository"
	"lughati_backend/internal/util"
	"lughati_backend/pkg/logger"

	"go.uber.org/zap"
)

// TutorService answers learner questions against a cached lesson and
// feeds every turn through the enhancement tracker.
type TutorService struct {
	CacheRepo   *repository.LessonCacheRepository
	AI          *AIService
	Enhancement *EnhancementService
}

func NewTutorService(cacheRepo *repository.LessonCacheRepository, ai *AIService, enhancement *EnhancementService) *TutorService {
	return &TutorService{
		CacheRepo:   cacheRepo,
		AI:          ai,
		Enhancement: enhancement,
	}
}

type TutorRequest struct {
	UserID    string `json:"user_id"`
	LessonKey string `json:"lesson_key" binding:"required"`
	Question  string `json:"question" binding:"required"`
}

type TutorResponse struct {
	Answer string `json:"answer"`
	Source string `json:"source"` // lesson_context or llm
}

func (s *TutorService) Ask(ctx context.Context, req TutorRequest) (*TutorResponse, error) {
	background := ""
	source := "llm"

	lesson, err := s.CacheRepo.Get(ctx, req.LessonKey)
	if err == nil {
		source = "lesson_context"
		background = lessonContext(lesson.Topic, lesson.LessonContent.Title, lesson.LessonContent.Explanation, lesson.LessonContent.GrammarRules)
	} else if !errors.Is(err, util.ErrCacheMiss) {
		logger.Log.Warn("Tutor context lookup failed",
			zap.String("lessonKey", req.LessonKey), zap.Error(err))
	}

	answer, err := s.AI.Chat(ctx, req.Question, background)
	if err != nil {
		return nil, err
	}

	// Tracking runs alongside normal delivery; its failure never
	// withholds the answer.
	if _, err := s.Enhancement.Record(ctx, req.LessonKey, req.Question, answer); err != nil {
		logger.Log.Warn("Failed to record tutoring interaction",
			zap.String("lessonKey", req.LessonKey), zap.Error(err))
	}

	return &TutorResponse{Answer: answer, Source: source}, nil
}

func lessonContext(topic, title, explanation string, grammarRules []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Lesson] Topic: %s\nTitle: %s\nExplanation: %s\n", topic, title, explanation)
	if len(grammarRules) > 0 {
		fmt.Fprintf(&b, "Grammar rules: %s\n", strings.Join(grammarRules, "; "))
	}
	return b.String()
}
