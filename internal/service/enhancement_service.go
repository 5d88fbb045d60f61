package service

import (
	"context"
	"fmt"
	"strings"

	"lughati_backend/internal/model"
	"lughati_backend/internal/repository"
	"lughati_backend/pkg/logger"

	"go.uber.org/zap"
)

// EnhancementThreshold is the number of prior similar questions that
// flags a cached lesson for enhancement.
const EnhancementThreshold = 3

// recentQuestionWindow bounds how many prior interactions feed the
// similarity count.
const recentQuestionWindow = 50

// QuestionSimilarity decides whether two learner questions are close
// enough to count as repeated confusion. The default heuristic is a
// normalized prefix check; a semantic measure can replace it without
// touching the tracker's control flow.
type QuestionSimilarity interface {
	Similar(newQuestion, existing string) bool
}

// PrefixSimilarity matches when the normalized prefix of the new
// question is contained in the existing question.
type PrefixSimilarity struct {
	PrefixLen int
}

func NewPrefixSimilarity() *PrefixSimilarity {
	return &PrefixSimilarity{PrefixLen: 20}
}

func (p *PrefixSimilarity) Similar(newQuestion, existing string) bool {
	prefix := normalizeQuestion(newQuestion)
	if len(prefix) > p.PrefixLen {
		prefix = prefix[:p.PrefixLen]
	}
	if prefix == "" {
		return false
	}
	return strings.Contains(normalizeQuestion(existing), prefix)
}

func normalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// EnhancementService records tutoring interactions and raises
// advisory enhancement triggers when similar questions repeat against
// one cached lesson. Triggers never invalidate or regenerate content;
// they only mark it for later reprocessing.
type EnhancementService struct {
	InteractionRepo *repository.InteractionRepository
	EnhancementRepo *repository.EnhancementRepository
	CacheRepo       *repository.LessonCacheRepository
	Similarity      QuestionSimilarity
}

func NewEnhancementService(
	interactionRepo *repository.InteractionRepository,
	enhancementRepo *repository.EnhancementRepository,
	cacheRepo *repository.LessonCacheRepository,
	similarity QuestionSimilarity,
) *EnhancementService {
	if similarity == nil {
		similarity = NewPrefixSimilarity()
	}
	return &EnhancementService{
		InteractionRepo: interactionRepo,
		EnhancementRepo: enhancementRepo,
		CacheRepo:       cacheRepo,
		Similarity:      similarity,
	}
}

// Record appends the interaction and checks whether prior questions
// against the same key repeat it often enough to flag the lesson.
// Returns whether a trigger fired.
func (s *EnhancementService) Record(ctx context.Context, lessonKey, question, response string) (bool, error) {
	interaction := &model.UserInteraction{
		LessonKey:     lessonKey,
		UserQuestion:  question,
		TutorResponse: response,
	}
	if err := s.InteractionRepo.Create(ctx, interaction); err != nil {
		return false, err
	}

	prior, err := s.InteractionRepo.RecentQuestions(ctx, lessonKey, interaction.ID, recentQuestionWindow)
	if err != nil {
		return false, err
	}

	similar := 0
	for _, existing := range prior {
		if s.Similarity.Similar(question, existing) {
			similar++
		}
	}
	if similar < EnhancementThreshold {
		return false, nil
	}

	trigger := fmt.Sprintf("%d similar questions recorded, latest: %q", similar+1, question)
	if err := s.CacheRepo.AppendEnhancementLog(ctx, lessonKey, trigger); err != nil {
		logger.Log.Warn("Failed to append enhancement log entry",
			zap.String("lessonKey", lessonKey), zap.Error(err))
	}
	if err := s.EnhancementRepo.Create(ctx, &model.LessonEnhancement{
		LessonKey:          lessonKey,
		EnhancementTrigger: trigger,
		EnhancementMethod:  model.EnhancementMethodRepeatedQuestions,
	}); err != nil {
		return true, err
	}

	logger.Log.Info("Enhancement trigger recorded",
		zap.String("lessonKey", lessonKey), zap.Int("similarQuestions", similar))
	return true, nil
}
