package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lughati_backend/internal/model"
	"lughati_backend/internal/repository"
	"lughati_backend/internal/util"
	"lughati_backend/pkg/logger"
	"lughati_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuizService generates, caches and grades quizzes. Generation shares
// the content-cache semantics of lessons; grading delegates tiering to
// the pure ScoreQuiz function and persists the attempt.
type QuizService struct {
	QuizCache   *repository.QuizCacheRepository
	AttemptRepo *repository.QuizAttemptRepository
	JourneyRepo *repository.JourneyRepository
	AI          *AIService
}

func NewQuizService(
	quizCache *repository.QuizCacheRepository,
	attemptRepo *repository.QuizAttemptRepository,
	journeyRepo *repository.JourneyRepository,
	ai *AIService,
) *QuizService {
	return &QuizService{
		QuizCache:   quizCache,
		AttemptRepo: attemptRepo,
		JourneyRepo: journeyRepo,
		AI:          ai,
	}
}

type QuizRequest struct {
	QuizID           string   `json:"quiz_id" binding:"required"`
	QuizType         string   `json:"quiz_type" binding:"required"`
	UserID           string   `json:"user_id"`
	ItemIndex        *int     `json:"item_index"`
	CoversItems      []int    `json:"covers_items"`
	FocusAreas       []string `json:"focus_areas"`
	UserLearningData string   `json:"user_learning_data"`
}

type QuizResponse struct {
	Quiz   *model.Quiz `json:"quiz"`
	Cached bool        `json:"cached"`
}

type SubmitQuizRequest struct {
	QuizID  string             `json:"quiz_id" binding:"required"`
	UserID  string             `json:"user_id" binding:"required"`
	Answers []model.UserAnswer `json:"answers" binding:"required"`
}

// GenerateQuiz returns the quiz for the request, from cache when
// possible. A quiz the user already passed is refused; a quiz the
// user failed is regenerated fresh rather than served from cache.
func (s *QuizService) GenerateQuiz(ctx context.Context, req QuizRequest) (*QuizResponse, error) {
	if req.QuizType != model.QuizTypeRegular && req.QuizType != model.QuizTypeFinal {
		return nil, fmt.Errorf("unknown quiz type %q", req.QuizType)
	}

	forceRegenerate := false
	if req.UserID != "" && req.ItemIndex != nil {
		progress, err := s.JourneyRepo.GetOrCreate(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if progress.HasPassedQuiz(*req.ItemIndex) {
			return nil, util.ErrQuizAlreadyPassed
		}
		forceRegenerate = progress.HasFailedQuiz(*req.ItemIndex)
	}

	key := DeriveQuizKey(req.QuizID, req.QuizType)

	if !forceRegenerate {
		cached, err := s.QuizCache.Get(ctx, key)
		if err == nil {
			monitoring.CacheHits.WithLabelValues("quiz").Inc()
			return &QuizResponse{Quiz: &cached.Content, Cached: true}, nil
		}
		if !errors.Is(err, util.ErrCacheMiss) {
			logger.Log.Error("Quiz cache read failed", zap.String("quizKey", key), zap.Error(err))
		}
	}
	monitoring.CacheMisses.WithLabelValues("quiz").Inc()

	quiz, isFallback := s.generate(ctx, req)

	record := &model.CachedQuiz{
		QuizKey:    key,
		QuizType:   req.QuizType,
		Content:    *quiz,
		IsFallback: isFallback,
	}
	if err := s.QuizCache.Put(ctx, record); err != nil {
		logger.Log.Error("Failed to cache generated quiz",
			zap.String("quizKey", key), zap.Error(err))
	}

	return &QuizResponse{Quiz: quiz, Cached: false}, nil
}

// SubmitQuiz grades a completed attempt, persists it and returns the
// tiered result.
func (s *QuizService) SubmitQuiz(ctx context.Context, req SubmitQuizRequest) (*model.AssessmentResult, error) {
	cached, err := s.QuizCache.Get(ctx, DeriveQuizKey(req.QuizID, model.QuizTypeRegular))
	if errors.Is(err, util.ErrCacheMiss) {
		cached, err = s.QuizCache.Get(ctx, DeriveQuizKey(req.QuizID, model.QuizTypeFinal))
	}
	if err != nil {
		if errors.Is(err, util.ErrCacheMiss) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	quiz := cached.Content

	answersByQuestion := make(map[string]model.QuizQuestion, len(quiz.Questions))
	for _, q := range quiz.Questions {
		answersByQuestion[q.ID] = q
	}

	// At most one answer per question counts; repeats of a question id
	// cannot inflate the score past MaxScore.
	correct := 0
	graded := make([]model.UserAnswer, 0, len(req.Answers))
	seen := make(map[string]bool, len(req.Answers))
	for _, answer := range req.Answers {
		if seen[answer.QuestionID] {
			continue
		}
		seen[answer.QuestionID] = true
		question, ok := answersByQuestion[answer.QuestionID]
		if ok && equalAnswer(answer.UserAnswer, question.CorrectAnswer) {
			answer.IsCorrect = true
			correct++
		} else {
			answer.IsCorrect = false
		}
		graded = append(graded, answer)
	}

	result := ScoreQuiz(correct, quiz.MaxScore, quiz.PassingScore, quiz.Type == model.QuizTypeFinal)

	attempt := &model.QuizAttempt{
		ID:            uuid.New().String(),
		QuizID:        quiz.ID,
		UserID:        req.UserID,
		Score:         result.Score,
		TotalPossible: result.TotalPossible,
		Percentage:    result.Percentage,
		Result:        result.Result,
		Answers:       graded,
	}
	if err := s.AttemptRepo.Create(ctx, attempt); err != nil {
		// The result is already computed; losing the attempt row is a
		// persistence problem, not a grading failure.
		logger.Log.Error("Failed to persist quiz attempt",
			zap.String("quizId", quiz.ID), zap.String("userId", req.UserID), zap.Error(err))
	}

	return &result, nil
}

func equalAnswer(got, want string) bool {
	return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
}

func (s *QuizService) generate(ctx context.Context, req QuizRequest) (*model.Quiz, bool) {
	questionCount := RegularQuestionCount
	passingScore := RegularPassScore
	if req.QuizType == model.QuizTypeFinal {
		questionCount = FinalQuestionCount
		passingScore = FinalPassScore
	}

	raw, err := s.AI.GenerateJSON(ctx, quizSystemPrompt, quizPrompt(req, questionCount))
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("unreachable").Inc()
		monitoring.FallbackServed.WithLabelValues("quiz").Inc()
		logger.Log.Warn("Quiz generation failed, serving fallback quiz",
			zap.String("quizId", req.QuizID), zap.Error(err))
		return fallbackQuiz(req, questionCount, passingScore), true
	}

	quiz, err := parseQuiz(raw, req, questionCount, passingScore)
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("invalid_shape").Inc()
		monitoring.FallbackServed.WithLabelValues("quiz").Inc()
		logger.Log.Warn("Generated quiz failed validation, serving fallback",
			zap.String("quizId", req.QuizID), zap.Error(err))
		return fallbackQuiz(req, questionCount, passingScore), true
	}
	return quiz, false
}

func parseQuiz(raw json.RawMessage, req QuizRequest, questionCount, passingScore int) (*model.Quiz, error) {
	var parsed struct {
		Questions []model.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidLessonShape, err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", util.ErrInvalidLessonShape)
	}

	questions := parsed.Questions
	if len(questions) > questionCount {
		questions = questions[:questionCount]
	}
	for i := range questions {
		if questions[i].Question == "" || questions[i].CorrectAnswer == "" {
			return nil, fmt.Errorf("%w: question %d incomplete", util.ErrInvalidLessonShape, i)
		}
		if questions[i].ID == "" {
			questions[i].ID = fmt.Sprintf("q_%d", i+1)
		}
	}
	// Short output is padded with placeholders so the quiz always has
	// its full question count.
	for i := len(questions); i < questionCount; i++ {
		questions = append(questions, placeholderQuestion(i))
	}

	return &model.Quiz{
		ID:             req.QuizID,
		Type:           req.QuizType,
		ItemIndex:      itemIndexOrZero(req.ItemIndex),
		TotalQuestions: questionCount,
		PassingScore:   passingScore,
		MaxScore:       questionCount,
		Questions:      questions,
	}, nil
}

func fallbackQuiz(req QuizRequest, questionCount, passingScore int) *model.Quiz {
	questions := make([]model.QuizQuestion, questionCount)
	for i := range questions {
		questions[i] = placeholderQuestion(i)
	}
	return &model.Quiz{
		ID:             req.QuizID,
		Type:           req.QuizType,
		ItemIndex:      itemIndexOrZero(req.ItemIndex),
		TotalQuestions: questionCount,
		PassingScore:   passingScore,
		MaxScore:       questionCount,
		Questions:      questions,
	}
}

func placeholderQuestion(index int) model.QuizQuestion {
	return model.QuizQuestion{
		ID:             fmt.Sprintf("q_%d", index+1),
		Question:       fmt.Sprintf("Translate to Arabic: \"Practice sentence %d.\"", index+1),
		QuestionArabic: fmt.Sprintf("ترجم إلى العربية: \"جملة تدريبية %d.\"", index+1),
		Options: []string{
			fmt.Sprintf("جملة تدريبية %d.", index+1),
			"لا أعرف.",
			"ربما.",
			"مرحبا.",
		},
		CorrectAnswer: fmt.Sprintf("جملة تدريبية %d.", index+1),
		Explanation:   "Placeholder question; regenerate this quiz for richer material.",
	}
}

func itemIndexOrZero(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

const quizSystemPrompt = `You are an assessment writer for an Arabic-English learning platform. ` +
	`Respond with a single JSON object {"questions": [...]} where each question is ` +
	`{id, question, questionArabic, options (array of 4 strings), correctAnswer, explanation}. ` +
	`correctAnswer must be one of the options.`

func quizPrompt(req QuizRequest, questionCount int) string {
	prompt := fmt.Sprintf("Write %d multiple-choice questions for a %s assessment.", questionCount, req.QuizType)
	if len(req.CoversItems) > 0 {
		prompt += fmt.Sprintf(" The quiz covers curriculum items %v.", req.CoversItems)
	}
	if len(req.FocusAreas) > 0 {
		prompt += " Focus areas: " + strings.Join(req.FocusAreas, ", ") + "."
	}
	if req.UserLearningData != "" {
		prompt += " Learner background: " + req.UserLearningData
	}
	return prompt
}
