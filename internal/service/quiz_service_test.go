package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lughati_backend/internal/config"
	"lughati_backend/internal/model"
	"lughati_backend/internal/repository"
	"lughati_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quizServiceFixture struct {
	svc     *QuizService
	cache   *repository.QuizCacheRepository
	journey *repository.JourneyRepository
	attempt *repository.QuizAttemptRepository
}

func newQuizFixture(t *testing.T, baseURL string) *quizServiceFixture {
	t.Helper()
	db := newTestDB(t)
	cache := repository.NewQuizCacheRepository(db)
	attempt := repository.NewQuizAttemptRepository(db)
	journey := repository.NewJourneyRepository(db)
	ai := NewAIService(config.AIConfig{BaseURL: baseURL, Model: "test-model", Timeout: 2 * time.Second})
	return &quizServiceFixture{
		svc:     NewQuizService(cache, attempt, journey, ai),
		cache:   cache,
		journey: journey,
		attempt: attempt,
	}
}

// seedRegularQuiz caches a 20-question quiz where question q_N expects
// "answer N".
func seedRegularQuiz(t *testing.T, cache *repository.QuizCacheRepository, quizID string) {
	t.Helper()
	questions := make([]model.QuizQuestion, RegularQuestionCount)
	for i := range questions {
		questions[i] = model.QuizQuestion{
			ID:            fmt.Sprintf("q_%d", i+1),
			Question:      fmt.Sprintf("Question %d", i+1),
			CorrectAnswer: fmt.Sprintf("answer %d", i+1),
		}
	}
	err := cache.Put(context.Background(), &model.CachedQuiz{
		QuizKey:  DeriveQuizKey(quizID, model.QuizTypeRegular),
		QuizType: model.QuizTypeRegular,
		Content: model.Quiz{
			ID:             quizID,
			Type:           model.QuizTypeRegular,
			TotalQuestions: RegularQuestionCount,
			PassingScore:   RegularPassScore,
			MaxScore:       RegularQuestionCount,
			Questions:      questions,
		},
	})
	require.NoError(t, err)
}

func TestSubmitQuiz_Grading(t *testing.T) {
	f := newQuizFixture(t, "http://127.0.0.1:1")
	seedRegularQuiz(t, f.cache, "checkpoint-1")
	ctx := context.Background()

	answers := make([]model.UserAnswer, 0, RegularQuestionCount)
	for i := 1; i <= RegularQuestionCount; i++ {
		got := fmt.Sprintf("answer %d", i)
		if i > 12 {
			got = "wrong"
		}
		answers = append(answers, model.UserAnswer{
			QuestionID: fmt.Sprintf("q_%d", i),
			UserAnswer: got,
		})
	}

	result, err := f.svc.SubmitQuiz(ctx, SubmitQuizRequest{
		QuizID: "checkpoint-1", UserID: "user-1", Answers: answers,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, result.Score)
	assert.Equal(t, RegularQuestionCount, result.TotalPossible)
	assert.Equal(t, model.TierPass, result.Result)

	attempts, err := f.attempt.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 12, attempts[0].Score)
}

func TestSubmitQuiz_AnswerMatchingIsForgiving(t *testing.T) {
	f := newQuizFixture(t, "http://127.0.0.1:1")
	seedRegularQuiz(t, f.cache, "checkpoint-1")

	result, err := f.svc.SubmitQuiz(context.Background(), SubmitQuizRequest{
		QuizID: "checkpoint-1", UserID: "user-1",
		Answers: []model.UserAnswer{
			{QuestionID: "q_1", UserAnswer: "  ANSWER 1  "},
			{QuestionID: "q_2", UserAnswer: "Answer 2"},
			{QuestionID: "q_unknown", UserAnswer: "answer 3"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score, "case and whitespace are ignored; unknown question ids are not")
}

func TestSubmitQuiz_RepeatedQuestionCountsOnce(t *testing.T) {
	f := newQuizFixture(t, "http://127.0.0.1:1")
	seedRegularQuiz(t, f.cache, "checkpoint-1")

	answers := make([]model.UserAnswer, 0, 25)
	for i := 0; i < 25; i++ {
		answers = append(answers, model.UserAnswer{QuestionID: "q_1", UserAnswer: "answer 1"})
	}

	result, err := f.svc.SubmitQuiz(context.Background(), SubmitQuizRequest{
		QuizID: "checkpoint-1", UserID: "user-1", Answers: answers,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score, "one question graded once no matter how often it repeats")
	assert.Equal(t, RegularQuestionCount, result.TotalPossible)
	assert.Equal(t, model.TierFailed, result.Result)
}

func TestSubmitQuiz_UnknownQuiz(t *testing.T) {
	f := newQuizFixture(t, "http://127.0.0.1:1")

	_, err := f.svc.SubmitQuiz(context.Background(), SubmitQuizRequest{
		QuizID: "absent", UserID: "user-1",
		Answers: []model.UserAnswer{{QuestionID: "q_1", UserAnswer: "x"}},
	})
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestGenerateQuiz_UnreachableEngineServesAndCachesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	f := newQuizFixture(t, server.URL)
	ctx := context.Background()

	resp, err := f.svc.GenerateQuiz(ctx, QuizRequest{QuizID: "checkpoint-1", QuizType: model.QuizTypeRegular})
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Len(t, resp.Quiz.Questions, RegularQuestionCount)
	assert.Equal(t, RegularPassScore, resp.Quiz.PassingScore)

	second, err := f.svc.GenerateQuiz(ctx, QuizRequest{QuizID: "checkpoint-1", QuizType: model.QuizTypeRegular})
	require.NoError(t, err)
	assert.True(t, second.Cached)
}

func TestGenerateQuiz_PassedQuizRefused(t *testing.T) {
	f := newQuizFixture(t, "http://127.0.0.1:1")
	ctx := context.Background()

	progress, err := f.journey.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	progress.CurrentItemIndex = 12
	progress.PassedQuizzes = []int{11}
	require.NoError(t, f.journey.Save(ctx, progress))

	item := 11
	_, err = f.svc.GenerateQuiz(ctx, QuizRequest{
		QuizID: "checkpoint-1", QuizType: model.QuizTypeRegular,
		UserID: "user-1", ItemIndex: &item,
	})
	assert.ErrorIs(t, err, util.ErrQuizAlreadyPassed)
}

func TestGenerateQuiz_FailedQuizRegenerated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	f := newQuizFixture(t, server.URL)
	ctx := context.Background()
	seedRegularQuiz(t, f.cache, "checkpoint-1")

	progress, err := f.journey.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	progress.CurrentItemIndex = 11
	progress.FailedQuizzes = []int{11}
	require.NoError(t, f.journey.Save(ctx, progress))

	item := 11
	resp, err := f.svc.GenerateQuiz(ctx, QuizRequest{
		QuizID: "checkpoint-1", QuizType: model.QuizTypeRegular,
		UserID: "user-1", ItemIndex: &item,
	})
	require.NoError(t, err)
	assert.False(t, resp.Cached, "a failed quiz is never served from cache")

	// The fresh quiz overwrote the cached one.
	cached, err := f.cache.Get(ctx, DeriveQuizKey("checkpoint-1", model.QuizTypeRegular))
	require.NoError(t, err)
	assert.True(t, cached.IsFallback)
}

func TestGenerateQuiz_UnknownType(t *testing.T) {
	f := newQuizFixture(t, "http://127.0.0.1:1")

	_, err := f.svc.GenerateQuiz(context.Background(), QuizRequest{QuizID: "x", QuizType: "oral"})
	assert.Error(t, err)
}
