package service

import (
	"context"
	"testing"
	"time"

	"lughati_backend/internal/model"
	"lughati_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixSimilarity(t *testing.T) {
	sim := NewPrefixSimilarity()

	tests := []struct {
		name     string
		question string
		existing string
		want     bool
	}{
		{"identical", "what does habibi mean", "what does habibi mean", true},
		{"case and whitespace insensitive", "  What Does Habibi mean", "what does habibi mean?", true},
		{"prefix contained mid-string", "what does habibi me", "someone asked what does habibi means here", true},
		{"different questions", "how do I conjugate verbs", "what does habibi mean", false},
		{"empty question never matches", "", "what does habibi mean", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sim.Similar(tt.question, tt.existing))
		})
	}
}

func TestEnhancement_TriggersAfterThreshold(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cacheRepo := repository.NewLessonCacheRepository(db, nil, time.Minute)
	enhancementRepo := repository.NewEnhancementRepository(db)
	svc := NewEnhancementService(repository.NewInteractionRepository(db), enhancementRepo, cacheRepo, nil)

	key := DeriveLessonKey("greetings", "beginner", nil)
	require.NoError(t, cacheRepo.Put(ctx, &model.CachedLesson{
		LessonKey:     key,
		Topic:         "greetings",
		UserLevel:     model.LevelBeginner,
		LessonContent: *FallbackLesson("greetings", model.LevelBeginner),
	}))

	question := "what does habibi mean?"
	for i := 0; i < EnhancementThreshold; i++ {
		fired, err := svc.Record(ctx, key, question, "It is a term of endearment.")
		require.NoError(t, err)
		assert.False(t, fired, "attempt %d is below the threshold", i+1)
	}

	// The question now has EnhancementThreshold prior occurrences.
	fired, err := svc.Record(ctx, key, question, "It is a term of endearment.")
	require.NoError(t, err)
	assert.True(t, fired)

	pending, err := enhancementRepo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, key, pending[0].LessonKey)
	assert.Equal(t, model.EnhancementMethodRepeatedQuestions, pending[0].EnhancementMethod)
	assert.False(t, pending[0].Exported)

	lesson, err := cacheRepo.Get(ctx, key)
	require.NoError(t, err)
	assert.Len(t, lesson.EnhancementLog, 1, "the trigger lands in the lesson's log")
}

func TestEnhancement_DissimilarQuestionsNeverTrigger(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cacheRepo := repository.NewLessonCacheRepository(db, nil, time.Minute)
	svc := NewEnhancementService(repository.NewInteractionRepository(db),
		repository.NewEnhancementRepository(db), cacheRepo, nil)

	key := DeriveLessonKey("weather", "beginner", nil)
	questions := []string{
		"how do I say it is raining?",
		"what is the word for sunny?",
		"can you explain wind versus breeze?",
		"why is weather feminine in Arabic?",
		"how do I ask about tomorrow's forecast?",
	}
	for _, q := range questions {
		fired, err := svc.Record(ctx, key, q, "answer")
		require.NoError(t, err)
		assert.False(t, fired, "question %q", q)
	}
}
